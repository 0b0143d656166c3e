package scene

import (
	"context"

	"cogentcore.org/core/math32"
)

// Object is a parsed, renderable model. Bounds is in model-local space.
type Object struct {
	Name       string
	Bounds     math32.Box3
	Meshes     int
	Primitives int
}

// Parser turns binary model data into an Object. Implementations must be
// safe to call from several goroutines at once.
type Parser interface {
	Parse(ctx context.Context, data []byte) (*Object, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, data []byte) (*Object, error)

func (f ParserFunc) Parse(ctx context.Context, data []byte) (*Object, error) { return f(ctx, data) }
