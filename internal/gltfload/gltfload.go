// Package gltfload parses self-contained glTF 2.0 models (JSON with embedded
// buffers, or binary GLB) into scene objects. Only what layout needs is
// extracted: mesh and primitive counts and the POSITION bounds declared by
// the accessors.
package gltfload

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/qmuntal/gltf"

	"modelview/internal/scene"
)

var (
	errEmpty      = errors.New("gltf: empty payload")
	errNoGeometry = errors.New("gltf: document has no mesh geometry")
)

// Parser implements scene.Parser. It holds no state and is safe for
// concurrent use.
type Parser struct{}

// New returns a Parser.
func New() *Parser { return &Parser{} }

var _ scene.Parser = (*Parser)(nil)

// Parse decodes data and computes the model-local bounding volume.
func (p *Parser) Parse(ctx context.Context, data []byte) (*scene.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errEmpty
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf: decode: %w", err)
	}
	for i, b := range doc.Buffers {
		if b.URI != "" && !b.IsEmbeddedResource() {
			return nil, fmt.Errorf("gltf: buffer %d references external resource %q", i, b.URI)
		}
	}

	bounds := math32.B3Empty()
	prims := 0
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			idx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			ai := int(idx)
			if ai < 0 || ai >= len(doc.Accessors) {
				return nil, fmt.Errorf("gltf: mesh %d primitive %d: POSITION accessor %d out of range", mi, pi, ai)
			}
			acc := doc.Accessors[ai]
			if len(acc.Min) < 3 || len(acc.Max) < 3 {
				return nil, fmt.Errorf("gltf: accessor %d has no min/max bounds", ai)
			}
			bounds.ExpandByPoint(math32.Vec3(float32(acc.Min[0]), float32(acc.Min[1]), float32(acc.Min[2])))
			bounds.ExpandByPoint(math32.Vec3(float32(acc.Max[0]), float32(acc.Max[1]), float32(acc.Max[2])))
			prims++
		}
	}
	if prims == 0 {
		return nil, errNoGeometry
	}
	return &scene.Object{
		Name:       objectName(doc),
		Bounds:     bounds,
		Meshes:     len(doc.Meshes),
		Primitives: prims,
	}, nil
}

func objectName(doc *gltf.Document) string {
	for _, s := range doc.Scenes {
		if s.Name != "" {
			return s.Name
		}
	}
	for _, m := range doc.Meshes {
		if m.Name != "" {
			return m.Name
		}
	}
	return ""
}
