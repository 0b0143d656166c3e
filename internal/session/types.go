package session

import (
	"fmt"
	"time"

	"cogentcore.org/core/math32"

	"modelview/internal/common/fault"
	"modelview/internal/directory"
	"modelview/internal/scene"
	"modelview/pkg/types"
)

// SelectionKind enumerates the selection states.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectSingle
	SelectAll
)

func (k SelectionKind) String() string {
	switch k {
	case SelectSingle:
		return types.SelectionSingle
	case SelectAll:
		return types.SelectionAll
	default:
		return types.SelectionNone
	}
}

// Selection is None, Single(ID) or All. ID is only meaningful for Single.
type Selection struct {
	Kind SelectionKind
	ID   int64
}

func None() Selection           { return Selection{Kind: SelectNone} }
func Single(id int64) Selection { return Selection{Kind: SelectSingle, ID: id} }
func All() Selection            { return Selection{Kind: SelectAll} }

func (s Selection) String() string {
	switch s.Kind {
	case SelectSingle:
		return fmt.Sprintf("Single(%d)", s.ID)
	case SelectAll:
		return "All"
	default:
		return "None"
	}
}

// Snapshot is an immutable projection of the session for observers.
type Snapshot struct {
	SessionID       string
	URL             string
	Connected       bool
	CatalogReceived bool
	Selection       Selection
	PendingID       int64
	Models          []directory.Summary
	Placed          []scene.Placed
	Bounds          math32.Box3
	View            scene.View
	Parsing         int
	Status          string
	LastError       error
	Epoch           uint64
	StartedAt       time.Time
	UpdatedAt       time.Time
}

// ErrorKind returns the kind of LastError, or "".
func (s Snapshot) ErrorKind() fault.Kind {
	k, _ := fault.KindOf(s.LastError)
	return k
}
