// Package directory holds the catalog of models most recently announced by
// the backend. Every catalog frame replaces the whole directory; entries keep
// the order in which the backend sent them.
//
// A Directory is owned by a single goroutine (the session loop) and is not
// safe for concurrent use.
package directory

import (
	"fmt"

	"github.com/rs/zerolog"

	"modelview/internal/protocol"
)

// Summary is the display-facing view of a catalog entry.
type Summary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name,omitempty"`
	HasPayload bool   `json:"has_payload"`
}

// Label renders the name shown in selection lists.
func (s Summary) Label() string {
	if s.Name != "" {
		return fmt.Sprintf("%d: %s", s.ID, s.Name)
	}
	return fmt.Sprintf("Model %d", s.ID)
}

// Entry is a Summary plus the still-encoded payload.
type Entry struct {
	Summary
	Payload string
}

// Change lists ids that appeared or disappeared in a replacement.
type Change struct {
	Added   []int64
	Removed []int64
}

// Empty reports whether the replacement kept the same id set.
func (c Change) Empty() bool { return len(c.Added) == 0 && len(c.Removed) == 0 }

// Directory is the current catalog.
type Directory struct {
	entries  []Entry
	index    map[int64]int
	onChange func(Change)
	log      zerolog.Logger
}

// New returns an empty directory.
func New() *Directory {
	return &Directory{index: map[int64]int{}, log: zerolog.Nop()}
}

// SetLogger installs the logger used for dropped entries.
func (d *Directory) SetLogger(l zerolog.Logger) { d.log = l }

// OnChange registers a hook invoked after every ReplaceAll.
func (d *Directory) OnChange(f func(Change)) { d.onChange = f }

// ReplaceAll swaps in a new catalog. Entries with a non-positive id are
// dropped; a repeated id keeps its first occurrence.
func (d *Directory) ReplaceAll(in []protocol.CatalogEntry) Change {
	entries := make([]Entry, 0, len(in))
	index := make(map[int64]int, len(in))
	for _, ce := range in {
		if ce.ID <= 0 {
			d.log.Warn().Int64("id", ce.ID).Msg("dropping catalog entry without valid id")
			continue
		}
		if _, dup := index[ce.ID]; dup {
			d.log.Warn().Int64("id", ce.ID).Msg("dropping duplicate catalog entry")
			continue
		}
		e := Entry{Summary: Summary{ID: ce.ID}}
		if ce.Name != nil {
			e.Name = *ce.Name
		}
		if ce.ModelData != nil {
			e.Payload = *ce.ModelData
			e.HasPayload = true
		}
		index[ce.ID] = len(entries)
		entries = append(entries, e)
	}

	var ch Change
	for _, e := range entries {
		if _, ok := d.index[e.ID]; !ok {
			ch.Added = append(ch.Added, e.ID)
		}
	}
	for _, e := range d.entries {
		if _, ok := index[e.ID]; !ok {
			ch.Removed = append(ch.Removed, e.ID)
		}
	}
	d.entries, d.index = entries, index
	if d.onChange != nil {
		d.onChange(ch)
	}
	return ch
}

// Contains reports whether id is in the current catalog.
func (d *Directory) Contains(id int64) bool {
	_, ok := d.index[id]
	return ok
}

// Len returns the number of entries.
func (d *Directory) Len() int { return len(d.entries) }

// List returns a copy of all summaries in arrival order.
func (d *Directory) List() []Summary {
	out := make([]Summary, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Summary
	}
	return out
}

// Payload returns the encoded model data for id.
func (d *Directory) Payload(id int64) (string, bool) {
	i, ok := d.index[id]
	if !ok || !d.entries[i].HasPayload {
		return "", false
	}
	return d.entries[i].Payload, true
}

// Placeable returns the entries that carry a payload, in arrival order.
func (d *Directory) Placeable() []Entry {
	out := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		if e.HasPayload {
			out = append(out, e)
		}
	}
	return out
}

// Label returns the display label for id, or "Model <id>" if unknown.
func (d *Directory) Label(id int64) string {
	if i, ok := d.index[id]; ok {
		return d.entries[i].Label()
	}
	return Summary{ID: id}.Label()
}
