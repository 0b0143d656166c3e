package scene

import (
	"sort"
	"sync"

	"cogentcore.org/core/math32"
)

// Item is one object held by a MemorySurface.
type Item struct {
	Handle   Handle
	ModelID  int64
	Object   Object
	Position math32.Vector3
}

// MemorySurface keeps inserted objects in memory. The composer writes from
// its owner loop while renderers read concurrently.
type MemorySurface struct {
	mu    sync.RWMutex
	next  Handle
	items map[Handle]Item
	view  View
}

// NewMemorySurface returns an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{items: map[Handle]Item{}}
}

func (m *MemorySurface) Insert(id int64, obj *Object, at math32.Vector3) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	it := Item{Handle: m.next, ModelID: id, Position: at}
	if obj != nil {
		it.Object = *obj
	}
	m.items[m.next] = it
	return m.next
}

func (m *MemorySurface) Release(h Handle) {
	m.mu.Lock()
	delete(m.items, h)
	m.mu.Unlock()
}

func (m *MemorySurface) SetView(v View) {
	m.mu.Lock()
	m.view = v
	m.mu.Unlock()
}

// Items returns a copy of the held objects ordered by insertion.
func (m *MemorySurface) Items() []Item {
	m.mu.RLock()
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// Len returns the number of held objects.
func (m *MemorySurface) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// View returns the last pose set by the composer.
func (m *MemorySurface) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}
