// Package selection holds the ordered set of shapes a user has drawn over an
// image.
//
// The Model keeps primitives in insertion order, which is also the order in
// which they are composited into a mask. Order affects only the preview; the
// final mask is the union of all primitives.
//
// Primitives are never edited in place. A moved or resized rectangle is
// removed and added again under a new ID.
package selection

import (
	"sync"

	"github.com/ironsheep/mask-tools-mcp/internal/geometry"
)

// ID identifies a primitive within a Model. IDs are assigned in increasing
// order and never reused by the same Model.
type ID int

// Entry pairs a primitive with its identity.
type Entry struct {
	ID        ID        `json:"id"`
	Primitive Primitive `json:"primitive"`
}

// Region describes a rectangle that carries a RegionID.
type Region struct {
	ID       ID            `json:"id"`
	RegionID int           `json:"region_id"`
	Bounds   geometry.Rect `json:"bounds"`
}

// Model is an ordered collection of selection primitives.
//
// Model is safe for concurrent use. Readers always receive copies, so a
// snapshot handed to a background mask build is unaffected by later edits.
type Model struct {
	mu      sync.RWMutex
	nextID  ID
	entries []Entry
}

// NewModel creates an empty selection model.
func NewModel() *Model {
	return &Model{nextID: 1}
}

// Add appends p and returns its identity.
func (m *Model) Add(p Primitive) ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.entries = append(m.entries, Entry{ID: id, Primitive: p.clone()})
	return id
}

// Remove deletes the primitive with the given identity. It reports whether
// anything was removed.
func (m *Model) Remove(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a copy of the primitive with the given identity.
func (m *Model) Get(id ID) (Primitive, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.ID == id {
			return e.Primitive.clone(), true
		}
	}
	return nil, false
}

// Clear removes every primitive. IDs keep increasing afterwards.
func (m *Model) Clear() {
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()
}

// Len returns the number of primitives.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Entries returns copies of all entries in insertion order.
func (m *Model) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = Entry{ID: e.ID, Primitive: e.Primitive.clone()}
	}
	return out
}

// Snapshot returns deep copies of all primitives in insertion order. The
// result can be handed to a mask build running on another goroutine.
func (m *Model) Snapshot() []Primitive {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Primitive, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Primitive.clone()
	}
	return out
}

// Regions lists the rectangles that carry a RegionID, in insertion order.
func (m *Model) Regions() []Region {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Region
	for _, e := range m.entries {
		r, ok := e.Primitive.(Rectangle)
		if !ok || r.RegionID == nil {
			continue
		}
		out = append(out, Region{ID: e.ID, RegionID: *r.RegionID, Bounds: r.Bounds()})
	}
	return out
}
