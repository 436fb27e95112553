package entity

import (
	"sync"

	"github.com/brentp/intintmap"
)

// Arena is the id-indexed entity store named in §9: entities live in a flat
// slab, and every reference elsewhere in the system holds an id rather than
// a pointer. Because entity ids are never reused (§3 invariant), slots are
// never recycled either — removal tombstones a slot rather than freeing it
// for reuse, which keeps the id->slot index a write-once, read-many
// structure well suited to intintmap's open-addressing design.
type Arena struct {
	mu    sync.RWMutex
	index *intintmap.IntIntMap
	slab  []*Entity
}

// NewArena returns an empty arena with room for an initial capacity hint.
func NewArena(capacityHint int) *Arena {
	if capacityHint < 16 {
		capacityHint = 16
	}
	return &Arena{index: intintmap.New(capacityHint, 0.75)}
}

// Add inserts e into the arena, indexed by its id.
func (a *Arena) Add(e *Entity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	slot := int64(len(a.slab))
	a.slab = append(a.slab, e)
	a.index.Put(e.ID(), slot)
}

// Get returns the live entity with the given id, or (nil, false) if absent
// or removed.
func (a *Arena) Get(id int64) (*Entity, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	slot, ok := a.index.Get(id)
	if !ok {
		return nil, false
	}
	e := a.slab[slot]
	if e == nil {
		return nil, false
	}
	return e, true
}

// Remove tombstones the slot for id, if present.
func (a *Arena) Remove(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	slot, ok := a.index.Get(id)
	if !ok {
		return
	}
	a.slab[slot] = nil
}

// Len returns the number of live (non-tombstoned) entities.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := 0
	for _, e := range a.slab {
		if e != nil {
			n++
		}
	}
	return n
}

// Each calls fn for every live entity, in slab (insertion) order.
func (a *Arena) Each(fn func(*Entity)) {
	a.mu.RLock()
	snapshot := make([]*Entity, len(a.slab))
	copy(snapshot, a.slab)
	a.mu.RUnlock()
	for _, e := range snapshot {
		if e != nil {
			fn(e)
		}
	}
}
