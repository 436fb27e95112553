package entity

import "testing"

func TestArenaAddGetRemove(t *testing.T) {
	a := NewArena(4)
	e1 := New(1, KindItem, BBox{}, nil)
	e2 := New(2, KindItem, BBox{}, nil)
	a.Add(e1)
	a.Add(e2)

	if got, ok := a.Get(1); !ok || got != e1 {
		t.Fatalf("Get(1) = %v, %v; want e1, true", got, ok)
	}
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}

	a.Remove(1)
	if _, ok := a.Get(1); ok {
		t.Fatal("expected entity 1 to be gone after Remove")
	}
	if a.Len() != 1 {
		t.Fatalf("Len() after remove = %d, want 1", a.Len())
	}
	if got, ok := a.Get(2); !ok || got != e2 {
		t.Fatal("entity 2 should be unaffected by removing entity 1")
	}
}

func TestArenaEachVisitsOnlyLive(t *testing.T) {
	a := NewArena(4)
	for i := int64(1); i <= 3; i++ {
		a.Add(New(i, KindItem, BBox{}, nil))
	}
	a.Remove(2)

	var seen []int64
	a.Each(func(e *Entity) { seen = append(seen, e.ID()) })
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 3 {
		t.Fatalf("Each visited %v, want [1 3]", seen)
	}
}

func TestIDAllocatorMonotonic(t *testing.T) {
	var alloc IDAllocator
	a, b, c := alloc.Next(), alloc.Next(), alloc.Next()
	if !(a < b && b < c) {
		t.Fatalf("ids not strictly increasing: %d %d %d", a, b, c)
	}
}
