package pathfinding

// openHeap is the array-backed binary min-heap of §4.6, keyed by a node's
// f-score. It indexes into the arena by slot rather than owning the nodes
// itself — the arena's backing slice may grow (and reallocate) as the
// search discovers new cells, so the heap always dereferences through the
// arena pointer rather than caching a slice header.
type openHeap struct {
	slots []int32 // arena indices, heap-ordered
	ar    *arena
}

func newOpenHeap(ar *arena) *openHeap {
	return &openHeap{ar: ar}
}

func (h *openHeap) nodeAt(idx int32) *PathPoint { return &h.ar.nodes[idx] }

func (h *openHeap) empty() bool { return len(h.slots) == 0 }

func (h *openHeap) push(idx int32) {
	n := &h.ar.nodes[idx]
	if n.heapIndex >= 0 {
		return
	}
	n.heapIndex = int32(len(h.slots))
	h.slots = append(h.slots, idx)
	h.siftUp(n.heapIndex)
}

// pop removes and returns the arena index with the lowest f-score.
func (h *openHeap) pop() int32 {
	top := h.slots[0]
	h.ar.nodes[top].heapIndex = -1

	last := len(h.slots) - 1
	h.slots[0] = h.slots[last]
	h.slots = h.slots[:last]
	if len(h.slots) > 0 {
		h.ar.nodes[h.slots[0]].heapIndex = 0
		h.siftDown(0)
	}
	return top
}

// reposition re-sifts idx after its f-score has changed, in whichever
// direction the new value requires.
func (h *openHeap) reposition(idx int32) {
	n := &h.ar.nodes[idx]
	pos := n.heapIndex
	if pos < 0 {
		return
	}
	parent := (pos - 1) >> 1
	if pos > 0 && n.f < h.ar.nodes[h.slots[parent]].f {
		h.siftUp(pos)
	} else {
		h.siftDown(pos)
	}
}

func (h *openHeap) siftUp(pos int32) {
	idx := h.slots[pos]
	f := h.ar.nodes[idx].f
	for pos > 0 {
		parent := (pos - 1) >> 1
		parentIdx := h.slots[parent]
		if f >= h.ar.nodes[parentIdx].f {
			break
		}
		h.slots[pos] = parentIdx
		h.ar.nodes[parentIdx].heapIndex = pos
		pos = parent
	}
	h.slots[pos] = idx
	h.ar.nodes[idx].heapIndex = pos
}

func (h *openHeap) siftDown(pos int32) {
	idx := h.slots[pos]
	f := h.ar.nodes[idx].f
	n := int32(len(h.slots))
	for {
		left := pos*2 + 1
		right := left + 1
		if left >= n {
			break
		}
		smallest := left
		if right < n && h.ar.nodes[h.slots[right]].f < h.ar.nodes[h.slots[left]].f {
			smallest = right
		}
		if f <= h.ar.nodes[h.slots[smallest]].f {
			break
		}
		h.slots[pos] = h.slots[smallest]
		h.ar.nodes[h.slots[pos]].heapIndex = pos
		pos = smallest
	}
	h.slots[pos] = idx
	h.ar.nodes[idx].heapIndex = pos
}
