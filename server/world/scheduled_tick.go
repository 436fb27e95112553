package world

import (
	"container/heap"

	"github.com/segmentio/fasthash/fnv1a"
)

// ScheduledTick is an entry in the scheduled-tick queue: a block at a
// position will be ticked once the world reaches ScheduledTime, provided the
// block there still matches BlockID (§4.1 step 4).
type ScheduledTick struct {
	Pos           BlockPos
	BlockID       uint16
	ScheduledTime int64

	index int // heap bookkeeping
}

// tickKey uniquely identifies a scheduled tick by (x, y, z, block_id); §3
// requires duplicates to be dropped.
func tickKey(pos BlockPos, blockID uint16) uint64 {
	h := fnv1a.HashUint64(uint64(int64(pos[0])))
	h = fnv1a.AddUint64(h, uint64(int64(pos[1])))
	h = fnv1a.AddUint64(h, uint64(int64(pos[2])))
	h = fnv1a.AddUint64(h, uint64(blockID))
	return h
}

// tickHeap is a min-heap of ScheduledTick ordered by ScheduledTime, giving
// the ordered queue described in §3.
type tickHeap []*ScheduledTick

func (h tickHeap) Len() int { return len(h) }
func (h tickHeap) Less(i, j int) bool {
	return h[i].ScheduledTime < h[j].ScheduledTime
}
func (h tickHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *tickHeap) Push(x any) {
	e := x.(*ScheduledTick)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *tickHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// ScheduledTickQueue is the ordered, dedup-keyed queue of pending block
// ticks. It has no locking: Schedule, Len and Drain are not safe to call
// concurrently, including concurrent insertion.
type ScheduledTickQueue struct {
	heap  tickHeap
	byKey map[uint64]*ScheduledTick
}

// NewScheduledTickQueue returns an empty queue.
func NewScheduledTickQueue() *ScheduledTickQueue {
	return &ScheduledTickQueue{byKey: make(map[uint64]*ScheduledTick)}
}

// Schedule inserts a scheduled tick, dropping it if an identical
// (pos, blockID) entry is already queued at the same time (§8 idempotence).
func (q *ScheduledTickQueue) Schedule(pos BlockPos, blockID uint16, at int64) {
	key := tickKey(pos, blockID)
	if existing, ok := q.byKey[key]; ok {
		if existing.ScheduledTime == at {
			return
		}
		// A re-schedule at a different time replaces the old entry.
		heap.Remove(&q.heap, existing.index)
		delete(q.byKey, key)
	}
	e := &ScheduledTick{Pos: pos, BlockID: blockID, ScheduledTime: at}
	heap.Push(&q.heap, e)
	q.byKey[key] = e
}

// Len returns the number of pending entries.
func (q *ScheduledTickQueue) Len() int { return q.heap.Len() }

// Drain removes and returns every entry with ScheduledTime <= tick, capped
// at maxEntries per call; remaining entries stay ordered in the queue
// (§4.1 step 4, §8 boundary behaviour).
func (q *ScheduledTickQueue) Drain(tick int64, maxEntries int) []*ScheduledTick {
	out := make([]*ScheduledTick, 0, maxEntries)
	for len(out) < maxEntries && q.heap.Len() > 0 && q.heap[0].ScheduledTime <= tick {
		e := heap.Pop(&q.heap).(*ScheduledTick)
		delete(q.byKey, tickKey(e.Pos, e.BlockID))
		out = append(out, e)
	}
	return out
}
