package world

import "testing"

// TestEmptyWorldTick implements §8 scenario 1: a world with no players run
// for 100 ticks advances total_world_time and world_time identically and
// stays otherwise inert.
func TestEmptyWorldTick(t *testing.T) {
	w := New(Config{Seed: 0})
	p := NewPipeline(nil)
	for i := 0; i < 100; i++ {
		p.Tick(w, nil, func(lo, hi int) int { return lo })
	}
	if w.CurrentTick() != 100 {
		t.Fatalf("total_world_time = %d, want 100", w.CurrentTick())
	}
	if w.Time() != 100 {
		t.Fatalf("world_time = %d, want 100", w.Time())
	}
	if len(w.ActiveChunks()) != 0 {
		t.Fatalf("active chunks = %v, want none", w.ActiveChunks())
	}
	if w.EntityCount() != 0 {
		t.Fatalf("entity count = %d, want 0", w.EntityCount())
	}
}

// TestTotalWorldTimeMonotonic checks the universal invariant from §8.
func TestTotalWorldTimeMonotonic(t *testing.T) {
	w := New(Config{Seed: 1})
	p := NewPipeline(nil)
	var last int64 = -1
	for i := 0; i < 50; i++ {
		p.Tick(w, nil, nil)
		if w.CurrentTick() <= last {
			t.Fatalf("total_world_time not strictly monotonic at tick %d", i)
		}
		last = w.CurrentTick()
	}
}

// TestDoDaylightCycleGatesWorldTime checks §3's invariant: world_time
// advances iff doDaylightCycle is on, but total_world_time always advances.
func TestDoDaylightCycleGatesWorldTime(t *testing.T) {
	w := New(Config{Seed: 0})
	w.Rules().Set("doDaylightCycle", Bool(false))
	p := NewPipeline(nil)
	for i := 0; i < 10; i++ {
		p.Tick(w, nil, nil)
	}
	if w.Time() != 0 {
		t.Fatalf("world_time = %d, want 0 with doDaylightCycle off", w.Time())
	}
	if w.CurrentTick() != 10 {
		t.Fatalf("total_world_time = %d, want 10", w.CurrentTick())
	}
}

// TestScheduledTickDrainCap verifies §8's boundary behaviour: a queue with
// more than 1000 due entries drains exactly 1000 and keeps the rest ordered.
func TestScheduledTickDrainCap(t *testing.T) {
	q := NewScheduledTickQueue()
	for i := 0; i < 1500; i++ {
		q.Schedule(BlockPos{i, 0, 0}, 1, 0)
	}
	drained := q.Drain(0, 1000)
	if len(drained) != 1000 {
		t.Fatalf("drained %d entries, want 1000", len(drained))
	}
	if q.Len() != 500 {
		t.Fatalf("remaining queue length = %d, want 500", q.Len())
	}
}

// TestScheduledTickDedup verifies §3/§8: re-scheduling an identical
// (x,y,z,block_id) tick at the same time is a no-op.
func TestScheduledTickDedup(t *testing.T) {
	q := NewScheduledTickQueue()
	q.Schedule(BlockPos{1, 2, 3}, 42, 10)
	q.Schedule(BlockPos{1, 2, 3}, 42, 10)
	if q.Len() != 1 {
		t.Fatalf("queue length = %d, want 1 after duplicate schedule", q.Len())
	}
}

// TestEntityTickSuppression verifies §4.1 step 6's 1200-tick threshold.
func TestEntityTickSuppression(t *testing.T) {
	w := New(Config{Seed: 0})
	p := NewPipeline(nil)
	for i := 0; i < 1199; i++ {
		p.Tick(w, nil, nil)
		if !p.ShouldTickEntities() {
			t.Fatalf("entities suppressed too early at tick %d", i)
		}
	}
	p.Tick(w, nil, nil)
	if p.ShouldTickEntities() {
		t.Fatalf("entities not suppressed after 1200 player-less ticks")
	}
	// A single tick with a player present resets the streak.
	p.Tick(w, []int64{7}, nil)
	if !p.ShouldTickEntities() {
		t.Fatalf("entities stayed suppressed after a player reconnected")
	}
}
