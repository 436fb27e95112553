package tracker

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/basaltcore/voxelserver/server/entity"
)

func TestParamsForMatchesTable(t *testing.T) {
	cases := []struct {
		kind     entity.Kind
		wantRng  int32
		wantIntv int32
	}{
		{entity.KindPlayer, 512, 2},
		{entity.KindArrow, 64, 20},
		{entity.KindMob, 80, 3},
		{entity.KindHanging, 160, Infinite},
		{entity.KindEnderCrystal, 256, Infinite},
	}
	for _, c := range cases {
		p := ParamsFor(c.kind, entity.MobMonster)
		if p.Range != c.wantRng || p.Interval != c.wantIntv {
			t.Fatalf("kind %v: got range=%d interval=%d, want range=%d interval=%d",
				c.kind, p.Range, p.Interval, c.wantRng, c.wantIntv)
		}
	}
}

func TestUpdateEmitsEnterWhenPlayerEntersRange(t *testing.T) {
	tr := New()
	tr.Track(1, entity.KindMob, entity.MobMonster, Snapshot{ID: 1, Pos: mgl64.Vec3{0, 64, 0}})

	far := []Snapshot{{ID: 2, Pos: mgl64.Vec3{1000, 64, 0}}}
	if evs := tr.Update(far); len(evs) != 0 {
		t.Fatalf("expected no events while player out of range, got %v", evs)
	}

	near := []Snapshot{{ID: 2, Pos: mgl64.Vec3{10, 64, 0}}}
	evs := tr.Update(near)
	if len(evs) != 1 || evs[0].Kind != Enter || evs[0].PlayerID != 2 || evs[0].EntityID != 1 {
		t.Fatalf("expected a single Enter event, got %v", evs)
	}
}

func TestUpdateEmitsLeaveWhenPlayerExitsRange(t *testing.T) {
	tr := New()
	tr.Track(1, entity.KindMob, entity.MobMonster, Snapshot{ID: 1, Pos: mgl64.Vec3{0, 64, 0}})
	tr.Update([]Snapshot{{ID: 2, Pos: mgl64.Vec3{10, 64, 0}}})

	evs := tr.Update([]Snapshot{{ID: 2, Pos: mgl64.Vec3{10000, 64, 0}}})
	if len(evs) != 1 || evs[0].Kind != Leave {
		t.Fatalf("expected a single Leave event, got %v", evs)
	}
}

func TestUpdateEmitsMoveOnIntervalWithDeltaWhenItFits(t *testing.T) {
	tr := New()
	tr.Track(1, entity.KindMob, entity.MobMonster, Snapshot{ID: 1, Pos: mgl64.Vec3{0, 64, 0}})
	watcher := []Snapshot{{ID: 2, Pos: mgl64.Vec3{10, 64, 0}}}
	tr.Update(watcher) // establishes watcher via Enter

	tr.UpdatePosition(1, mgl64.Vec3{1, 64, 0}, 0, 0)

	var evs []Event
	// KindMob ticks every 3; drive the counter across the next multiple of 3.
	for i := 0; i < 3; i++ {
		evs = append(evs, tr.Update(watcher)...)
	}
	found := false
	for _, e := range evs {
		if e.Kind == Move {
			found = true
			if e.Move.Teleport {
				t.Fatalf("expected a fixed-point delta, got a teleport: %+v", e.Move)
			}
			if e.Move.DX == 0 {
				t.Fatalf("expected a nonzero X delta after moving 1 block, got %+v", e.Move)
			}
		}
	}
	if !found {
		t.Fatal("expected a Move event on the tracking interval")
	}
}

func TestUpdateEmitsTeleportWhenDeltaExceedsByteRange(t *testing.T) {
	tr := New()
	tr.Track(1, entity.KindMob, entity.MobMonster, Snapshot{ID: 1, Pos: mgl64.Vec3{0, 64, 0}})
	watcher := []Snapshot{{ID: 2, Pos: mgl64.Vec3{10, 64, 0}}}
	tr.Update(watcher)

	tr.UpdatePosition(1, mgl64.Vec3{50, 64, 0}, 0, 0)

	var evs []Event
	for i := 0; i < 3; i++ {
		evs = append(evs, tr.Update(watcher)...)
	}
	found := false
	for _, e := range evs {
		if e.Kind == Move {
			found = true
			if !e.Move.Teleport {
				t.Fatalf("expected a teleport for a 50-block jump, got %+v", e.Move)
			}
		}
	}
	if !found {
		t.Fatal("expected a Move event carrying a teleport")
	}
}

func TestMarkDeadEmitsDestroyToWatchersAndRemovesEntry(t *testing.T) {
	tr := New()
	tr.Track(1, entity.KindMob, entity.MobMonster, Snapshot{ID: 1, Pos: mgl64.Vec3{0, 64, 0}})
	watcher := []Snapshot{{ID: 2, Pos: mgl64.Vec3{10, 64, 0}}}
	tr.Update(watcher)

	tr.MarkDead(1)
	evs := tr.Update(watcher)
	if len(evs) != 1 || evs[0].Kind != Destroy || evs[0].PlayerID != 2 {
		t.Fatalf("expected a single Destroy event to the watcher, got %v", evs)
	}

	if evs := tr.Update(watcher); len(evs) != 0 {
		t.Fatalf("expected the entry to be gone after destruction, got %v", evs)
	}
}

func TestEntitiesInChunkFastPathTracksCrossings(t *testing.T) {
	tr := New()
	tr.Track(1, entity.KindItem, entity.MobCreature, Snapshot{ID: 1, Pos: mgl64.Vec3{0, 64, 0}})

	if ids := tr.EntitiesInChunk(0, 0); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected entity 1 indexed in chunk (0,0), got %v", ids)
	}

	// 17 blocks on X crosses from chunk 0 into chunk 1 (16 blocks/chunk).
	tr.UpdatePosition(1, mgl64.Vec3{17, 64, 0}, 0, 0)

	if ids := tr.EntitiesInChunk(0, 0); len(ids) != 0 {
		t.Fatalf("expected chunk (0,0) empty after crossing, got %v", ids)
	}
	if ids := tr.EntitiesInChunk(1, 0); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected entity 1 indexed in chunk (1,0), got %v", ids)
	}
}

func TestUntrackReturnsWatchersForDestroyNotification(t *testing.T) {
	tr := New()
	tr.Track(1, entity.KindMob, entity.MobMonster, Snapshot{ID: 1, Pos: mgl64.Vec3{0, 64, 0}})
	tr.Update([]Snapshot{{ID: 2, Pos: mgl64.Vec3{10, 64, 0}}})

	watchers := tr.Untrack(1)
	if len(watchers) != 1 || watchers[0] != 2 {
		t.Fatalf("expected watcher 2 returned, got %v", watchers)
	}
	if ids := tr.EntitiesInChunk(0, 0); len(ids) != 0 {
		t.Fatalf("expected chunk index cleared after untrack, got %v", ids)
	}
}
