// Package tracker implements the per-entity visibility and update-cadence
// engine of §4.4: for every tracked entity it maintains the set of players
// that can currently see it, and decides when to emit enter/leave/move/
// destroy events.
package tracker

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/basaltcore/voxelserver/server/entity"
)

// Infinite marks a tracking interval that never fires an automatic
// movement update (hanging entities, end crystals).
const Infinite = 0

// Params are the per-kind tracking parameters selected in §4.4.
type Params struct {
	Range        int32
	Interval     int32 // ticks; Infinite means "never"
	SendVelocity bool
}

// ParamsFor returns the tracking parameters for an entity of the given kind
// (and, for mobs, category), per the table in §4.4.
func ParamsFor(kind entity.Kind, category entity.MobCategory) Params {
	switch kind {
	case entity.KindPlayer:
		return Params{Range: 512, Interval: 2}
	case entity.KindArrow:
		return Params{Range: 64, Interval: 20}
	case entity.KindThrowable:
		return Params{Range: 64, Interval: 10, SendVelocity: true}
	case entity.KindItem:
		return Params{Range: 64, Interval: 20, SendVelocity: true}
	case entity.KindMinecart, entity.KindBoat:
		return Params{Range: 80, Interval: 3, SendVelocity: true}
	case entity.KindTNT:
		return Params{Range: 160, Interval: 10, SendVelocity: true}
	case entity.KindFallingBlock:
		return Params{Range: 160, Interval: 20, SendVelocity: true}
	case entity.KindXPOrb:
		return Params{Range: 160, Interval: 20, SendVelocity: true}
	case entity.KindHanging:
		return Params{Range: 160, Interval: Infinite}
	case entity.KindEnderCrystal:
		return Params{Range: 256, Interval: Infinite}
	case entity.KindMob:
		// Creature, monster and animal mobs share one entry in the
		// reference table; category is kept in the signature for callers
		// that branch on it elsewhere (AI scheduling, §4.5).
		return Params{Range: 80, Interval: 3, SendVelocity: true}
	default:
		return Params{Range: 80, Interval: 3, SendVelocity: true}
	}
}

// Snapshot is the position/rotation state a caller feeds into the tracker
// for one entity (tracked or a candidate viewer) on a given tick.
type Snapshot struct {
	ID         int64
	Pos        mgl64.Vec3
	Yaw, Pitch float64
}

// EventKind classifies a Tracker update-cycle event.
type EventKind uint8

const (
	Enter EventKind = iota
	Leave
	Move
	Destroy
)

// Event is one visibility or movement change a Tracker update produced.
type Event struct {
	Kind     EventKind
	PlayerID int64
	EntityID int64
	Move     MoveDelta // only meaningful when Kind == Move
}

// MoveDelta is a quantised movement update: a fixed-point (1/32 block)
// delta when it fits a signed byte in every axis, else an absolute
// teleport.
type MoveDelta struct {
	Teleport   bool
	DX, DY, DZ int8       // 1/32-block units, valid when !Teleport
	Pos        mgl64.Vec3 // valid when Teleport
	Yaw, Pitch float64
}

// entry is one tracked entity's bookkeeping.
type entry struct {
	mu             sync.Mutex
	id             int64
	params         Params
	pos            mgl64.Vec3
	yaw            float64
	pitch          float64
	lastPos        mgl64.Vec3
	lastYaw        float64
	lastPitch      float64
	chunkX, chunkZ int32
	counter        int64
	watchers       map[int64]struct{}
	dead           bool
}

const shardCount = 64

// chunkShard is one stripe of the chunk->entity-id fast-path index,
// guarded by its own mutex to keep the common case (one player crossing
// one chunk boundary) from contending with unrelated chunks.
type chunkShard struct {
	mu  sync.Mutex
	ids map[int64]map[int64]struct{} // chunk key -> entity id set
}

// Tracker owns every tracked entity in one world/dimension.
type Tracker struct {
	mu      sync.RWMutex
	entries map[int64]*entry
	shards  [shardCount]*chunkShard
}

// New returns an empty Tracker.
func New() *Tracker {
	t := &Tracker{entries: make(map[int64]*entry)}
	for i := range t.shards {
		t.shards[i] = &chunkShard{ids: make(map[int64]map[int64]struct{})}
	}
	return t
}

func chunkKey(cx, cz int32) int64 {
	return int64(uint32(cx))<<32 | int64(uint32(cz))
}

// shardFor picks the lock-striped bucket for a chunk key, hashing it
// through xxhash so the distribution across shards doesn't track the
// low-order bits of chunk coordinates the way a plain modulo would.
func (t *Tracker) shardFor(key int64) *chunkShard {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))
	h := xxhash.Sum64(buf[:])
	return t.shards[h%shardCount]
}

func (t *Tracker) indexChunk(id int64, cx, cz int32) {
	key := chunkKey(cx, cz)
	s := t.shardFor(key)
	s.mu.Lock()
	set, ok := s.ids[key]
	if !ok {
		set = make(map[int64]struct{})
		s.ids[key] = set
	}
	set[id] = struct{}{}
	s.mu.Unlock()
}

func (t *Tracker) unindexChunk(id int64, cx, cz int32) {
	key := chunkKey(cx, cz)
	s := t.shardFor(key)
	s.mu.Lock()
	if set, ok := s.ids[key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(s.ids, key)
		}
	}
	s.mu.Unlock()
}

// EntitiesInChunk returns the ids of every tracked entity whose last known
// position falls in chunk (cx, cz) — the fast path used when a player
// crosses a chunk boundary (§4.4).
func (t *Tracker) EntitiesInChunk(cx, cz int32) []int64 {
	key := chunkKey(cx, cz)
	s := t.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.ids[key]
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// Track begins tracking id with the tracking parameters for kind/category,
// at the given initial snapshot.
func (t *Tracker) Track(id int64, kind entity.Kind, category entity.MobCategory, snap Snapshot) {
	params := ParamsFor(kind, category)
	cx, cz := chunkOf(snap.Pos)
	e := &entry{
		id: id, params: params,
		pos: snap.Pos, yaw: snap.Yaw, pitch: snap.Pitch,
		lastPos: snap.Pos, lastYaw: snap.Yaw, lastPitch: snap.Pitch,
		chunkX: cx, chunkZ: cz,
		watchers: make(map[int64]struct{}),
	}
	t.mu.Lock()
	t.entries[id] = e
	t.mu.Unlock()
	t.indexChunk(id, cx, cz)
}

// Untrack stops tracking id, returning the ids of players who were
// watching it so the caller can send them a destroy packet.
func (t *Tracker) Untrack(id int64) []int64 {
	t.mu.Lock()
	e, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	t.mu.Unlock()
	if !ok {
		return nil
	}
	t.unindexChunk(id, e.chunkX, e.chunkZ)
	e.mu.Lock()
	watchers := watcherIDs(e.watchers)
	e.mu.Unlock()
	return watchers
}

// UpdatePosition records id's latest position/rotation, re-indexing the
// chunk fast path if id crossed a chunk boundary.
func (t *Tracker) UpdatePosition(id int64, pos mgl64.Vec3, yaw, pitch float64) {
	t.mu.RLock()
	e, ok := t.entries[id]
	t.mu.RUnlock()
	if !ok {
		return
	}
	cx, cz := chunkOf(pos)

	e.mu.Lock()
	e.pos, e.yaw, e.pitch = pos, yaw, pitch
	moved := cx != e.chunkX || cz != e.chunkZ
	oldX, oldZ := e.chunkX, e.chunkZ
	if moved {
		e.chunkX, e.chunkZ = cx, cz
	}
	e.mu.Unlock()

	if moved {
		t.unindexChunk(id, oldX, oldZ)
		t.indexChunk(id, cx, cz)
	}
}

// MarkDead flags id for removal; the next Update emits a Destroy event to
// every current watcher and drops the entry.
func (t *Tracker) MarkDead(id int64) {
	t.mu.RLock()
	e, ok := t.entries[id]
	t.mu.RUnlock()
	if ok {
		e.mu.Lock()
		e.dead = true
		e.mu.Unlock()
	}
}

const quantStep = 1.0 / 32.0

// Update runs the per-tick visibility pass of §4.4 against the given set of
// player snapshots, returning every enter/leave/move/destroy event
// produced.
func (t *Tracker) Update(players []Snapshot) []Event {
	t.mu.RLock()
	snapshot := make([]*entry, 0, len(t.entries))
	for _, e := range t.entries {
		snapshot = append(snapshot, e)
	}
	t.mu.RUnlock()

	var events []Event
	var dead []int64

	for _, e := range snapshot {
		e.mu.Lock()
		if e.dead {
			for pid := range e.watchers {
				events = append(events, Event{Kind: Destroy, PlayerID: pid, EntityID: e.id})
			}
			e.mu.Unlock()
			dead = append(dead, e.id)
			continue
		}

		e.counter++
		rng := float64(e.params.Range)
		for _, p := range players {
			if p.ID == e.id {
				continue
			}
			dx := p.Pos.X() - e.pos.X()
			dz := p.Pos.Z() - e.pos.Z()
			inRange := math.Abs(dx) <= rng && math.Abs(dz) <= rng
			_, watching := e.watchers[p.ID]
			switch {
			case inRange && !watching:
				e.watchers[p.ID] = struct{}{}
				events = append(events, Event{Kind: Enter, PlayerID: p.ID, EntityID: e.id})
			case !inRange && watching:
				delete(e.watchers, p.ID)
				events = append(events, Event{Kind: Leave, PlayerID: p.ID, EntityID: e.id})
			}
		}

		if e.params.Interval != Infinite && e.counter%int64(e.params.Interval) == 0 {
			if delta, changed := computeDelta(e.lastPos, e.pos, e.lastYaw, e.yaw, e.lastPitch, e.pitch); changed {
				for pid := range e.watchers {
					events = append(events, Event{Kind: Move, PlayerID: pid, EntityID: e.id, Move: delta})
				}
				e.lastPos, e.lastYaw, e.lastPitch = e.pos, e.yaw, e.pitch
			}
		}
		e.mu.Unlock()
	}

	if len(dead) > 0 {
		t.mu.Lock()
		for _, id := range dead {
			if e, ok := t.entries[id]; ok {
				delete(t.entries, id)
				t.unindexChunk(id, e.chunkX, e.chunkZ)
			}
		}
		t.mu.Unlock()
	}

	return events
}

// computeDelta decides whether the position/rotation moved enough since
// the last snapshot to be worth sending, and whether the movement fits the
// fixed-point byte delta or needs an absolute teleport.
func computeDelta(lastPos, pos mgl64.Vec3, lastYaw, yaw, lastPitch, pitch float64) (MoveDelta, bool) {
	diff := pos.Sub(lastPos)
	posChanged := math.Abs(diff.X()) >= quantStep || math.Abs(diff.Y()) >= quantStep || math.Abs(diff.Z()) >= quantStep
	rotChanged := lastYaw != yaw || lastPitch != pitch
	if !posChanged && !rotChanged {
		return MoveDelta{}, false
	}

	fx, fy, fz := diff.X()/quantStep, diff.Y()/quantStep, diff.Z()/quantStep
	if fitsInt8(fx) && fitsInt8(fy) && fitsInt8(fz) {
		return MoveDelta{DX: int8(fx), DY: int8(fy), DZ: int8(fz), Yaw: yaw, Pitch: pitch}, true
	}
	return MoveDelta{Teleport: true, Pos: pos, Yaw: yaw, Pitch: pitch}, true
}

func fitsInt8(v float64) bool { return v >= -128 && v <= 127 }

func chunkOf(pos mgl64.Vec3) (int32, int32) {
	return int32(math.Floor(pos.X())) >> 4, int32(math.Floor(pos.Z())) >> 4
}

func watcherIDs(m map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}
