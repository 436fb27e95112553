// Package world implements the tick-driven simulation of a single dimension:
// its chunks, scheduled updates, weather, entities and the ordered tick
// pipeline that advances all of them by one step (§3, §4.1).
package world

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Entity is the minimal view the world package needs of a resident entity;
// the concrete implementation lives in package entity, which depends on
// this package rather than the reverse (§9 composition-over-inheritance).
type Entity interface {
	ID() int64
	Position() BlockPos
	Dead() bool
}

// Viewer is anything that observes a world's events (player connections,
// in process test doubles). The wire codec that turns these calls into
// packets is an external collaborator (§1, §6).
type Viewer interface {
	ViewChunk(pos ChunkPos, c *Chunk)
	ViewBlockUpdate(pos BlockPos, id uint16, meta uint8)
	ViewTime(worldTime int)
	ViewWeather(w Weather)
}

// Dimension identifies which of a server's worlds this is (overworld,
// nether-equivalent, end-equivalent); it is opaque beyond identity and a
// height range.
type Dimension struct {
	Name string
	MinY int
	MaxY int
}

// Config collects the tunables a World is constructed with.
type Config struct {
	Log        *slog.Logger
	Seed       int64
	Dim        Dimension
	Hardcore   bool
	Difficulty int
}

// World is one dimension: the tick-driven simulation state described in §3.
type World struct {
	conf Config
	log  *slog.Logger

	mu sync.Mutex

	seed       int64
	difficulty int32
	hardcore   bool

	totalWorldTime int64
	worldTime      int64
	skyLightSub    int8

	weather Weather
	rules   *GameRules

	spawn BlockPos

	// lcg is the 32-bit LCG counter used for per-chunk random selection
	// (§4.1 step 5), persisted as part of world state for determinism.
	lcg uint32

	chunks     map[ChunkPos]*Chunk
	activeRefs map[ChunkPos]int
	entities   map[int64]Entity
	sleeping   map[int64]BlockPos

	scheduled *ScheduledTickQueue
	events    *BlockEventBuffer

	closing chan struct{}
}

// New constructs an empty World ready to be ticked.
func New(conf Config) *World {
	log := conf.Log
	if log == nil {
		log = slog.Default()
	}
	if conf.Dim.MaxY == 0 {
		conf.Dim.MaxY = MaxHeight
	}
	return &World{
		conf:       conf,
		log:        log,
		seed:       conf.Seed,
		hardcore:   conf.Hardcore,
		difficulty: int32(conf.Difficulty),
		rules:      DefaultGameRules(),
		lcg:        uint32(conf.Seed),
		chunks:     make(map[ChunkPos]*Chunk),
		activeRefs: make(map[ChunkPos]int),
		entities:   make(map[int64]Entity),
		sleeping:   make(map[int64]BlockPos),
		scheduled:  NewScheduledTickQueue(),
		events:     NewBlockEventBuffer(),
		closing:    make(chan struct{}),
	}
}

// Seed returns the world generation seed.
func (w *World) Seed() int64 { return w.seed }

// Dimension returns the dimension this world represents.
func (w *World) Dimension() Dimension { return w.conf.Dim }

// Rules returns the world's game rule table.
func (w *World) Rules() *GameRules { return w.rules }

// CurrentTick returns total_world_time, the strictly monotonic clock (§3, §8).
func (w *World) CurrentTick() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalWorldTime
}

// Time returns world_time, the 0-23999 day clock.
func (w *World) Time() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.worldTime
}

// Weather returns a copy of the current weather state.
func (w *World) Weather() Weather {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.weather
}

// SetWorldTime sets world_time directly, as the /time command does; unlike
// the tick pipeline's own advance, this does not touch total_world_time.
func (w *World) SetWorldTime(v int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.worldTime = v
}

// SetWeather forces the weather state, as the /weather command does. Only
// the two flags change: the RainTime and ThunderTime countdowns keep
// running, so their next expiry flips the state as usual.
func (w *World) SetWeather(raining, thundering bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.weather.Raining = raining
	w.weather.Thundering = thundering
}

// Hardcore reports whether the world is in hardcore mode.
func (w *World) Hardcore() bool { return w.hardcore }

// Difficulty returns the current difficulty (coerced to hard if hardcore,
// per §4.1 step 1, enforced each tick).
func (w *World) Difficulty() int32 { return atomic.LoadInt32(&w.difficulty) }

// SetDifficulty sets the difficulty, unless the world is hardcore.
func (w *World) SetDifficulty(d int32) {
	if w.hardcore {
		return
	}
	atomic.StoreInt32(&w.difficulty, d)
}

// Spawn returns the world's spawn point.
func (w *World) Spawn() BlockPos {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawn
}

// SetSpawn sets the world's spawn point.
func (w *World) SetSpawn(pos BlockPos) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spawn = pos
}

// Chunk returns the chunk at pos if loaded.
func (w *World) Chunk(pos ChunkPos) (*Chunk, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.chunks[pos]
	return c, ok
}

// LoadChunk installs a chunk (loaded from storage or generated).
func (w *World) LoadChunk(c *Chunk) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chunks[c.Pos] = c
}

// UnloadChunk removes a chunk from the loaded set. It is the caller's
// responsibility to ensure no watcher remains (§3 lifecycle invariant).
func (w *World) UnloadChunk(pos ChunkPos) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.chunks, pos)
	delete(w.activeRefs, pos)
}

// AddActiveChunk increments the active-chunk reference count for pos; a
// chunk is active iff at least one player's view rectangle covers it (§3).
func (w *World) AddActiveChunk(pos ChunkPos) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activeRefs[pos]++
}

// RemoveActiveChunk decrements the active-chunk reference count for pos.
func (w *World) RemoveActiveChunk(pos ChunkPos) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.activeRefs[pos] > 0 {
		w.activeRefs[pos]--
	}
	if w.activeRefs[pos] == 0 {
		delete(w.activeRefs, pos)
	}
}

// ActiveChunks returns the chunks currently in the active set, sorted by
// chunk coordinate (X, then Z), the order §4.1 pass 5 iterates. The order
// in which chunks entered the set is not kept.
func (w *World) ActiveChunks() []ChunkPos {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ChunkPos, 0, len(w.activeRefs))
	for pos := range w.activeRefs {
		out = append(out, pos)
	}
	sortChunkPos(out)
	return out
}

func sortChunkPos(s []ChunkPos) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func less(a, b ChunkPos) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Z < b.Z
}

// AddEntity registers a resident entity with the world.
func (w *World) AddEntity(e Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities[e.ID()] = e
}

// RemoveEntity removes a resident entity from the world.
func (w *World) RemoveEntity(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entities, id)
}

// Entities returns every resident entity in entity-id order, matching the
// ordering guarantee in §5 ("entity ticks run in entity-id order").
func (w *World) Entities() []Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ID() < out[j-1].ID(); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// EntityCount returns the number of resident entities.
func (w *World) EntityCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entities)
}

// AddSleepingPlayer records that a player has entered a bed at pos (§4.1
// step 2).
func (w *World) AddSleepingPlayer(id int64, pos BlockPos) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sleeping[id] = pos
}

// RemoveSleepingPlayer clears a player's sleeping state.
func (w *World) RemoveSleepingPlayer(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.sleeping, id)
}

// SleepingPlayerCount returns the number of players currently sleeping.
func (w *World) SleepingPlayerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sleeping)
}

// Close signals the world to stop ticking.
func (w *World) Close() { close(w.closing) }

// Log returns the world's logger.
func (w *World) Log() *slog.Logger { return w.log }
