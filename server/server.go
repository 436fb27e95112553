// Package server wires one running instance together: the dimensions
// (§3 World) a Server owns, the tick pipeline that advances each of them,
// the entity arena and tracker, per-player chunk streaming, the redstone
// execution system, village/siege and natural-spawning state, and the
// command/console surface of §6. It plays the role dm-vev-adamant/server
// plays for dragonfly: conf.go builds a Server, main wires its listeners,
// and Server.Tick drives the simulation forward.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/basaltcore/voxelserver/server/cmd"
	"github.com/basaltcore/voxelserver/server/console"
	"github.com/basaltcore/voxelserver/server/entity"
	"github.com/basaltcore/voxelserver/server/entity/pathfinding"
	"github.com/basaltcore/voxelserver/server/playerchunk"
	"github.com/basaltcore/voxelserver/server/spawner"
	"github.com/basaltcore/voxelserver/server/tracker"
	"github.com/basaltcore/voxelserver/server/village"
	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/redstone"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

// villageRecord pairs a village.Village with its siege tracker under a
// server-assigned id, since village itself is agnostic to how many of these
// a world holds (§4.10).
type villageRecord struct {
	id    int64
	v     *village.Village
	siege *village.Siege
}

// dimState is the per-dimension bundle of simulation subsystems: one World,
// the tick pipeline driving it, its entity tracker, chunk-streaming manager,
// redstone system and village registry.
type dimState struct {
	dim      world.Dimension
	w        *world.World
	pipeline *world.Pipeline
	trk      *tracker.Tracker
	chunks   *playerchunk.Manager
	redstone *redstone.System
	rollRNG  *rng.LCG

	mu            sync.Mutex
	villages      map[int64]*villageRecord
	nextVillageID int64
}

// playerInfo is a connected player's bookkeeping: the server doesn't model a
// full session (networking is out of scope, §1), just enough state for the
// command surface and tracker to function.
type playerInfo struct {
	name     string
	entityID int64
	dim      world.Dimension
	gamemode string
}

// Server owns every dimension of one running instance, the global entity id
// allocator (§5, §9 — "Globals ... become owned state on a top-level Server
// struct"), and the command/console surface.
type Server struct {
	conf Config
	log  *slog.Logger

	ids      *entity.IDAllocator
	entities *entity.Arena

	dims       map[world.Dimension]*dimState
	dimOrder   []world.Dimension
	defaultDim world.Dimension

	mu      sync.RWMutex
	players map[string]*playerInfo

	sink    NetworkSink
	console *console.Console

	stopOnce sync.Once
	stopped  chan struct{}
}

func newServer(conf Config) *Server {
	s := &Server{
		conf:       conf,
		log:        conf.Log,
		ids:        &entity.IDAllocator{},
		entities:   entity.NewArena(256),
		dims:       make(map[world.Dimension]*dimState),
		defaultDim: conf.Dimensions[0],
		players:    make(map[string]*playerInfo),
		stopped:    make(chan struct{}),
	}
	for i, dim := range conf.Dimensions {
		s.dims[dim] = s.newDimState(dim, int64(i))
		s.dimOrder = append(s.dimOrder, dim)
	}
	cmd.RegisterBuiltins(s)
	s.console = console.New(s, s.log)
	return s
}

func (s *Server) newDimState(dim world.Dimension, salt int64) *dimState {
	w := world.New(world.Config{
		Log:        s.log,
		Seed:       s.conf.Seed,
		Dim:        dim,
		Difficulty: 2,
	})
	w.Rules().Set("randomTickSpeed", world.Int(s.conf.RandomTickSpeed))
	return &dimState{
		dim:      dim,
		w:        w,
		pipeline: world.NewPipeline(nil),
		trk:      tracker.New(),
		chunks:   playerchunk.New(),
		redstone: s.conf.Redstone.NewSystem(s.log),
		rollRNG:  rng.New(rng.Mix(s.conf.Seed, salt)),
		villages: make(map[int64]*villageRecord),
	}
}

// Dimension returns the named dimension's World, if this Server owns it.
func (s *Server) Dimension(dim world.Dimension) (*world.World, bool) {
	d, ok := s.dims[dim]
	if !ok {
		return nil, false
	}
	return d.w, true
}

func (s *Server) defaultState() *dimState { return s.dims[s.defaultDim] }

// WithSink sets the protocol layer's event receiver, returning s for
// chaining at construction time.
func (s *Server) WithSink(sink NetworkSink) *Server {
	s.sink = sink
	return s
}

// Console returns the operator command-line surface bound to this Server.
func (s *Server) Console() *console.Console { return s.console }

// Tick advances every dimension by exactly one tick: the world pipeline
// (§4.1), village/siege state (§4.10), natural spawning (§4.10), the
// redstone system (§4.8) and player-chunk broadcast flush (§4.3), in that
// order so later stages see the tick's settled state.
func (s *Server) Tick(ctx context.Context) {
	for _, dim := range s.dimOrder {
		s.tickDimension(ctx, s.dims[dim])
	}
}

func (s *Server) tickDimension(ctx context.Context, d *dimState) {
	playerIDs := s.playerIDsIn(d.dim)
	roll := func(lo, hi int) int {
		if hi <= lo {
			return lo
		}
		return lo + int(d.rollRNG.NextInt(int32(hi-lo+1)))
	}
	d.pipeline.Tick(d.w, playerIDs, roll)

	for _, ev := range d.pipeline.FlushedEvents() {
		s.broadcastTimeAndWeather(d, ev)
	}

	s.tickVillages(d)
	s.tickSpawning(d)

	if d.redstone != nil {
		d.redstone.Step(ctx, d.w.CurrentTick())
	}

	for _, b := range d.chunks.Tick() {
		s.broadcastChunkUpdate(d, b)
	}
}

func (s *Server) broadcastTimeAndWeather(d *dimState, _ world.BlockEvent) {
	if s.sink == nil {
		return
	}
	for _, id := range s.playerIDsIn(d.dim) {
		s.sink.TimeUpdate(id, d.w.Time())
	}
}

func (s *Server) broadcastChunkUpdate(d *dimState, b playerchunk.Broadcast) {
	if s.sink == nil || b.Kind == playerchunk.NoUpdate {
		return
	}
	for _, watcher := range b.Watchers {
		s.sink.MultiBlockChange(watcher, b.Pos, b.Kind, b.Changes)
	}
}

// playerIDsIn returns the entity ids of every player currently in dim, in a
// deterministic order (sorted), since the tick pipeline's sleep-resolution
// stage iterates this slice and must behave the same way every run for a
// given player set (§5, §8).
func (s *Server) playerIDsIn(dim world.Dimension) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.players))
	for _, p := range s.players {
		if p.dim == dim {
			ids = append(ids, p.entityID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// tickVillages advances every village and siege in d by one tick, handing
// any resulting golem/zombie spawn request to spawnMob.
func (s *Server) tickVillages(d *dimState) {
	d.mu.Lock()
	records := make([]*villageRecord, 0, len(d.villages))
	for _, r := range d.villages {
		records = append(records, r)
	}
	d.mu.Unlock()

	worldTime := d.w.Time()
	for _, r := range records {
		if res := r.v.Tick(worldTime, d.rollRNG); res.SpawnGolem {
			s.spawnMob(d, res.GolemKind, res.GolemPos, entity.MobCreature)
		}
		if r.siege == nil {
			continue
		}
		if !r.siege.Active() {
			if village.ShouldStart(r.v, worldTime, s.anyPlayerNearVillage(d, r.v)) {
				r.siege.Start(worldTime)
			}
			continue
		}
		if spawn, ok := r.siege.Tick(r.v, worldTime, d.rollRNG); ok {
			s.spawnMob(d, spawn.Kind, spawn.Pos, entity.MobMonster)
		}
	}
}

func (s *Server) anyPlayerNearVillage(d *dimState, v *village.Village) bool {
	for _, id := range s.playerIDsIn(d.dim) {
		e, ok := s.entities.Get(id)
		if !ok {
			continue
		}
		pos := e.Position()
		if village.PlayerNearby(v, int(pos[0]), int(pos[1]), int(pos[2])) {
			return true
		}
	}
	return false
}

// AddVillage registers a new village tracked for golem spawning and sieges,
// returning its server-assigned id.
func (s *Server) AddVillage(dim world.Dimension, v *village.Village, withSiege bool) (int64, bool) {
	d, ok := s.dims[dim]
	if !ok {
		return 0, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextVillageID
	d.nextVillageID++
	rec := &villageRecord{id: id, v: v}
	if withSiege {
		rec.siege = village.NewSiege()
	}
	d.villages[id] = rec
	return id, true
}

// RemoveVillage drops a village a caller has determined is Annihilated (§4.10).
func (s *Server) RemoveVillage(dim world.Dimension, id int64) {
	d, ok := s.dims[dim]
	if !ok {
		return
	}
	d.mu.Lock()
	delete(d.villages, id)
	d.mu.Unlock()
}

// dimTerrain adapts a World transaction to spawner.Terrain, using the id==0
// air convention already established by world/portal.go: the real block
// registry that would classify ids into Standability is out of scope (§1).
type dimTerrain struct{ w *world.World }

func (t dimTerrain) air(x, y, z int32) bool {
	id, _, ok := t.block(x, y, z)
	return !ok || id == 0
}

func (t dimTerrain) block(x, y, z int32) (uint16, uint8, bool) {
	var id uint16
	var meta uint8
	var found bool
	t.w.Exec(func(tx *world.Tx) {
		i, m := tx.Block(world.BlockPos{int(x), int(y), int(z)})
		id, meta, found = i, m, true
	})
	return id, meta, found
}

func (t dimTerrain) StandabilityAt(x, y, z int32) pathfinding.Standability {
	if !t.air(x, y, z) || !t.air(x, y+1, z) {
		return pathfinding.Blocked
	}
	if t.air(x, y-1, z) {
		return pathfinding.Open
	}
	return pathfinding.Passable
}

func (t dimTerrain) SolidTop(x, y, z int32) bool { return !t.air(x, y-1, z) }

// tickSpawning runs one natural-spawning pass over d's eligible chunks
// (§4.10), attempting every creature category per active chunk set the way
// the reference spawner evaluates the cap table once per tick.
func (s *Server) tickSpawning(d *dimState) {
	players := s.playerBlockPositions(d.dim)
	if len(players) == 0 {
		return
	}
	chunkPositions := make([]world.ChunkPos, len(players))
	for i, p := range players {
		chunkPositions[i] = world.ChunkPos{X: int32(p.X()) >> 4, Z: int32(p.Z()) >> 4}
	}
	eligible := spawner.BuildEligibleChunks(chunkPositions)
	terrain := dimTerrain{w: d.w}
	worldSpawn := d.w.Spawn()
	topOf := func(x, z int32) int32 { return surfaceHeight(terrain, x, z) }

	for _, cpos := range eligible.InteriorChunks() {
		for _, cat := range []spawner.Category{spawner.Monster, spawner.Creature, spawner.WaterCreature, spawner.Ambient} {
			if !spawner.UnderCap(cat, s.mobCount(d, cat), eligible.Count()) {
				continue
			}
			reqs := spawner.Search(cat, cpos, terrain, d.rollRNG, players, worldSpawn, topOf)
			for _, req := range reqs {
				s.spawnMob(d, defaultSpecies(cat), req.Pos, categoryToMobCategory(cat))
			}
		}
	}
}

// defaultSpecies names a category's spawn tag. Search only resolves
// positions, not species (that's a per-biome spawn table's job, §4.10's
// spawner.List); without a biome registry wired in (§1) every category
// spawns its single reference example rather than rolling a table.
func defaultSpecies(c spawner.Category) string {
	switch c {
	case spawner.Monster:
		return "zombie"
	case spawner.WaterCreature:
		return "squid"
	case spawner.Ambient:
		return "bat"
	default:
		return "pig"
	}
}

func categoryToMobCategory(c spawner.Category) entity.MobCategory {
	if c == spawner.Monster {
		return entity.MobMonster
	}
	return entity.MobCreature
}

// mobCount counts d's resident mobs in the bucket categoryToMobCategory
// maps c onto. entity.MobCategory has three values against spawner's four
// (WaterCreature and Ambient both collapse onto MobCreature), so water and
// ambient population caps share a count with land creatures — a consequence
// of there being no biome/content registry (§1) to give water mobs their own
// entity category.
func (s *Server) mobCount(d *dimState, c spawner.Category) int {
	want := categoryToMobCategory(c)
	count := 0
	for _, e := range d.w.Entities() {
		we, ok := e.(worldEntity)
		if !ok {
			continue
		}
		if we.Kind() != entity.KindMob {
			continue
		}
		living, ok := we.Living()
		if !ok || living.Mob != want {
			continue
		}
		count++
	}
	return count
}

// surfaceHeight scans down from the chunk's build height for the topmost
// solid block, the minimal stand-in a registry-less terrain adapter can
// offer spawner.Search's topOf callback.
func surfaceHeight(t dimTerrain, x, z int32) int32 {
	for y := int32(world.MaxHeight - 1); y > 0; y-- {
		if !t.air(x, y, z) {
			return y
		}
	}
	return 0
}

func (s *Server) playerBlockPositions(dim world.Dimension) []world.BlockPos {
	var out []world.BlockPos
	for _, id := range s.playerIDsIn(dim) {
		e, ok := s.entities.Get(id)
		if !ok {
			continue
		}
		out = append(out, worldEntity{e}.Position())
	}
	return out
}

// spawnMob creates a new mob entity of the given species tag at pos and
// adds it to d's world, tracker and arena, assigning it a fresh global id.
// species stays a string tag (village.MobIronGolem, village.MobZombie, a
// spawner.List entry name) rather than a concrete mob type, so this package
// is the only place that needs to know how a species tag becomes an Entity.
func (s *Server) spawnMob(d *dimState, species string, pos world.BlockPos, category entity.MobCategory) *entity.Entity {
	id := s.ids.Next()
	e := entity.New(id, entity.KindMob, BBox(species), &entity.LivingData{Health: 20, MaxHealth: 20, Mob: category})
	e.SetPosition(mgl64.Vec3{float64(pos.X()) + 0.5, float64(pos.Y()), float64(pos.Z()) + 0.5})
	s.entities.Add(e)
	d.w.AddEntity(worldEntity{e})
	d.trk.Track(id, entity.KindMob, category, tracker.Snapshot{ID: id, Pos: e.Position()})
	if s.sink != nil {
		for _, pid := range s.playerIDsIn(d.dim) {
			s.sink.EntitySpawn(pid, e)
		}
	}
	return e
}

// BBox returns the bounding box used for species. Without a mob registry
// (§1) every spawned mob shares one reasonable default box; callers that
// need per-species hitboxes belong to the registry that owns real block and
// entity metadata.
func BBox(_ string) entity.BBox { return entity.BBox{HalfWidth: 0.3, Height: 1.8} }

// worldEntity adapts an *entity.Entity (sub-block mgl64.Vec3 position) to
// world.Entity (block-grid BlockPos position): the two packages are
// deliberately decoupled (§9), so the Server that wires them together owns
// the one place that floors one into the other.
type worldEntity struct{ *entity.Entity }

func (w worldEntity) Position() world.BlockPos {
	p := w.Entity.Position()
	return world.BlockPos{int(math.Floor(p[0])), int(math.Floor(p[1])), int(math.Floor(p[2]))}
}

// Join creates a player entity in dim (the default dimension if dim is the
// zero value) and registers it under name, returning its entity id. Joining
// a name already connected replaces the previous session's bookkeeping,
// mirroring how a reconnecting player supersedes their stale entry.
func (s *Server) Join(name string, dim world.Dimension) int64 {
	if dim == (world.Dimension{}) {
		dim = s.defaultDim
	}
	id := s.ids.Next()
	e := entity.New(id, entity.KindPlayer, entity.BBox{HalfWidth: 0.3, Height: 1.8}, &entity.LivingData{Health: 20, MaxHealth: 20})
	s.entities.Add(e)
	d := s.dims[dim]
	d.w.AddEntity(worldEntity{e})
	d.trk.Track(id, entity.KindPlayer, entity.MobCreature, tracker.Snapshot{ID: id, Pos: e.Position()})

	s.mu.Lock()
	s.players[name] = &playerInfo{name: name, entityID: id, dim: dim, gamemode: "survival"}
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.PlayerListAdd(id, name)
	}
	return id
}

// Leave disconnects name, removing its entity from its dimension, tracker
// and the arena.
func (s *Server) Leave(name string) bool {
	s.mu.Lock()
	p, ok := s.players[name]
	if ok {
		delete(s.players, name)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	d := s.dims[p.dim]
	d.w.RemoveEntity(p.entityID)
	watchers := d.trk.Untrack(p.entityID)
	s.entities.Remove(p.entityID)
	if s.sink != nil {
		s.sink.PlayerListRemove(p.entityID, name)
		for _, w := range watchers {
			s.sink.EntityDestroy(w, p.entityID)
		}
	}
	return true
}

// Run drives ticks at the configured interval until ctx is cancelled or Stop
// is called.
func (s *Server) Run(ctx context.Context) {
	interval := time.Duration(s.conf.TickIntervalMillis) * time.Millisecond
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopped:
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// --- cmd.Adapter ---

func (s *Server) Stop() error {
	s.stopOnce.Do(func() { close(s.stopped) })
	return nil
}

func (s *Server) WorldTime() int64 { return s.defaultState().w.Time() }

func (s *Server) SetWorldTime(v int64) { s.defaultState().w.SetWorldTime(v) }

func (s *Server) Weather() string {
	w := s.defaultState().w.Weather()
	switch {
	case w.Thundering:
		return "thunder"
	case w.Raining:
		return "rain"
	default:
		return "clear"
	}
}

func (s *Server) SetWeather(name string) {
	switch name {
	case "clear":
		s.defaultState().w.SetWeather(false, false)
	case "rain":
		s.defaultState().w.SetWeather(true, false)
	case "thunder":
		s.defaultState().w.SetWeather(true, true)
	}
}

func (s *Server) Seed() int64 { return s.defaultState().w.Seed() }

func (s *Server) PlayerNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.players))
	for name := range s.players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) Kick(name, reason string) bool {
	if !s.Leave(name) {
		return false
	}
	return true
}

func (s *Server) SetGamemode(name, mode string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[name]
	if !ok {
		return false
	}
	p.gamemode = mode
	return true
}

func (s *Server) SetDifficulty(name string) bool {
	levels := map[string]int32{"peaceful": 0, "easy": 1, "normal": 2, "hard": 3}
	lvl, ok := levels[name]
	if !ok {
		return false
	}
	s.defaultState().w.SetDifficulty(lvl)
	return true
}

func (s *Server) Rules() *world.GameRules { return s.defaultState().w.Rules() }

// --- cmd.SelectorResolver ---

func (s *Server) AllPlayers() []string { return s.PlayerNames() }

func (s *Server) NearestPlayer() (string, bool) {
	// Selector resolution is ordinarily relative to the command's invoking
	// entity; that context doesn't exist at this narrow Adapter/Resolver
	// boundary (cmd never sees a concrete position), so @p resolves
	// deterministically to the first player by name instead — the same
	// documented scope cut as cmd's positional-argument simplification.
	names := s.PlayerNames()
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

func (s *Server) RandomPlayer() (string, bool) {
	names := s.PlayerNames()
	if len(names) == 0 {
		return "", false
	}
	d := s.defaultState()
	return names[d.rollRNG.NextInt(int32(len(names)))], true
}

func (s *Server) Entities() []string {
	s.mu.RLock()
	playerIDs := make(map[int64]struct{}, len(s.players))
	for _, p := range s.players {
		playerIDs[p.entityID] = struct{}{}
	}
	s.mu.RUnlock()

	var ids []string
	s.entities.Each(func(e *entity.Entity) {
		if _, isPlayer := playerIDs[e.ID()]; isPlayer {
			return
		}
		ids = append(ids, fmt.Sprint(e.ID()))
	})
	return ids
}
