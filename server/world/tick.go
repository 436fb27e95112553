package world

const (
	// maxScheduledTicksPerTick caps the scheduled-tick drain (§4.1 step 4,
	// §8 boundary behaviour).
	maxScheduledTicksPerTick = 1000
	// randomTicksPerSection is the number of random-tick rolls performed
	// per non-empty section each tick (§4.1 step 5).
	randomTicksPerSection = 3
	// entityTickSuppressionThreshold is the number of consecutive
	// player-less ticks after which entity ticking is skipped (§4.1 step 6).
	entityTickSuppressionThreshold = 1200
	// sleepThresholdTicks is how long every player must have been in bed
	// before the night is skipped (§4.1 step 2).
	sleepThresholdTicks = 100
	// dawnInterval is the length of a full day in world ticks.
	dawnInterval = 24000
)

// BlockRegistry is the (out-of-scope, §1) block/item registry's contract
// toward the tick pipeline: whether a block ticks randomly, and the handlers
// invoked for scheduled and random ticks.
type BlockRegistry interface {
	RandomTicking(id uint16) bool
	ScheduledTick(tx *Tx, pos BlockPos, id uint16, meta uint8)
	RandomTick(tx *Tx, pos BlockPos, id uint16, meta uint8, roll func(n int32) int32)
	ColdBiome(biome uint8) bool
	PrecipitationHeight(tx *Tx, x, z int) int
	// Precipitate is invoked once per qualifying random-tick roll (§4.1 step
	// 5): below top, freeze water to ice in cold biomes; above top, place
	// snow in cold biomes; otherwise do nothing. The registry owns the
	// concrete block ids since the registry itself is out of scope (§1).
	Precipitate(tx *Tx, x, z, top int, cold bool)
}

// Pipeline drives one World through exactly one tick, running the ordered
// stages of §4.1. It holds the per-world sleeping-in-bed counter and
// player-less-tick counter that must persist across ticks.
type Pipeline struct {
	Registry BlockRegistry

	sleepTicks       map[int64]int
	playerlessStreak int64
	lastFlush        []BlockEvent
}

// NewPipeline returns a Pipeline bound to reg. reg may be nil, in which case
// scheduled and random ticks are no-ops (useful for empty-world tests, §8
// scenario 1).
func NewPipeline(reg BlockRegistry) *Pipeline {
	return &Pipeline{Registry: reg, sleepTicks: make(map[int64]int)}
}

// Tick advances w by exactly one tick, with playerIDs listing the players
// currently connected to this world (whether each is in bed is read from
// w's sleeping set) and roll a deterministic random source for
// weather-countdown rerolls (kept outside the LCG so the LCG stays reserved
// for the chunk-selection uses specified in §4.1 step 5).
func (p *Pipeline) Tick(w *World, playerIDs []int64, roll func(lo, hi int) int) {
	w.Exec(func(tx *Tx) {
		p.tick(tx, playerIDs, roll)
	})
}

func (p *Pipeline) tick(tx *Tx, playerIDs []int64, roll func(lo, hi int) int) {
	w := tx.World()

	// Stage 1: difficulty coercion.
	if w.hardcore {
		w.SetDifficulty(3) // hard
	}

	// Stage 2: all-players-sleeping resolution.
	if len(playerIDs) > 0 {
		allSleeping := true
		for _, id := range playerIDs {
			if _, sleeping := w.sleeping[id]; sleeping {
				p.sleepTicks[id]++
			} else {
				p.sleepTicks[id] = 0
				allSleeping = false
			}
		}
		if allSleeping {
			minSlept := int(^uint(0) >> 1)
			for _, id := range playerIDs {
				if p.sleepTicks[id] < minSlept {
					minSlept = p.sleepTicks[id]
				}
			}
			if minSlept >= sleepThresholdTicks {
				w.worldTime = 0 // next dawn on the wrapped 0-23999 clock
				w.weather.Clear()
				for _, id := range playerIDs {
					p.sleepTicks[id] = 0
				}
			}
		}
	}

	// Stage 3: time advance.
	w.totalWorldTime++
	if w.rules.Bool("doDaylightCycle") {
		w.worldTime = (w.worldTime + 1) % dawnInterval
	}
	if roll != nil {
		w.weather.advance(roll)
	}

	// Stage 4: scheduled-tick drain.
	due := w.scheduled.Drain(w.totalWorldTime, maxScheduledTicksPerTick)
	for _, e := range due {
		id, meta := tx.Block(e.Pos)
		if id != e.BlockID || p.Registry == nil {
			continue
		}
		p.Registry.ScheduledTick(tx, e.Pos, id, meta)
	}

	// Stage 5: random block ticks. The world's single 32-bit LCG is
	// advanced chunk by chunk, in ActiveChunks' coordinate order (once for
	// the chunk, then once per random-tick roll), so that the sequence of draws — and therefore every
	// random-tick outcome — depends only on the world seed and the ordered
	// set of active chunks (§3, §4.1 step 5, §5).
	speed := w.rules.Int("randomTickSpeed")
	for _, cpos := range w.ActiveChunks() {
		c, ok := w.Chunk(cpos)
		if !ok {
			continue
		}
		p.randomTickChunk(tx, c, speed)
	}

	// Stage 6: entity tick suppression is reported via ShouldTickEntities;
	// callers decide whether to actually tick entities this pass.
	if len(playerIDs) == 0 {
		p.playerlessStreak++
	} else {
		p.playerlessStreak = 0
	}

	// Stage 7: block-event flush happens last, after every other stage.
	p.lastFlush = w.events.Flush()
}

// ShouldTickEntities reports whether entity ticking should run this tick,
// implementing the 1200-consecutive-tick suppression of §4.1 step 6.
func (p *Pipeline) ShouldTickEntities() bool {
	return p.playerlessStreak < entityTickSuppressionThreshold
}

// FlushedEvents returns the block events flushed during the most recent
// Tick call, for forwarding to viewers.
func (p *Pipeline) FlushedEvents() []BlockEvent {
	return p.lastFlush
}

// randomTickChunk advances the world's shared LCG and performs the
// precipitation/random-tick rolls of §4.1 step 5 for one active chunk.
func (p *Pipeline) randomTickChunk(tx *Tx, c *Chunk, speed int) {
	w := tx.w
	next := func() uint32 {
		w.lcg = w.lcg*3 + 1013904223
		return w.lcg
	}

	lcgVal := next()
	rain, thunder := w.weather.Raining, w.weather.Thundering
	if rain && thunder && lcgVal%100000 == 0 {
		x := int(c.Pos.X)*16 + int((lcgVal>>8)&15)
		z := int(c.Pos.Z)*16 + int((lcgVal>>16)&15)
		tx.PushBlockEvent(BlockEvent{Pos: BlockPos{x, 0, z}, Type: EventLightningStrike})
	}
	if lcgVal&15 == 0 && p.Registry != nil {
		x := int((lcgVal >> 8) & 15)
		z := int((lcgVal >> 16) & 15)
		top := p.Registry.PrecipitationHeight(tx, int(c.Pos.X)*16+x, int(c.Pos.Z)*16+z)
		biome := c.Biome(x, z)
		p.Registry.Precipitate(tx, int(c.Pos.X)*16+x, int(c.Pos.Z)*16+z, top, p.Registry.ColdBiome(biome))
	}

	if p.Registry == nil {
		return
	}
	for y := 0; y < SectionsPerChunk; y++ {
		sec := c.Sections[y]
		if sec == nil || sec.Empty() {
			continue
		}
		for i := 0; i < randomTicksPerSection*max1(speed); i++ {
			v := next()
			lx := int(v & 15)
			lz := int((v >> 8) & 15)
			ly := int((v >> 16) & 15)
			id, meta := sec.Block(lx, ly, lz)
			if p.Registry.RandomTicking(id) {
				pos := BlockPos{int(c.Pos.X)*16 + lx, y*16 + ly, int(c.Pos.Z)*16 + lz}
				p.Registry.RandomTick(tx, pos, id, meta, func(n int32) int32 { return int32(next() % uint32(n)) })
			}
		}
	}
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// EventLightningStrike requests that a lightning-bolt entity be spawned at
// the event's position; actually spawning it is the entity package's job,
// since World has no dependency on the entity model (§9).
const EventLightningStrike int32 = -1
