package world

// Tx is the transaction handle pipeline stages and block/entity handlers use
// to touch world state. It exists so that, by construction, only code
// running inside World.Exec ever mutates a World — the "single thread owns
// a world" rule of §5 (grounded on the teacher's world.Tx/Exec pattern).
type Tx struct {
	w *World
}

// World returns the transaction's owning world.
func (tx *Tx) World() *World { return tx.w }

// ExecFunc is a function run with exclusive access to a world's state.
type ExecFunc func(tx *Tx)

// Exec runs f with a Tx for w. In this single-process core, worlds are only
// ever driven by their own tick loop, so Exec simply invokes f synchronously;
// the indirection is what lets redstone callbacks, the tick pipeline and
// tests all share one mutation path.
func (w *World) Exec(f ExecFunc) {
	f(&Tx{w: w})
}

// Block returns the block id and metadata at pos, or (0, 0) if the chunk is
// not loaded.
func (tx *Tx) Block(pos BlockPos) (id uint16, meta uint8) {
	c, ok := tx.w.Chunk(pos.Chunk())
	if !ok {
		return 0, 0
	}
	y := pos.Y()
	if y < 0 || y >= MaxHeight {
		return 0, 0
	}
	return c.Block(pos.X()&15, y, pos.Z()&15)
}

// SetBlock sets the block id and metadata at pos, if its chunk is loaded
// and Y is in range. It only writes the chunk; no viewer event is raised.
func (tx *Tx) SetBlock(pos BlockPos, id uint16, meta uint8) {
	c, ok := tx.w.Chunk(pos.Chunk())
	if !ok {
		return
	}
	y := pos.Y()
	if y < 0 || y >= MaxHeight {
		return
	}
	c.SetBlock(pos.X()&15, y, pos.Z()&15, id, meta)
}

// ScheduleBlockUpdate enqueues a scheduled tick for pos, keyed by
// (pos, blockID) per §3's dedup invariant.
func (tx *Tx) ScheduleBlockUpdate(pos BlockPos, blockID uint16, delayTicks int64) {
	tx.w.scheduled.Schedule(pos, blockID, tx.w.totalWorldTime+delayTicks)
}

// PushBlockEvent raises a block event for the external network layer,
// buffered until the tick's flush stage (§4.1 step 7).
func (tx *Tx) PushBlockEvent(ev BlockEvent) {
	tx.w.events.Push(ev)
}

// HighestBlock returns the height-map entry for the column at (x, z), or 0
// if the chunk is not loaded.
func (tx *Tx) HighestBlock(x, z int) int {
	c, ok := tx.w.Chunk(ChunkPos{int32(x >> 4), int32(z >> 4)})
	if !ok {
		return 0
	}
	return c.Height(x&15, z&15)
}
