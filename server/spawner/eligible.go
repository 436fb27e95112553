package spawner

import "github.com/basaltcore/voxelserver/server/world"

// chunkState marks whether an interior chunk within a player's spawn radius
// is fully eligible, or a border chunk (eligible for tick but excluded from
// the random search so spawns never cluster right at the view-distance edge).
type chunkState int

const (
	stateUnseen chunkState = iota
	stateInterior
	stateBorder
)

// EligibleChunks is the set of chunks spawning may consider this tick,
// built once per tick from every loaded player's position.
type EligibleChunks struct {
	chunks map[world.ChunkPos]chunkState
}

// BuildEligibleChunks scans an eligibleChunkRange-chunk square around each
// player position, marking the outermost ring as border (ineligible for
// the random search, counted for population caps) and the interior as
// eligible. A chunk claimed as interior by any player stays interior even
// if another player's square marks it border.
func BuildEligibleChunks(playerChunks []world.ChunkPos) *EligibleChunks {
	e := &EligibleChunks{chunks: make(map[world.ChunkPos]chunkState)}
	for _, p := range playerChunks {
		for dx := int32(-eligibleChunkRange); dx <= eligibleChunkRange; dx++ {
			for dz := int32(-eligibleChunkRange); dz <= eligibleChunkRange; dz++ {
				pos := world.ChunkPos{X: p.X + dx, Z: p.Z + dz}
				border := dx == -eligibleChunkRange || dx == eligibleChunkRange ||
					dz == -eligibleChunkRange || dz == eligibleChunkRange
				if e.chunks[pos] == stateInterior {
					continue
				}
				if border {
					e.chunks[pos] = stateBorder
				} else {
					e.chunks[pos] = stateInterior
				}
			}
		}
	}
	return e
}

// Count returns how many chunks are currently eligible for spawning
// (interior plus border), the denominator §4.10's population caps scale by.
func (e *EligibleChunks) Count() int { return len(e.chunks) }

// InteriorChunks returns the chunks eligible for the random spawn search
// (border chunks are excluded so spawns never land at the scan's edge).
func (e *EligibleChunks) InteriorChunks() []world.ChunkPos {
	out := make([]world.ChunkPos, 0, len(e.chunks))
	for pos, state := range e.chunks {
		if state == stateInterior {
			out = append(out, pos)
		}
	}
	return out
}
