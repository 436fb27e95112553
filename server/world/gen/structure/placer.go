package structure

import (
	"math"

	"github.com/basaltcore/voxelserver/server/world/rng"
)

// Placer decides, for a candidate chunk, whether a structure anchors there
// and builds its Start if so. Implementations must be pure functions of
// (worldSeed, chunkX, chunkZ): the same inputs always produce the same
// decision, which is what lets independent servers agree on placement.
type Placer interface {
	// Name identifies the structure kind, used as the registry key.
	Name() string
	// CanSpawn reports whether this chunk anchors an instance, consuming r
	// as needed to make that decision.
	CanSpawn(chunkX, chunkZ int32, r *rng.LCG) bool
	// Start builds the structure anchored at this chunk. Only called after
	// CanSpawn has returned true for the same (chunkX, chunkZ, r) sequence.
	Start(chunkX, chunkZ int32, r *rng.LCG) Start
}

// chunkRNG seeds an LCG for (chunkX, chunkZ) the way the reference
// MapGenBase does: mixing two world-seed-derived longs with the chunk
// coordinates, so every structure kind gets an independent per-chunk stream.
func chunkRNG(worldSeed int64, chunkX, chunkZ int32) *rng.LCG {
	master := rng.New(worldSeed)
	randL := master.NextLong()
	randL2 := master.NextLong()
	seed := int64(chunkX)*randL ^ int64(chunkZ)*randL2 ^ worldSeed
	return rng.New(seed)
}

// gridAnchor implements the "grid lattice (cx/spacing, cz/spacing) seeded
// with a structure-specific salt" placement rule of §4.9: each spacing x
// spacing grid cell has exactly one candidate chunk, jittered within
// [0, spacing-separation) of the cell's origin.
func gridAnchor(chunkX, chunkZ, spacing, separation int32, salt int64) (anchorX, anchorZ int32) {
	gridX, gridZ := chunkX, chunkZ
	if chunkX < 0 {
		gridX = chunkX - spacing + 1
	}
	if chunkZ < 0 {
		gridZ = chunkZ - spacing + 1
	}
	gridX /= spacing
	gridZ /= spacing

	cell := rng.New(int64(gridX)*341873128712 + int64(gridZ)*132897987541 + salt)
	anchorX = gridX*spacing + cell.NextInt(spacing-separation)
	anchorZ = gridZ*spacing + cell.NextInt(spacing-separation)
	return
}

// onGrid reports whether (chunkX, chunkZ) is the one chunk per grid cell
// picked by gridAnchor for the given spacing/separation/salt.
func onGrid(chunkX, chunkZ, spacing, separation int32, salt int64) bool {
	ax, az := gridAnchor(chunkX, chunkZ, spacing, separation, salt)
	return chunkX == ax && chunkZ == az
}

const degToRad = math.Pi / 180
