// Package populate implements the decoration pass that runs after a chunk's
// base terrain has been carved: ore veins, trees, and tall grass, each
// consuming a per-chunk rng.LCG so decoration is reproducible for a given
// chunk seed.
package populate

import (
	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

// BlockIDs is the out-of-scope block registry's contract toward decoration:
// the concrete runtime ids populators place, resolved once the registry has
// been finalised (mirrors world.BlockRegistry's role toward the tick
// pipeline).
type BlockIDs struct {
	Air, Dirt, Grass, TallGrass, Sand, Gravel uint16

	OakLog, OakLeaves       uint16
	SpruceLog, SpruceLeaves uint16
	BirchLog, BirchLeaves   uint16

	CoalOre, IronOre, GoldOre, DiamondOre, LapisOre uint16
}

// Populator decorates the chunk at pos after its base terrain has been set.
// Implementations must only place blocks via tx, never read or write chunks
// other than immediate neighbours of pos (decoration may spill one block
// across a chunk edge the way tree canopies do).
type Populator interface {
	Populate(tx *world.Tx, pos world.ChunkPos, ids BlockIDs, r *rng.LCG)
}
