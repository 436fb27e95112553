package populate

import (
	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

// TallGrass scatters Amount (+0 or +1) tufts of grass per chunk onto the
// topmost grass-block-then-air column it finds.
type TallGrass struct {
	Amount int
}

func (t TallGrass) Populate(tx *world.Tx, pos world.ChunkPos, ids BlockIDs, r *rng.LCG) {
	amount := int(r.NextInt(2)) + t.Amount
	for i := 0; i < amount; i++ {
		x := int(pos.X)*16 + int(r.NextInt(16))
		z := int(pos.Z)*16 + int(r.NextInt(16))
		if y, ok := highestGrassBlock(tx, x, z, ids); ok {
			tx.SetBlock(world.BlockPos{x, y, z}, ids.TallGrass, 0)
		}
	}
}

func highestGrassBlock(tx *world.Tx, x, z int, ids BlockIDs) (int, bool) {
	for y := world.MaxHeight - 1; y > 0; y-- {
		above, _ := tx.Block(world.BlockPos{x, y, z})
		below, _ := tx.Block(world.BlockPos{x, y - 1, z})
		if above == ids.Air && below == ids.Grass {
			return y, true
		}
	}
	return 0, false
}
