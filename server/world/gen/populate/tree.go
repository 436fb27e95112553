package populate

import (
	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

// Tree scatters BaseAmount (+0 or +1) trees of Type per chunk onto the
// topmost dirt-or-grass column it finds.
type Tree struct {
	BaseAmount int
	Type       TreeType
}

func (t Tree) Populate(tx *world.Tx, pos world.ChunkPos, ids BlockIDs, r *rng.LCG) {
	amount := int(r.NextInt(2)) + t.BaseAmount
	for i := 0; i < amount; i++ {
		x := int(pos.X)*16 + int(r.NextInt(16))
		z := int(pos.Z)*16 + int(r.NextInt(16))
		if y, ok := highestSoilBlock(tx, x, z, ids); ok {
			treeType := t.Type
			if birch, ok2 := treeType.(BirchTree); ok2 && r.NextInt(39) == 0 {
				birch.Super = true
				treeType = birch
			}
			treeType.Grow(tx, world.BlockPos{x, y, z}, ids, r)
		}
	}
}

func highestSoilBlock(tx *world.Tx, x, z int, ids BlockIDs) (int, bool) {
	for y := world.MaxHeight - 1; y > 0; y-- {
		below, _ := tx.Block(world.BlockPos{x, y - 1, z})
		if below == ids.Dirt || below == ids.Grass {
			return y, true
		}
		if below != ids.Air {
			return 0, false
		}
	}
	return 0, false
}

// TreeType grows one tree shape rooted at pos.
type TreeType interface {
	Grow(tx *world.Tx, pos world.BlockPos, ids BlockIDs, r *rng.LCG)
}

func overridable(ids BlockIDs, id uint16) bool {
	return id == ids.Air || id == ids.OakLeaves || id == ids.SpruceLeaves || id == ids.BirchLeaves
}

// SpruceTree grows a tapering conical canopy over a straight trunk.
type SpruceTree struct{}

func (SpruceTree) Grow(tx *world.Tx, pos world.BlockPos, ids BlockIDs, r *rng.LCG) {
	if !canGrow(tx, pos, ids, 10) {
		return
	}
	treeHeight := int(r.NextInt(4)) + 6
	topSize := treeHeight - int(1+r.NextInt(2))
	lr := 2 + int(r.NextInt(2))

	trunk(tx, pos, ids, ids.SpruceLog, treeHeight-int(r.NextInt(3)))

	radius := int(r.NextInt(2))
	minR, maxR := 0, 1

	for y := 0; y <= topSize; y++ {
		yy := pos.Y() + treeHeight - y
		for x := pos.X() - radius; x <= pos.X()+radius; x++ {
			xOff := abs(x - pos.X())
			for z := pos.Z() - radius; z <= pos.Z()+radius; z++ {
				zOff := abs(z - pos.Z())
				if xOff == radius && zOff == radius && radius > 0 {
					continue
				}
				p := world.BlockPos{x, yy, z}
				if id, _ := tx.Block(p); overridable(ids, id) {
					tx.SetBlock(p, ids.SpruceLeaves, 0)
				}
			}
		}

		if radius >= maxR {
			radius = minR
			minR = 1
			if maxR++; maxR > lr {
				maxR = lr
			}
		} else {
			radius++
		}
	}
}

// OakTree grows a rounded canopy over a short trunk.
type OakTree struct{}

func (OakTree) Grow(tx *world.Tx, pos world.BlockPos, ids BlockIDs, r *rng.LCG) {
	if !canGrow(tx, pos, ids, 7) {
		return
	}
	treeHeight := int(r.NextInt(3)) + 4
	basicTop(tx, pos, ids, r, ids.OakLeaves, treeHeight)
	trunk(tx, pos, ids, ids.OakLog, treeHeight-1)
}

// BirchTree grows like OakTree but taller, and taller still when Super
// (rolled 1-in-39 by Tree.Populate).
type BirchTree struct {
	Super bool
}

func (b BirchTree) Grow(tx *world.Tx, pos world.BlockPos, ids BlockIDs, r *rng.LCG) {
	if !canGrow(tx, pos, ids, 7) {
		return
	}
	treeHeight := int(r.NextInt(3)) + 5
	if b.Super {
		treeHeight += 5
	}
	basicTop(tx, pos, ids, r, ids.BirchLeaves, treeHeight)
	trunk(tx, pos, ids, ids.BirchLog, treeHeight-1)
}

func basicTop(tx *world.Tx, pos world.BlockPos, ids BlockIDs, r *rng.LCG, leaves uint16, treeHeight int) {
	for yy := pos.Y() - 3 + treeHeight; yy <= pos.Y()+treeHeight; yy++ {
		yOff := yy - (pos.Y() + treeHeight)
		mid := 1 - yOff/2
		for xx := pos.X() - mid; xx <= pos.X()+mid; xx++ {
			xOff := abs(xx - pos.X())
			for zz := pos.Z() - mid; zz <= pos.Z()+mid; zz++ {
				zOff := abs(zz - pos.Z())
				if xOff == mid && zOff == mid && (yOff == 0 || r.NextInt(2) == 0) {
					continue
				}
				p := world.BlockPos{xx, yy, zz}
				if id, _ := tx.Block(p); overridable(ids, id) {
					tx.SetBlock(p, leaves, 0)
				}
			}
		}
	}
}

func trunk(tx *world.Tx, pos world.BlockPos, ids BlockIDs, log uint16, trunkHeight int) {
	tx.SetBlock(world.BlockPos{pos.X(), pos.Y() - 1, pos.Z()}, ids.Dirt, 0)
	for y := 0; y < trunkHeight; y++ {
		p := world.BlockPos{pos.X(), pos.Y() + y, pos.Z()}
		if id, _ := tx.Block(p); overridable(ids, id) {
			tx.SetBlock(p, log, 0)
		}
	}
}

func canGrow(tx *world.Tx, pos world.BlockPos, ids BlockIDs, treeHeight int) bool {
	radiusToCheck := 0
	for yy := 0; yy < treeHeight+3; yy++ {
		if yy == 1 || yy == treeHeight {
			radiusToCheck++
		}
		for xx := -radiusToCheck; xx <= radiusToCheck; xx++ {
			for zz := -radiusToCheck; zz <= radiusToCheck; zz++ {
				p := world.BlockPos{pos.X() + xx, pos.Y() + yy, pos.Z() + zz}
				id, _ := tx.Block(p)
				if !overridable(ids, id) {
					return false
				}
			}
		}
	}
	return true
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
