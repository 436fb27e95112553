package populate

import (
	"math"

	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/rng"
	"github.com/go-gl/mathgl/mgl64"
)

// Ore places each of its OreTypes as ellipsoidal veins within the chunk
// column, one cluster attempt per OreType.ClusterCount.
type Ore struct {
	Types []OreType
}

// OreType describes one vein kind: the block it places, the block it may
// replace, how many clusters to attempt and how large each is, and the
// height band clusters are seeded in.
type OreType struct {
	Material, Replaces        uint16
	ClusterCount, ClusterSize int
	MinHeight, MaxHeight      int
}

func (o Ore) Populate(tx *world.Tx, pos world.ChunkPos, _ BlockIDs, r *rng.LCG) {
	for _, ore := range o.Types {
		for i := 0; i < ore.ClusterCount; i++ {
			x := int(pos.X)*16 + int(r.NextInt(16))
			band := ore.MaxHeight - ore.MinHeight
			if band <= 0 {
				band = 1
			}
			y := ore.MinHeight + int(r.NextInt(int32(band)))
			z := int(pos.Z)*16 + int(r.NextInt(16))
			seed := world.BlockPos{x, y, z}
			if id, _ := tx.Block(seed); id == ore.Replaces {
				ore.place(tx, seed, r)
			}
		}
	}
}

// place grows one vein from seed along a random chord, matching the
// sin-weighted ellipsoid-radius walk of the reference ore populator.
func (o OreType) place(tx *world.Tx, seed world.BlockPos, r *rng.LCG) {
	clusterSize := float64(o.ClusterSize)
	if clusterSize <= 0 {
		return
	}
	vec := mgl64.Vec3{float64(seed.X()), float64(seed.Y()), float64(seed.Z())}
	angle := r.NextDouble() * math.Pi
	offset := mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(clusterSize / 8)

	x1, x2 := vec.X()+8+offset.X(), vec.X()+8-offset.X()
	z1, z2 := vec.Z()+8+offset.Y(), vec.Z()+8-offset.Y()
	y1, y2 := vec.Y()+float64(r.NextInt(3))+2, vec.Y()+float64(r.NextInt(3))+2

	for i := 0.0; i <= clusterSize; i++ {
		seedX := x1 + (x2-x1)*i/clusterSize
		seedY := y1 + (y2-y1)*i/clusterSize
		seedZ := z1 + (z2-z1)*i/clusterSize
		size := ((math.Sin(i*(math.Pi/clusterSize))+1)*r.NextDouble()*clusterSize/16 + 1) / 2
		if size <= 0 {
			continue
		}

		startX, startY, startZ := int(seedX-size), int(seedY-size), int(seedZ-size)
		endX, endY, endZ := int(seedX+size), int(seedY+size), int(seedZ+size)

		for xx := startX; xx <= endX; xx++ {
			sizeX := (float64(xx) + 0.5 - seedX) / size
			sizeX *= sizeX
			if sizeX >= 1 {
				continue
			}
			for yy := startY; yy <= endY; yy++ {
				if yy <= 0 {
					continue
				}
				sizeY := (float64(yy) + 0.5 - seedY) / size
				sizeY *= sizeY
				if sizeX+sizeY >= 1 {
					continue
				}
				for zz := startZ; zz <= endZ; zz++ {
					sizeZ := (float64(zz) + 0.5 - seedZ) / size
					sizeZ *= sizeZ
					if sizeX+sizeY+sizeZ >= 1 {
						continue
					}
					target := world.BlockPos{xx, yy, zz}
					if id, _ := tx.Block(target); id == o.Replaces {
						tx.SetBlock(target, o.Material, 0)
					}
				}
			}
		}
	}
}
