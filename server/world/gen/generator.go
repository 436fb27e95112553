// Package gen implements the chunk generation pipeline: a density-field
// terrain pass, a ground-cover replacement pass, and a decoration pass run
// once a chunk's neighbours are generated (§4.9), grounded on
// world/generator/pmgen's "one generator per dimension" shape.
package gen

import (
	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/biome"
	"github.com/basaltcore/voxelserver/server/world/gen/populate"
	"github.com/basaltcore/voxelserver/server/world/gen/structure"
	"github.com/basaltcore/voxelserver/server/world/noise"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

// smoothRadius is how many neighbouring columns (each direction) contribute
// to the Gaussian-smoothed elevation field.
const smoothRadius = 2

// waterHeight is the sea-level Y; columns below it and above the carved
// stone surface are filled with water.
const waterHeight = 62

// ySampleStep is the vertical spacing, in blocks, between density-noise
// samples; samples between steps are linearly interpolated, trading a
// barely-noticeable loss of vertical noise detail for an order-of-magnitude
// fewer noise evaluations per chunk.
const ySampleStep = 8

// gaussianKernel weights each of the 5x5 neighbouring columns contributing
// to a column's smoothed elevation; values from the reference generator's
// tuned kernel.
var gaussianKernel = [5][5]float64{
	{1.4715177646858, 2.141045714076, 2.4261226388505, 2.141045714076, 1.4715177646858},
	{2.141045714076, 3.1152031322856, 3.5299876103384, 3.1152031322856, 2.141045714076},
	{2.4261226388505, 3.5299876103384, 4, 3.5299876103384, 2.4261226388505},
	{2.141045714076, 3.1152031322856, 3.5299876103384, 3.1152031322856, 2.141045714076},
	{1.4715177646858, 2.141045714076, 2.4261226388505, 2.141045714076, 1.4715177646858},
}

// BlockIDs is the out-of-scope block registry's contract toward the
// generator: the concrete runtime ids it carves and decorates terrain with.
type BlockIDs struct {
	Bedrock, Stone, Water uint16
	populate.BlockIDs
}

// Generator carves and decorates chunks for one dimension from a single
// world seed. A Generator is safe for concurrent use by multiple chunk
// workers: Generate reads its own noise fields, writes only to its own
// output chunk, and records structure placement in the mutex-guarded
// structure.Registry.
type Generator struct {
	seed int64
	ids  BlockIDs

	density    *noise.OctavePerlin3D
	selector   *biome.Selector
	ores       []populate.OreType
	structures *structure.Registry
}

// New builds a Generator for worldSeed, wiring the universal ore veins from
// ids.
func New(worldSeed int64, ids BlockIDs) *Generator {
	density := noise.NewOctavePerlin3D(rng.New(rng.Mix(worldSeed, 1)), 4)
	selector := biome.NewSelector(rng.New(rng.Mix(worldSeed, 2)), biome.DefaultBiomes())
	return &Generator{
		seed:       worldSeed,
		ids:        ids,
		density:    density,
		selector:   selector,
		ores:       defaultOres(ids),
		structures: structure.NewRegistry(worldSeed),
	}
}

// Structures returns every village, temple, mineshaft and stronghold
// anchored at or overlapping pos, resolving placement for its neighbourhood
// first if this is the first time pos has been generated (§4.9 step 4).
func (g *Generator) Structures(pos world.ChunkPos) []structure.Start {
	g.structures.Generate(pos)
	return g.structures.IntersectingChunk(pos)
}

// defaultOres is the fixed vein table every biome receives in addition to
// its own populators, grounded on the reference generator's hardcoded ore
// list.
func defaultOres(ids BlockIDs) []populate.OreType {
	stone := ids.Stone
	return []populate.OreType{
		{Material: ids.CoalOre, Replaces: stone, ClusterCount: 20, ClusterSize: 16, MinHeight: 0, MaxHeight: 128},
		{Material: ids.IronOre, Replaces: stone, ClusterCount: 20, ClusterSize: 8, MinHeight: 0, MaxHeight: 64},
		{Material: ids.LapisOre, Replaces: stone, ClusterCount: 1, ClusterSize: 6, MinHeight: 0, MaxHeight: 32},
		{Material: ids.GoldOre, Replaces: stone, ClusterCount: 2, ClusterSize: 8, MinHeight: 0, MaxHeight: 32},
		{Material: ids.DiamondOre, Replaces: stone, ClusterCount: 1, ClusterSize: 7, MinHeight: 0, MaxHeight: 16},
		{Material: ids.Dirt, Replaces: stone, ClusterCount: 20, ClusterSize: 32, MinHeight: 0, MaxHeight: 128},
		{Material: ids.Gravel, Replaces: stone, ClusterCount: 10, ClusterSize: 16, MinHeight: 0, MaxHeight: 128},
	}
}

// pickBiome returns the biome for world column (x, z), applying the
// reference generator's hash-jitter so biome boundaries read as an organic
// voronoi edge rather than a grid.
func (g *Generator) pickBiome(x, z int64) biome.Biome {
	hash := x*2345803 ^ z*9236449 ^ g.seed
	hash *= hash + 223
	xNoise := hash >> 20 & 3
	zNoise := hash >> 22 & 3
	if xNoise == 3 {
		xNoise = 1
	}
	if zNoise == 3 {
		zNoise = 1
	}
	b := g.selector.PickBiome(x+xNoise-1, z+zNoise-1)
	if _, ok := b.(biome.Mountains); ok && hash>>10&1 == 1 {
		// Alternate between the two Mountains elevation profiles so
		// mountain ranges vary in bumpiness without affecting the
		// persisted biome id (SmallMountains shares IDMountains).
		return biome.SmallMountains{}
	}
	return b
}

// Generate carves a single chunk's terrain and biomes from the density
// field; it touches no other chunk and is safe to call from any goroutine.
// Decoration runs separately, via Populate, once neighbouring chunks exist.
func (g *Generator) Generate(pos world.ChunkPos) *world.Chunk {
	c := world.NewChunk(pos)
	baseX, baseZ := int64(pos.X)*16, int64(pos.Z)*16

	g.structures.Generate(pos)

	biomeCache := make(map[[2]int64]biome.Biome)

	ySamples := world.MaxHeight/ySampleStep + 1
	raw := g.density.Generate3D(nil, int(baseX), 0, int(baseZ), 16, ySamples, 16,
		1.0/32, 1.0/(4*ySampleStep), 1.0/32)

	sampleAt := func(xi, zi, y int) float64 {
		lo := y / ySampleStep
		frac := float64(y%ySampleStep) / float64(ySampleStep)
		idx := func(yi int) int { return (xi*16+zi)*ySamples + yi }
		a := raw[idx(lo)]
		if lo+1 >= ySamples {
			return a
		}
		b := raw[idx(lo+1)]
		return a + (b-a)*frac
	}

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			b := g.pickBiome(baseX+int64(x), baseZ+int64(z))
			c.SetBiome(x, z, b.ID())

			minSum, maxSum, weightSum := 0.0, 0.0, 0.0
			for sx := -smoothRadius; sx <= smoothRadius; sx++ {
				for sz := -smoothRadius; sz <= smoothRadius; sz++ {
					weight := gaussianKernel[sx+smoothRadius][sz+smoothRadius]

					var adjacent biome.Biome
					if sx == 0 && sz == 0 {
						adjacent = b
					} else {
						key := [2]int64{baseX + int64(x+sx), baseZ + int64(z+sz)}
						if cached, ok := biomeCache[key]; ok {
							adjacent = cached
						} else {
							adjacent = g.pickBiome(key[0], key[1])
							biomeCache[key] = adjacent
						}
					}

					lo, hi := adjacent.Elevation()
					minSum += float64(lo-1) * weight
					maxSum += float64(hi) * weight
					weightSum += weight
				}
			}
			minSum /= weightSum
			maxSum /= weightSum
			smoothHeight := (maxSum - minSum) / 2
			if smoothHeight == 0 {
				smoothHeight = 1
			}

			for y := 0; y < world.MaxHeight; y++ {
				if y == 0 {
					c.SetBlock(x, y, z, g.ids.Bedrock, 0)
					continue
				}
				noiseValue := sampleAt(x, z, y) - 1.0/smoothHeight*(float64(y)-smoothHeight-minSum)
				switch {
				case noiseValue > 0:
					c.SetBlock(x, y, z, g.ids.Stone, 0)
				case y <= waterHeight:
					c.SetBlock(x, y, z, g.ids.Water, 0)
				}
			}

			applyGroundCover(c, x, z, b.GroundCover(), g.ids)
		}
	}

	return c
}

func applyGroundCover(c *world.Chunk, x, z int, cover []biome.CoverLayer, ids BlockIDs) {
	if len(cover) == 0 {
		return
	}
	start := c.Height(x, z) - 1
	for i, layer := range cover {
		y := start - i
		if y < 0 {
			break
		}
		id, _ := c.Block(x, y, z)
		if id != ids.Stone {
			break
		}
		c.SetBlock(x, y, z, coverBlockID(layer, ids), 0)
	}
}

func coverBlockID(layer biome.CoverLayer, ids BlockIDs) uint16 {
	switch layer {
	case biome.LayerTopsoil:
		return ids.Grass
	case biome.LayerDirt:
		return ids.Dirt
	case biome.LayerSand:
		return ids.Sand
	case biome.LayerGravel:
		return ids.Gravel
	default:
		return ids.Stone
	}
}

// Populate runs this chunk's decoration populators (universal ore veins
// plus its biome's own populators) provided every chunk in its 3x3
// neighbourhood is already loaded in w; it reports whether decoration ran.
// Callers are expected to retry later if it did not (§4.9's
// "Populate-after-neighbours" rule).
func (g *Generator) Populate(w *world.World, pos world.ChunkPos) bool {
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			if _, ok := w.Chunk(world.ChunkPos{X: pos.X + dx, Z: pos.Z + dz}); !ok {
				return false
			}
		}
	}

	centre := g.pickBiome(int64(pos.X)*16+7, int64(pos.Z)*16+7)
	r := rng.New(rng.Mix(g.seed, int64(pos.X), int64(pos.Z)))

	pops := append([]populate.Populator{oreVeins{ores: g.ores}}, centre.Populators()...)
	w.Exec(func(tx *world.Tx) {
		for _, p := range pops {
			p.Populate(tx, pos, g.ids.BlockIDs, r)
		}
	})
	return true
}

// oreVeins adapts the Generator's ore table to the Populator interface.
type oreVeins struct {
	ores []populate.OreType
}

func (o oreVeins) Populate(tx *world.Tx, pos world.ChunkPos, ids populate.BlockIDs, r *rng.LCG) {
	(populate.Ore{Types: o.ores}).Populate(tx, pos, ids, r)
}
