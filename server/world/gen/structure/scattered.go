package structure

import "github.com/basaltcore/voxelserver/server/world/rng"

// ScatteredFeature places biome-dependent temples/witch huts on the same
// grid shape as Village, but an independently salted lattice so the two
// structures don't collide chunk-for-chunk.
type ScatteredFeature struct{}

const (
	scatteredSpacing    int32 = 32
	scatteredSeparation int32 = 8
	scatteredSalt             = 14357617
)

func (ScatteredFeature) Name() string { return "Temple" }

func (ScatteredFeature) CanSpawn(chunkX, chunkZ int32, r *rng.LCG) bool {
	return onGrid(chunkX, chunkZ, scatteredSpacing, scatteredSeparation, scatteredSalt)
}

func (ScatteredFeature) Start(chunkX, chunkZ int32, r *rng.LCG) Start {
	baseX, baseZ := int(chunkX)*16, int(chunkZ)*16
	temple := Component{
		Box:    Box(baseX, 64, baseZ, baseX+21, 78, baseZ+21),
		Facing: int(r.NextInt(4)),
		Kind:   "temple",
	}
	s := Start{Name: "Temple", ChunkX: chunkX, ChunkZ: chunkZ, Parts: []Component{temple}}
	s.finalize()
	return s
}
