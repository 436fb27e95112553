package structure

import "github.com/basaltcore/voxelserver/server/world/rng"

// Village places a village anchor on a 32-chunk grid with an 8-chunk
// separation band, per §4.9's structure placement rule.
type Village struct{}

const (
	villageSpacing    int32 = 32
	villageSeparation int32 = 8
	villageSalt             = 10387312
)

func (Village) Name() string { return "Village" }

func (Village) CanSpawn(chunkX, chunkZ int32, r *rng.LCG) bool {
	return onGrid(chunkX, chunkZ, villageSpacing, villageSeparation, villageSalt)
}

func (Village) Start(chunkX, chunkZ int32, r *rng.LCG) Start {
	baseX, baseZ := int(chunkX)*16, int(chunkZ)*16
	well := Component{
		Box:    Box(baseX, 64, baseZ, baseX+9, 78, baseZ+9),
		Facing: int(r.NextInt(4)),
		Kind:   "well",
	}
	s := Start{Name: "Village", ChunkX: chunkX, ChunkZ: chunkZ, Parts: []Component{well}}
	s.finalize()
	return s
}
