package structure

import "github.com/basaltcore/voxelserver/server/world/rng"

// Mineshaft runs an independent 1% trial on every chunk, per §4.9.
type Mineshaft struct{}

func (Mineshaft) Name() string { return "Mineshaft" }

func (Mineshaft) CanSpawn(chunkX, chunkZ int32, r *rng.LCG) bool {
	return r.NextInt(100) == 0
}

func (Mineshaft) Start(chunkX, chunkZ int32, r *rng.LCG) Start {
	baseX, baseZ := int(chunkX)*16, int(chunkZ)*16
	y := int(r.NextInt(40)) + 10
	corridor := Component{
		Box:    Box(baseX, y, baseZ, baseX+15, y+4, baseZ+15),
		Facing: int(r.NextInt(4)),
		Kind:   "corridor",
	}
	s := Start{Name: "Mineshaft", ChunkX: chunkX, ChunkZ: chunkZ, Parts: []Component{corridor}}
	s.finalize()
	return s
}
