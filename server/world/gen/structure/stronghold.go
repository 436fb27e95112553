package structure

import (
	"math"

	"github.com/basaltcore/voxelserver/server/world/rng"
)

// strongholdCount is the fixed number of strongholds per world (§4.9).
const strongholdCount = 3

// Stronghold places a fixed three instances per world on a ring 1408-2688
// blocks from the origin, 120 degrees apart, with the ring's starting angle
// seeded from the world seed. Unlike the grid/per-chunk placers, its anchor
// chunks are computed once at construction and looked up by CanSpawn rather
// than recomputed per call.
type Stronghold struct {
	anchors [strongholdCount][2]int32
}

// NewStronghold computes the ring positions for worldSeed.
func NewStronghold(worldSeed int64) *Stronghold {
	r := rng.New(worldSeed)
	angle := r.NextDouble() * 360

	s := &Stronghold{}
	for i := 0; i < strongholdCount; i++ {
		dist := (1408.0 + float64(r.NextInt(1280))) / 16.0
		rad := angle * degToRad
		s.anchors[i] = [2]int32{
			int32(math.Round(math.Cos(rad) * dist)),
			int32(math.Round(math.Sin(rad) * dist)),
		}
		angle += 360.0 / strongholdCount
	}
	return s
}

func (*Stronghold) Name() string { return "Stronghold" }

func (s *Stronghold) CanSpawn(chunkX, chunkZ int32, r *rng.LCG) bool {
	for _, a := range s.anchors {
		if a[0] == chunkX && a[1] == chunkZ {
			return true
		}
	}
	return false
}

func (*Stronghold) Start(chunkX, chunkZ int32, r *rng.LCG) Start {
	baseX, baseZ := int(chunkX)*16, int(chunkZ)*16
	portal := Component{
		Box:    Box(baseX, 20, baseZ, baseX+11, 32, baseZ+11),
		Facing: int(r.NextInt(4)),
		Kind:   "portal_room",
	}
	s := Start{Name: "Stronghold", ChunkX: chunkX, ChunkZ: chunkZ, Parts: []Component{portal}}
	s.finalize()
	return s
}
