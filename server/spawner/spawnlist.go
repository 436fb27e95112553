package spawner

import (
	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

// Entry is one weighted species choice within a biome's spawn table.
type Entry struct {
	Species       string
	Weight        int
	MinGroupCount int
	MaxGroupCount int
}

// List is a biome's weighted spawn table for one category.
type List []Entry

// pick chooses one entry from l by cumulative weight, mirroring the
// reference's WeightedRandomItem lookup.
func (l List) pick(r *rng.LCG) (Entry, bool) {
	total := 0
	for _, e := range l {
		total += e.Weight
	}
	if total <= 0 {
		return Entry{}, false
	}
	roll := int(r.NextInt(int32(total)))
	for _, e := range l {
		roll -= e.Weight
		if roll < 0 {
			return e, true
		}
	}
	return l[len(l)-1], true
}

// groupSize returns a random group size in [MinGroupCount, MaxGroupCount].
func (e Entry) groupSize(r *rng.LCG) int {
	span := e.MaxGroupCount - e.MinGroupCount + 1
	if span <= 1 {
		return e.MinGroupCount
	}
	return e.MinGroupCount + int(r.NextInt(int32(span)))
}

// spawningChance is the reference's per-attempt continuation probability for
// chunk-generation-time spawning.
const spawningChance = 0.1

// GenerateInitialPopulation scatters one or more species groups around a
// freshly generated chunk's origin, the "populate chunk with starting
// animals" step distinct from per-tick natural spawning: it keeps rolling
// against spawningChance, picking a species from l each time, as long as the
// roll succeeds.
func GenerateInitialPopulation(l List, chunkOriginX, chunkOriginZ int32, topOf func(x, z int32) int32, r *rng.LCG) []Request {
	var out []Request
	for r.NextFloat() < spawningChance {
		entry, ok := l.pick(r)
		if !ok {
			return out
		}
		n := entry.groupSize(r)
		x, z := chunkOriginX, chunkOriginZ
		for i := 0; i < n; i++ {
			px := x + r.NextInt(16)
			pz := z + r.NextInt(16)
			py := topOf(px, pz)
			out = append(out, Request{
				Species: entry.Species,
				Pos:     world.BlockPos{int(px), int(py), int(pz)},
				Yaw:     r.NextFloat() * 360,
			})
			x += r.NextInt(11) - 5
			z += r.NextInt(11) - 5
		}
	}
	return out
}
