package biome

import (
	"github.com/basaltcore/voxelserver/server/world/noise"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

// climateScale is the block-to-noise-coordinate divisor for the
// temperature/rainfall fields; large relative to a chunk (16 blocks) so
// neighbouring chunks usually share a biome, matching the "one biome per
// several chunks" texture real terrain generators produce.
const climateScale = 1.0 / 256.0

// Selector picks the nearest registered biome to a sampled climate point,
// the Go-native stand-in for a GenLayer stack: two independent noise fields
// produce a (temperature, rainfall) sample per block column, and whichever
// registered biome is closest in that climate space wins.
type Selector struct {
	temperature *noise.Simplex2D
	rainfall    *noise.Simplex2D
	biomes      []Biome
}

// NewSelector builds a Selector over biomes, seeding its climate fields from
// r. Seed consumption order matters for determinism: temperature is drawn
// before rainfall.
func NewSelector(r *rng.LCG, biomes []Biome) *Selector {
	s := &Selector{
		temperature: noise.NewSimplex2D(r),
		rainfall:    noise.NewSimplex2D(r),
		biomes:      make([]Biome, len(biomes)),
	}
	copy(s.biomes, biomes)
	s.recalculate()
	return s
}

// recalculate orders the registered biome set deterministically so that ties
// in climate distance break the same way regardless of registration order.
func (s *Selector) recalculate() {
	for i := 1; i < len(s.biomes); i++ {
		for j := i; j > 0 && s.biomes[j].ID() < s.biomes[j-1].ID(); j-- {
			s.biomes[j], s.biomes[j-1] = s.biomes[j-1], s.biomes[j]
		}
	}
}

// PickBiome returns the registered biome whose (Temperature, Rainfall) is
// nearest the climate sample at block column (x, z).
func (s *Selector) PickBiome(x, z int64) Biome {
	t := s.temperature.Value(float64(x)*climateScale, float64(z)*climateScale)
	r := s.rainfall.Value(float64(x)*climateScale, float64(z)*climateScale)
	// Simplex output is roughly [-1, 1]; rescale to Biome's declared
	// [0, 2] temperature / [0, 1] rainfall ranges.
	temp := (t + 1.0) * 1.0
	rain := (r + 1.0) * 0.5

	var best Biome
	bestDist := -1.0
	for _, b := range s.biomes {
		dt := b.Temperature() - temp
		dr := b.Rainfall() - rain
		dist := dt*dt + dr*dr
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = b
		}
	}
	return best
}

// DefaultBiomes returns the standard biome set a world generator registers
// with a Selector absent more specific configuration.
func DefaultBiomes() []Biome {
	return []Biome{
		Ocean{}, Plains{}, Desert{}, Mountains{}, Forest{},
		Taiga{}, Swamp{}, River{}, BirchForest{}, IcePlains{},
	}
}
