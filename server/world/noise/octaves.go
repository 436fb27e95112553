package noise

import (
	"golang.org/x/exp/constraints"

	"github.com/basaltcore/voxelserver/server/world/rng"
)

// octaveAmplitudes returns the per-octave amplitude multipliers for n
// octaves decaying by persistence each step (amplitudes[0] == 1), shared by
// both the 2D and 3D octave wrappers so their decay schedules can't drift
// apart.
func octaveAmplitudes[T constraints.Float](n int, persistence T) []T {
	amps := make([]T, n)
	amp := T(1)
	for i := range amps {
		amps[i] = amp
		amp *= persistence
	}
	return amps
}

// OctaveSimplex2D sums independent Simplex2D fields with halving frequency.
// Neither biome nor gen uses it: biome samples single Simplex2D fields and
// gen samples OctavePerlin3D.
type OctaveSimplex2D struct {
	layers []*Simplex2D
}

// NewOctaveSimplex2D builds octaves independently-seeded Simplex2D layers
// from r, consuming r in sequence the way the reference generator consumes
// one shared RNG to build each octave in turn.
func NewOctaveSimplex2D(r *rng.LCG, octaves int) *OctaveSimplex2D {
	layers := make([]*Simplex2D, octaves)
	for i := range layers {
		layers[i] = NewSimplex2D(r)
	}
	return &OctaveSimplex2D{layers: layers}
}

// Value samples the summed octaves at (x, y), halving frequency (and
// dividing the contribution by that same frequency) each octave.
func (o *OctaveSimplex2D) Value(x, y float64) float64 {
	total := 0.0
	freq := 1.0
	for _, layer := range o.layers {
		total += layer.Value(x*freq, y*freq) / freq
		freq /= 2.0
	}
	return total
}

// FillArray accumulates the summed octaves into out (xSize*ySize entries),
// each octave's amplitude scaled by 0.55/amp per the reference generator.
func (o *OctaveSimplex2D) FillArray(out []float64, xOff, yOff float64, xSize, ySize int, xScale, yScale, lacunarity, persistence float64) {
	for i := range out {
		out[i] = 0
	}
	amps := octaveAmplitudes(len(o.layers), persistence)
	freq := 1.0
	for i, layer := range o.layers {
		amp := amps[i]
		layer.FillArray(out, xOff, yOff, xSize, ySize, xScale*freq*amp, yScale*freq*amp, 0.55/amp)
		freq *= lacunarity
	}
}

// OctavePerlin3D sums its independent Perlin3D layers with halving
// amplitude, the 3D terrain-density noise used by gen.
type OctavePerlin3D struct {
	layers []*Perlin3D
}

// NewOctavePerlin3D builds octaves independently-seeded Perlin3D layers
// from r.
func NewOctavePerlin3D(r *rng.LCG, octaves int) *OctavePerlin3D {
	layers := make([]*Perlin3D, octaves)
	for i := range layers {
		layers[i] = NewPerlin3D(r)
	}
	return &OctavePerlin3D{layers: layers}
}

const coordWrap = 0x1000000

func floorLong(d float64) int64 {
	l := int64(d)
	if d < float64(l) {
		return l - 1
	}
	return l
}

// Generate3D fills (or allocates, if out is too small) a density volume of
// xSize*ySize*zSize samples at the given block-space offset and per-axis
// scale, wrapping accumulated coordinates at 16,777,216 to avoid the
// floating-point drift long-running worlds would otherwise accumulate.
func (o *OctavePerlin3D) Generate3D(out []float64, xOff, yOff, zOff, xSize, ySize, zSize int, xScale, yScale, zScale float64) []float64 {
	total := xSize * ySize * zSize
	if len(out) < total {
		out = make([]float64, total)
	} else {
		for i := range out[:total] {
			out[i] = 0
		}
	}

	for i, amp := range octaveAmplitudes(len(o.layers), 0.5) {
		layer := o.layers[i]
		dx := float64(xOff) * amp * xScale
		dy := float64(yOff) * amp * yScale
		dz := float64(zOff) * amp * zScale

		lx := floorLong(dx)
		lz := floorLong(dz)
		dx -= float64(lx % coordWrap)
		dz -= float64(lz % coordWrap)

		layer.PopulateArray(out, dx, dy, dz, xSize, ySize, zSize, xScale*amp, yScale*amp, zScale*amp, amp)
	}
	return out
}

// Generate2D is Generate3D fixed at yOff=10, ySize=1, the horizontal-only
// sampling path used for 2D fields such as the biome elevation surface.
func (o *OctavePerlin3D) Generate2D(out []float64, xOff, zOff, xSize, zSize int, xScale, zScale float64) []float64 {
	return o.Generate3D(out, xOff, 10, zOff, xSize, 1, zSize, xScale, 1.0, zScale)
}
