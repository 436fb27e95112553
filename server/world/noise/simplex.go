// Package noise implements the 2D simplex and 3D improved-Perlin noise
// generators used to build the terrain density field (§4.9), plus their
// multi-octave wrappers. Permutation tables are seeded with the project's
// Java-compatible rng.LCG so that two runs of the same world seed produce
// bit-identical terrain.
package noise

import "github.com/basaltcore/voxelserver/server/world/rng"

const (
	sqrt3 = 1.7320508075688772
	f2    = 0.5 * (sqrt3 - 1.0)
	g2    = (3.0 - sqrt3) / 6.0
)

// grad3 holds the 12 gradient vectors simplex noise projects onto; only the
// x/y components are used since Simplex2D operates in two dimensions.
var grad3 = [12][3]int{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// Simplex2D is a single-octave 2D simplex noise field.
type Simplex2D struct {
	xOffset, yOffset, zOffset float64
	perm                      [512]int
}

// NewSimplex2D builds a Simplex2D generator, drawing its coordinate offsets
// and permutation table from r the same way the reference generator draws
// from its seeded RNG.
func NewSimplex2D(r *rng.LCG) *Simplex2D {
	s := &Simplex2D{
		xOffset: r.NextDouble() * 256,
		yOffset: r.NextDouble() * 256,
		zOffset: r.NextDouble() * 256,
	}
	for i := 0; i < 256; i++ {
		s.perm[i] = i
	}
	for i := 0; i < 256; i++ {
		j := int(r.NextInt(int32(256-i))) + i
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
		s.perm[i+256] = s.perm[i]
	}
	return s
}

func fastFloor(d float64) int {
	if d > 0 {
		return int(d)
	}
	return int(d) - 1
}

func dot2(g [3]int, x, y float64) float64 {
	return float64(g[0])*x + float64(g[1])*y
}

// Value evaluates the noise field at (x, y).
func (s *Simplex2D) Value(x, y float64) float64 {
	sum := (x + y) * f2
	i := fastFloor(x + sum)
	j := fastFloor(y + sum)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	var i1, j1 int
	if x0 > y0 {
		i1, j1 = 1, 0
	} else {
		i1, j1 = 0, 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := i & 0xFF
	jj := j & 0xFF
	gi0 := s.perm[ii+s.perm[jj]] % 12
	gi1 := s.perm[ii+i1+s.perm[jj+j1]] % 12
	gi2 := s.perm[ii+1+s.perm[jj+1]] % 12

	n0 := cornerContribution(grad3[gi0], x0, y0)
	n1 := cornerContribution(grad3[gi1], x1, y1)
	n2 := cornerContribution(grad3[gi2], x2, y2)

	return 70.0 * (n0 + n1 + n2)
}

func cornerContribution(g [3]int, x, y float64) float64 {
	t := 0.5 - x*x - y*y
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * dot2(g, x, y)
}

// FillArray accumulates amplitude-scaled noise samples into out, which must
// hold at least xSize*ySize entries. Matches the reference array-fill loop
// so multi-octave summation (OctaveSimplex2D) produces identical terrain.
func (s *Simplex2D) FillArray(out []float64, xOff, yOff float64, xSize, ySize int, xScale, yScale, amplitude float64) {
	idx := 0
	for j := 0; j < ySize; j++ {
		yPos := (yOff+float64(j))*yScale + s.yOffset
		for i := 0; i < xSize; i++ {
			xPos := (xOff+float64(i))*xScale + s.xOffset
			out[idx] += s.Value(xPos, yPos) * amplitude
			idx++
		}
	}
}
