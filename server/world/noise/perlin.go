package noise

import "github.com/basaltcore/voxelserver/server/world/rng"

var gradX = [16]float64{1, -1, 1, -1, 1, -1, 1, -1, 0, 0, 0, 0, 1, 0, -1, 0}
var gradY = [16]float64{1, 1, -1, -1, 0, 0, 0, 0, 1, -1, 1, -1, 1, -1, 1, -1}
var gradZ = [16]float64{0, 0, 0, 0, 1, 1, -1, -1, 1, 1, -1, -1, 0, 1, 0, -1}

// Perlin3D is a single-octave 3D improved-Perlin noise field.
type Perlin3D struct {
	xCoord, yCoord, zCoord float64
	perm                   [512]int
}

// NewPerlin3D builds a Perlin3D generator, drawing its coordinate offsets
// and permutation table from r.
func NewPerlin3D(r *rng.LCG) *Perlin3D {
	p := &Perlin3D{
		xCoord: r.NextDouble() * 256,
		yCoord: r.NextDouble() * 256,
		zCoord: r.NextDouble() * 256,
	}
	for i := 0; i < 256; i++ {
		p.perm[i] = i
	}
	for i := 0; i < 256; i++ {
		j := int(r.NextInt(int32(256-i))) + i
		p.perm[i], p.perm[j] = p.perm[j], p.perm[i]
		p.perm[i+256] = p.perm[i]
	}
	return p
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6.0-15.0) + 10.0)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func (p *Perlin3D) grad3(hash int, x, y, z float64) float64 {
	h := hash & 0xF
	return gradX[h]*x + gradY[h]*y + gradZ[h]*z
}

func (p *Perlin3D) grad2(hash int, x, z float64) float64 {
	h := hash & 0xF
	return gradX[h]*x + gradZ[h]*z
}

// PopulateArray accumulates amplitude-scaled 3D noise samples into out,
// which must hold at least xSize*ySize*zSize entries. Takes the optimized
// 2D path (matching the reference generator) when ySize == 1.
func (p *Perlin3D) PopulateArray(out []float64, xOff, yOff, zOff float64, xSize, ySize, zSize int, xScale, yScale, zScale, amplitude float64) {
	invAmp := 1.0 / amplitude

	if ySize == 1 {
		idx := 0
		for xi := 0; xi < xSize; xi++ {
			dx := xOff + float64(xi)*xScale + p.xCoord
			X := int(dx)
			if dx < float64(X) {
				X--
			}
			x0 := X & 0xFF
			dx -= float64(X)
			u := fade(dx)

			for zi := 0; zi < zSize; zi++ {
				dz := zOff + float64(zi)*zScale + p.zCoord
				Z := int(dz)
				if dz < float64(Z) {
					Z--
				}
				z0 := Z & 0xFF
				dz -= float64(Z)
				w := fade(dz)

				a := p.perm[x0]
				aa := p.perm[a] + z0
				b := p.perm[x0+1]
				ba := p.perm[b] + z0

				l1 := lerp(u, p.grad2(p.perm[aa], dx, dz), p.grad3(p.perm[ba], dx-1.0, 0, dz))
				l2 := lerp(u, p.grad3(p.perm[aa+1], dx, 0, dz-1.0), p.grad3(p.perm[ba+1], dx-1.0, 0, dz-1.0))

				out[idx] += lerp(w, l1, l2) * invAmp
				idx++
			}
		}
		return
	}

	idx := 0
	prevY := -1
	var d17, d18, d19, d20 float64

	for xi := 0; xi < xSize; xi++ {
		dx := xOff + float64(xi)*xScale + p.xCoord
		X := int(dx)
		if dx < float64(X) {
			X--
		}
		x0 := X & 0xFF
		dx -= float64(X)
		u := fade(dx)

		for zi := 0; zi < zSize; zi++ {
			dz := zOff + float64(zi)*zScale + p.zCoord
			Z := int(dz)
			if dz < float64(Z) {
				Z--
			}
			z0 := Z & 0xFF
			dz -= float64(Z)
			w := fade(dz)

			for yi := 0; yi < ySize; yi++ {
				dy := yOff + float64(yi)*yScale + p.yCoord
				Y := int(dy)
				if dy < float64(Y) {
					Y--
				}
				y0 := Y & 0xFF
				dy -= float64(Y)
				v := fade(dy)

				if yi == 0 || y0 != prevY {
					prevY = y0
					a := p.perm[x0] + y0
					aa := p.perm[a] + z0
					ab := p.perm[a+1] + z0
					b := p.perm[x0+1] + y0
					ba := p.perm[b] + z0
					bb := p.perm[b+1] + z0

					d17 = lerp(u, p.grad3(p.perm[aa], dx, dy, dz), p.grad3(p.perm[ba], dx-1.0, dy, dz))
					d18 = lerp(u, p.grad3(p.perm[ab], dx, dy-1.0, dz), p.grad3(p.perm[bb], dx-1.0, dy-1.0, dz))
					d19 = lerp(u, p.grad3(p.perm[aa+1], dx, dy, dz-1.0), p.grad3(p.perm[ba+1], dx-1.0, dy, dz-1.0))
					d20 = lerp(u, p.grad3(p.perm[ab+1], dx, dy-1.0, dz-1.0), p.grad3(p.perm[bb+1], dx-1.0, dy-1.0, dz-1.0))
				}

				yz := lerp(v, d17, d18)
				yz1 := lerp(v, d19, d20)
				out[idx] += lerp(w, yz, yz1) * invAmp
				idx++
			}
		}
	}
}
