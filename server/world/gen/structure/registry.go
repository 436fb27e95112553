package structure

import (
	"math"
	"sync"

	"github.com/basaltcore/voxelserver/server/world"
)

// scanRange is how many chunks (each direction) around a target chunk get
// scanned for structure placement, matching the reference MapGenBase.
const scanRange = 8

// Registry tracks every structure placed so far in one dimension, keyed by
// placer name and anchor chunk, behind a single mutex: structure placement
// runs from chunk-generation worker goroutines, so concurrent Generate calls
// must not race on the underlying maps (grounded on the teacher's
// mutex-guarded plugin.Manager registry).
type Registry struct {
	worldSeed int64
	placers   []Placer

	mu    sync.Mutex
	found map[string]map[world.ChunkPos]Start
}

// NewRegistry builds a Registry for worldSeed with the standard placer set:
// villages, scattered features, mineshafts, and the world's three
// strongholds.
func NewRegistry(worldSeed int64) *Registry {
	return &Registry{
		worldSeed: worldSeed,
		placers:   []Placer{Village{}, ScatteredFeature{}, Mineshaft{}, NewStronghold(worldSeed)},
		found:     make(map[string]map[world.ChunkPos]Start),
	}
}

// Generate scans the scanRange-chunk neighbourhood of pos for each
// registered placer and records any structure anchored there. It is
// idempotent: chunks already resolved for a placer are never recomputed.
func (reg *Registry) Generate(pos world.ChunkPos) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, p := range reg.placers {
		bucket := reg.found[p.Name()]
		if bucket == nil {
			bucket = make(map[world.ChunkPos]Start)
			reg.found[p.Name()] = bucket
		}

		for dx := -int32(scanRange); dx <= scanRange; dx++ {
			for dz := -int32(scanRange); dz <= scanRange; dz++ {
				cx, cz := pos.X+dx, pos.Z+dz
				key := world.ChunkPos{X: cx, Z: cz}
				if _, ok := bucket[key]; ok {
					continue
				}
				r := chunkRNG(reg.worldSeed, cx, cz)
				r.NextInt(1)
				if p.CanSpawn(cx, cz, r) {
					bucket[key] = p.Start(cx, cz, r)
				}
			}
		}
	}
}

// AtChunk returns every structure start anchored exactly at pos, across all
// placer kinds.
func (reg *Registry) AtChunk(pos world.ChunkPos) []Start {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var out []Start
	for _, bucket := range reg.found {
		if s, ok := bucket[pos]; ok {
			out = append(out, s)
		}
	}
	return out
}

// IntersectingChunk returns every structure whose bounding box overlaps the
// 16x16 column range of the chunk at pos, including structures anchored in
// neighbouring chunks whose bounding box spills into it; Generator.Structures
// reports its result.
func (reg *Registry) IntersectingChunk(pos world.ChunkPos) []Start {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	baseX, baseZ := int(pos.X)*16, int(pos.Z)*16
	var out []Start
	for _, bucket := range reg.found {
		for _, s := range bucket {
			if s.Box.Intersects2D(baseX, baseZ, baseX+15, baseZ+15) {
				out = append(out, s)
			}
		}
	}
	return out
}

// ContainsBlock reports whether (x, y, z) lies inside any placed structure
// component.
func (reg *Registry) ContainsBlock(x, y, z int) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, bucket := range reg.found {
		for _, s := range bucket {
			if !s.Box.Contains(x, y, z) {
				continue
			}
			for _, part := range s.Parts {
				if part.Box.Contains(x, y, z) {
					return true
				}
			}
		}
	}
	return false
}

// Nearest returns the placed structure of the given kind closest to
// (x, y, z), and whether one has been found yet.
func (reg *Registry) Nearest(name string, x, y, z int) (Start, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	bucket := reg.found[name]
	best := Start{}
	bestDist := math.MaxFloat64
	ok := false
	for _, s := range bucket {
		if len(s.Parts) == 0 {
			continue
		}
		cx, cy, cz := s.Parts[0].Box.Center()
		dx, dy, dz := float64(cx-x), float64(cy-y), float64(cz-z)
		dist := dx*dx + dy*dy + dz*dz
		if !ok || dist < bestDist {
			best, bestDist, ok = s, dist, true
		}
	}
	return best, ok
}
