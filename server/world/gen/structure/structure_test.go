package structure

import (
	"math"
	"testing"

	"github.com/basaltcore/voxelserver/server/world"
)

func TestGridAnchorIsOnePerCell(t *testing.T) {
	const spacing, separation int32 = 32, 8
	seen := map[[2]int32]int{}
	for cx := int32(-128); cx < 128; cx++ {
		for cz := int32(-128); cz < 128; cz++ {
			if onGrid(cx, cz, spacing, separation, 10387312) {
				gx, gz := cx, cz
				if gx < 0 {
					gx = gx - spacing + 1
				}
				if gz < 0 {
					gz = gz - spacing + 1
				}
				seen[[2]int32{gx / spacing, gz / spacing}]++
			}
		}
	}
	for cell, count := range seen {
		if count != 1 {
			t.Fatalf("grid cell %v hosted %d anchors, want exactly 1", cell, count)
		}
	}
	if len(seen) == 0 {
		t.Fatalf("expected at least one grid cell to host an anchor")
	}
}

func TestVillageAndScatteredUseIndependentGrids(t *testing.T) {
	village, temple := Village{}, ScatteredFeature{}
	sameCount := 0
	for cx := int32(-64); cx < 64; cx++ {
		for cz := int32(-64); cz < 64; cz++ {
			v := village.CanSpawn(cx, cz, nil)
			s := temple.CanSpawn(cx, cz, nil)
			if v && s {
				sameCount++
			}
		}
	}
	if sameCount == 128*128 {
		t.Fatalf("village and scattered-feature grids should not always coincide")
	}
}

func TestMineshaftRoughlyOnePercent(t *testing.T) {
	m := Mineshaft{}
	hits := 0
	const trials = 20000
	for cx := int32(0); cx < trials; cx++ {
		r := chunkRNG(1234, cx, 0)
		if m.CanSpawn(cx, 0, r) {
			hits++
		}
	}
	rate := float64(hits) / float64(trials)
	if rate < 0.005 || rate > 0.02 {
		t.Fatalf("mineshaft spawn rate %v far from expected ~1%%", rate)
	}
}

func TestStrongholdRingDistanceAndSpacing(t *testing.T) {
	s := NewStronghold(42)
	for _, a := range s.anchors {
		blockX, blockZ := float64(a[0])*16, float64(a[1])*16
		dist := math.Hypot(blockX, blockZ)
		if dist < 1408-32 || dist > 2688+32 {
			t.Fatalf("stronghold at %v is %v blocks from origin, want [1408, 2688]", a, dist)
		}
	}
	// Angles should be ~120 degrees apart.
	angle := func(a [2]int32) float64 {
		return math.Atan2(float64(a[1]), float64(a[0])) * 180 / math.Pi
	}
	diff := angle(s.anchors[1]) - angle(s.anchors[0])
	for diff < 0 {
		diff += 360
	}
	if math.Abs(diff-120) > 1 {
		t.Fatalf("stronghold angular spacing = %v, want ~120", diff)
	}
}

func TestStrongholdDeterministic(t *testing.T) {
	a := NewStronghold(7)
	b := NewStronghold(7)
	if a.anchors != b.anchors {
		t.Fatalf("same seed produced different stronghold rings: %v vs %v", a.anchors, b.anchors)
	}
}

func TestRegistryGenerateIsIdempotent(t *testing.T) {
	reg := NewRegistry(99)
	pos := world.ChunkPos{X: 0, Z: 0}
	reg.Generate(pos)
	first := reg.AtChunk(pos)
	reg.Generate(pos)
	second := reg.AtChunk(pos)
	if len(first) != len(second) {
		t.Fatalf("re-running Generate changed the chunk's structures: %d vs %d", len(first), len(second))
	}
}

func TestRegistryFindsVillageEventually(t *testing.T) {
	reg := NewRegistry(55)
	found := false
	for cx := int32(0); cx < 4 && !found; cx++ {
		for cz := int32(0); cz < 4 && !found; cz++ {
			reg.Generate(world.ChunkPos{X: cx * 16, Z: cz * 16})
			for _, s := range reg.found["Village"] {
				_ = s
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected at least one village to be placed scanning a wide area")
	}
}

func TestContainsBlockMatchesPlacedComponent(t *testing.T) {
	reg := NewRegistry(3)
	pos := world.ChunkPos{X: 0, Z: 0}
	reg.Generate(pos)
	for _, s := range reg.AtChunk(pos) {
		cx, cy, cz := s.Parts[0].Box.Center()
		if !reg.ContainsBlock(cx, cy, cz) {
			t.Fatalf("expected structure center to be contained in its own bounding box")
		}
	}
}

func TestNearestReturnsClosest(t *testing.T) {
	reg := NewRegistry(11)
	// The ring lies 1408-2688 blocks out, so scan around each anchor.
	anchors := NewStronghold(11).anchors
	for _, a := range anchors {
		reg.Generate(world.ChunkPos{X: a[0], Z: a[1]})
	}
	near := anchors[0]
	s, ok := reg.Nearest("Stronghold", int(near[0])*16, 64, int(near[1])*16)
	if !ok {
		t.Fatalf("expected a stronghold to be found within the scanned range")
	}
	if s.ChunkX != near[0] || s.ChunkZ != near[1] {
		t.Fatalf("Nearest returned the stronghold at chunk (%d,%d), want (%d,%d)", s.ChunkX, s.ChunkZ, near[0], near[1])
	}
}
