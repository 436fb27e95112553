package gen

import (
	"testing"

	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/gen/populate"
)

func testIDs() BlockIDs {
	return BlockIDs{
		Bedrock: 1,
		Stone:   2,
		Water:   3,
		BlockIDs: populate.BlockIDs{
			Air:       0,
			Dirt:      4,
			Grass:     5,
			TallGrass: 6,
			Sand:      7,
			Gravel:    8,
			OakLog:    9, OakLeaves: 10,
			SpruceLog: 11, SpruceLeaves: 12,
			BirchLog: 13, BirchLeaves: 14,
			CoalOre: 15, IronOre: 16, GoldOre: 17, DiamondOre: 18, LapisOre: 19,
		},
	}
}

func TestGenerateBedrockFloorAndBounds(t *testing.T) {
	g := New(42, testIDs())
	c := g.Generate(world.ChunkPos{X: 0, Z: 0})

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			id, _ := c.Block(x, 0, z)
			if id != testIDs().Bedrock {
				t.Fatalf("expected bedrock at y=0 (%d,%d), got %d", x, z, id)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	ids := testIDs()
	a := New(7, ids).Generate(world.ChunkPos{X: 3, Z: -2})
	b := New(7, ids).Generate(world.ChunkPos{X: 3, Z: -2})

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			if a.Biome(x, z) != b.Biome(x, z) {
				t.Fatalf("biome mismatch at (%d,%d)", x, z)
			}
			for y := 0; y < world.MaxHeight; y++ {
				ia, _ := a.Block(x, y, z)
				ib, _ := b.Block(x, y, z)
				if ia != ib {
					t.Fatalf("block mismatch at (%d,%d,%d): %d vs %d", x, y, z, ia, ib)
				}
			}
		}
	}
}

func TestGenerateProducesSomeStoneAndAir(t *testing.T) {
	ids := testIDs()
	c := New(1, ids).Generate(world.ChunkPos{X: 0, Z: 0})

	var stoneCount, airCount int
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			for y := 1; y < world.MaxHeight; y++ {
				id, _ := c.Block(x, y, z)
				switch id {
				case ids.Stone:
					stoneCount++
				case ids.BlockIDs.Air:
					airCount++
				}
			}
		}
	}
	if stoneCount == 0 {
		t.Fatalf("expected some carved stone")
	}
	if airCount == 0 {
		t.Fatalf("expected some open air above the terrain")
	}
}

func TestPopulateWaitsForNeighbours(t *testing.T) {
	ids := testIDs()
	g := New(5, ids)
	w := world.New(world.Config{Seed: 5})

	pos := world.ChunkPos{X: 0, Z: 0}
	w.LoadChunk(g.Generate(pos))

	if g.Populate(w, pos) {
		t.Fatalf("expected Populate to defer until neighbours are loaded")
	}

	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			p := world.ChunkPos{X: pos.X + dx, Z: pos.Z + dz}
			if p == pos {
				continue
			}
			w.LoadChunk(g.Generate(p))
		}
	}

	if !g.Populate(w, pos) {
		t.Fatalf("expected Populate to run once neighbours are loaded")
	}
}

func TestGenerateRecordsStructuresDeterministically(t *testing.T) {
	ids := testIDs()
	a := New(123, ids)
	b := New(123, ids)

	var totalA, totalB int
	for cx := int32(-2); cx <= 2; cx++ {
		for cz := int32(-2); cz <= 2; cz++ {
			pos := world.ChunkPos{X: cx, Z: cz}
			a.Generate(pos)
			b.Generate(pos)
			totalA += len(a.Structures(pos))
			totalB += len(b.Structures(pos))
		}
	}
	if totalA != totalB {
		t.Fatalf("same seed produced different structure counts: %d vs %d", totalA, totalB)
	}
}

func TestGroundCoverReplacesSurfaceStone(t *testing.T) {
	ids := testIDs()
	c := New(99, ids).Generate(world.ChunkPos{X: 0, Z: 0})

	found := false
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			top := c.Height(x, z) - 1
			if top < 0 {
				continue
			}
			id, _ := c.Block(x, top, z)
			if id == ids.Grass || id == ids.Sand || id == ids.Gravel || id == ids.Dirt {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected at least one column to have a ground-cover surface block")
	}
}
