package region

import (
	"testing"

	"github.com/basaltcore/voxelserver/server/world"
)

func TestChunkNBTRoundTrip(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{X: 3, Z: -2})
	c.IsPopulated = true
	c.LastUpdate = 42
	c.SetBlock(1, 70, 2, 0x123, 7)
	c.SetBlock(0, 0, 0, 1, 0)
	c.SetBiome(1, 2, 4)

	raw, err := EncodeChunk(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeChunk(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Pos != c.Pos {
		t.Fatalf("Pos = %+v, want %+v", got.Pos, c.Pos)
	}
	if got.LastUpdate != 42 || !got.IsPopulated {
		t.Fatalf("LastUpdate/IsPopulated mismatch: %+v", got)
	}
	if id, meta := got.Block(1, 70, 2); id != 0x123 || meta != 7 {
		t.Fatalf("Block(1,70,2) = (%#x, %d), want (0x123, 7)", id, meta)
	}
	if id, _ := got.Block(0, 0, 0); id != 1 {
		t.Fatalf("Block(0,0,0) id = %#x, want 1", id)
	}
	if b := got.Biome(1, 2); b != 4 {
		t.Fatalf("Biome(1,2) = %d, want 4", b)
	}
}

// TestChunkNBTSkipsEmptySections confirms nil (all-air) sections are omitted
// from the encoded Sections list rather than round-tripped as zeroed data,
// matching how the reference format avoids persisting empty sections.
func TestChunkNBTSkipsEmptySections(t *testing.T) {
	c := world.NewChunk(world.ChunkPos{X: 0, Z: 0})
	c.SetBlock(0, 200, 0, 5, 0)

	raw, err := EncodeChunk(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeChunk(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id, _ := got.Block(0, 200, 0); id != 5 {
		t.Fatalf("Block(0,200,0) id = %d, want 5", id)
	}
	if id, _ := got.Block(5, 5, 5); id != 0 {
		t.Fatalf("Block(5,5,5) id = %d, want 0 (air)", id)
	}
	if got.Sections[0] != nil {
		t.Fatalf("section 0 was never written but came back from the encoding")
	}
}
