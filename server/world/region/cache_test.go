package region

import (
	"testing"
	"time"

	"github.com/basaltcore/voxelserver/server/world"
)

func TestCacheSaveThenLoad(t *testing.T) {
	c := NewCache(t.TempDir())
	defer c.Close()

	pos := world.ChunkPos{X: 40, Z: -3}
	ch := world.NewChunk(pos)
	ch.SetBlock(1, 64, 1, 7, 2)

	if err := c.SaveChunk(ch, 2, time.Unix(0, 0)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := c.LoadChunk(pos)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("load returned nil for a saved chunk")
	}
	if id, meta := got.Block(1, 64, 1); id != 7 || meta != 2 {
		t.Fatalf("Block(1,64,1) = (%d,%d), want (7,2)", id, meta)
	}
}

func TestCacheLoadMissingReturnsNil(t *testing.T) {
	c := NewCache(t.TempDir())
	defer c.Close()

	got, err := c.LoadChunk(world.ChunkPos{X: 0, Z: 0})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for a chunk never saved, got %+v", got)
	}
}

func TestCacheTwoChunksSameRegionShareFile(t *testing.T) {
	c := NewCache(t.TempDir())
	defer c.Close()

	a := world.ChunkPos{X: 0, Z: 0}
	b := world.ChunkPos{X: 1, Z: 0}
	if err := c.SaveChunk(world.NewChunk(a), 2, time.Unix(0, 0)); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := c.SaveChunk(world.NewChunk(b), 2, time.Unix(0, 0)); err != nil {
		t.Fatalf("save b: %v", err)
	}
	c.mu.Lock()
	n := len(c.files)
	c.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected one open region file for two chunks in the same region, got %d", n)
	}
}

func TestCacheLoadChunksBatch(t *testing.T) {
	c := NewCache(t.TempDir())
	defer c.Close()

	positions := []world.ChunkPos{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 2, Z: 0}}
	for i, p := range positions {
		ch := world.NewChunk(p)
		ch.SetBlock(0, 0, 0, uint16(i+1), 0)
		if err := c.SaveChunk(ch, 2, time.Unix(0, 0)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	got, err := c.LoadChunks(positions)
	if err != nil {
		t.Fatalf("load batch: %v", err)
	}
	for i, ch := range got {
		if ch == nil {
			t.Fatalf("chunk %d missing", i)
		}
		if id, _ := ch.Block(0, 0, 0); id != uint16(i+1) {
			t.Fatalf("chunk %d block id = %d, want %d", i, id, i+1)
		}
	}
}
