package region

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/basaltcore/voxelserver/server/world"
)

// Cache owns the set of open RegionFile handles for a dimension's save
// directory, keyed by region position (§4.2, §5). Cold opens are
// deduplicated with a singleflight group so concurrent first-touches of the
// same region don't race to create two handles; each RegionFile then
// serializes its own writes under its own mutex.
type Cache struct {
	dir string

	mu    sync.Mutex
	files map[world.RegionPos]*RegionFile

	open singleflight.Group
}

// NewCache opens a region cache rooted at dir (typically "<world>/region").
func NewCache(dir string) *Cache {
	return &Cache{dir: dir, files: make(map[world.RegionPos]*RegionFile)}
}

func (c *Cache) path(pos world.RegionPos) string {
	return filepath.Join(c.dir, fmt.Sprintf("r.%d.%d.mca", pos.X, pos.Z))
}

// fileFor returns the open RegionFile for pos, opening it from disk on first
// use.
func (c *Cache) fileFor(pos world.RegionPos) (*RegionFile, error) {
	c.mu.Lock()
	if f, ok := c.files[pos]; ok {
		c.mu.Unlock()
		return f, nil
	}
	c.mu.Unlock()

	v, err, _ := c.open.Do(fmt.Sprintf("%d,%d", pos.X, pos.Z), func() (any, error) {
		f, err := OpenFile(c.path(pos))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.files[pos] = f
		c.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RegionFile), nil
}

// LoadChunk reads and decodes the chunk at pos, or (nil, nil) if absent.
func (c *Cache) LoadChunk(pos world.ChunkPos) (*world.Chunk, error) {
	rp := pos.Region()
	f, err := c.fileFor(rp)
	if err != nil {
		return nil, err
	}
	lx, lz := pos.LocalChunk()
	if !f.Has(lx, lz) {
		return nil, nil
	}
	raw, err := f.Read(lx, lz)
	if err != nil {
		return nil, err
	}
	return DecodeChunk(raw)
}

// SaveChunk encodes and writes ch to its region file. Each RegionFile
// serializes writes internally via its own mutex, so concurrent SaveChunk
// calls targeting different regions proceed independently while calls
// targeting the same region file queue behind it (§5: single writer per
// region file).
func (c *Cache) SaveChunk(ch *world.Chunk, compression uint8, now time.Time) error {
	f, err := c.fileFor(ch.Pos.Region())
	if err != nil {
		return err
	}
	raw, err := EncodeChunk(ch)
	if err != nil {
		return err
	}
	lx, lz := ch.Pos.LocalChunk()
	return f.Write(lx, lz, raw, compression, now)
}

// LoadChunks loads a batch of chunk positions concurrently on an errgroup
// pool, returning results in input order. A missing chunk yields a nil entry
// rather than an error.
func (c *Cache) LoadChunks(positions []world.ChunkPos) ([]*world.Chunk, error) {
	out := make([]*world.Chunk, len(positions))
	var g errgroup.Group
	g.SetLimit(8)
	for i, pos := range positions {
		i, pos := i, pos
		g.Go(func() error {
			ch, err := c.LoadChunk(pos)
			if err != nil {
				return err
			}
			out[i] = ch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes every open region file.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, f := range c.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
