// Package region implements chunk persistence as compressed NBT within a
// 32x32 region grid, one file per region, matching §4.2 and §6.
package region

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/zlib"
)

const (
	sectorSize       = 4096
	headerSectors    = 2
	gridSize         = 32
	maxSectorsPerRun = 255

	compressionGZip = 1
	compressionZlib = 2
)

// backing is the minimal random-access file surface RegionFile needs; *os.File
// satisfies it, and tests use an in-memory implementation (membuf) so the
// region-file logic can be exercised without touching disk.
type backing interface {
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
	Sync() error
	Size() (int64, error)
}

// offsetEntry packs a sector index and sector count, matching §4.2's
// "(sector_index << 8) | sector_count" encoding.
type offsetEntry uint32

func newOffsetEntry(sector, count int) offsetEntry {
	return offsetEntry(sector<<8 | (count & 0xFF))
}

func (o offsetEntry) sector() int   { return int(o >> 8) }
func (o offsetEntry) count() int    { return int(o & 0xFF) }
func (o offsetEntry) present() bool { return o != 0 }

// RegionFile is a fixed 32x32 chunk grid persisted as one file: two header
// sectors (offsets, timestamps) followed by 4096-byte payload sectors (§4.2).
type RegionFile struct {
	mu sync.Mutex

	f       backing
	offsets [gridSize * gridSize]offsetEntry
	times   [gridSize * gridSize]uint32

	// free is the sector-allocation bitmap rebuilt on open by scanning the
	// offset table; sectors 0 and 1 are never free (§3 invariant).
	free map[int]bool
	// sectorCount is the total number of 4096-byte sectors currently backing
	// the file, including the two header sectors.
	sectorCount int
}

// Open reads (or, for a zero-length file, initializes) a region file backed
// by f.
func Open(f backing) (*RegionFile, error) {
	size, err := f.Size()
	if err != nil {
		return nil, err
	}
	r := &RegionFile{f: f, free: make(map[int]bool)}
	if size == 0 {
		r.sectorCount = headerSectors
		if err := r.f.Truncate(int64(headerSectors) * sectorSize); err != nil {
			return nil, err
		}
		return r, nil
	}
	if size%sectorSize != 0 {
		return nil, fmt.Errorf("region: file size %d is not a multiple of %d", size, sectorSize)
	}
	r.sectorCount = int(size / sectorSize)

	header := make([]byte, sectorSize*headerSectors)
	if _, err := f.ReadAt(header, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for i := 0; i < gridSize*gridSize; i++ {
		r.offsets[i] = offsetEntry(beUint32(header[i*4:]))
		r.times[i] = beUint32(header[sectorSize+i*4:])
	}
	r.rebuildFreeBitmap()
	return r, nil
}

// rebuildFreeBitmap marks every sector free except the header sectors and
// every sector currently assigned to a chunk (§4.2 invariant).
func (r *RegionFile) rebuildFreeBitmap() {
	r.free = make(map[int]bool, r.sectorCount)
	for s := headerSectors; s < r.sectorCount; s++ {
		r.free[s] = true
	}
	for _, o := range r.offsets {
		if !o.present() {
			continue
		}
		for s := o.sector(); s < o.sector()+o.count(); s++ {
			delete(r.free, s)
		}
	}
}

// FreeSectorCount returns the number of sectors currently marked free,
// used by §8's "free + assigned == file size / 4096" invariant check.
func (r *RegionFile) FreeSectorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.free)
}

// SectorCount returns the total sector count backing the file.
func (r *RegionFile) SectorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sectorCount
}

// Close releases the underlying file handle, if the backing supports it.
func (r *RegionFile) Close() error {
	if c, ok := r.f.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func localIndex(lx, lz int) int { return lz*gridSize + lx }

// Has reports whether a chunk payload is present at the given local (0-31)
// coordinates.
func (r *RegionFile) Has(lx, lz int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offsets[localIndex(lx, lz)].present()
}

// errTooLarge is returned when a chunk's compressed payload would need more
// than 255 sectors (§4.2, §7 resource-exhaustion fault).
var errTooLarge = errors.New("region: chunk payload exceeds 255 sectors")

// Write compresses and stores raw (uncompressed NBT) at local coordinates
// (lx, lz), using the given compression tag (1 = gzip, 2 = zlib). It commits
// the offset and timestamp entries and flushes before returning (§4.2).
func (r *RegionFile) Write(lx, lz int, raw []byte, compression uint8, now time.Time) error {
	payload, err := compress(raw, compression)
	if err != nil {
		return err
	}
	// 4-byte length + 1-byte compression tag, then payload.
	needed := ceilDiv(len(payload)+5, sectorSize)
	if needed > maxSectorsPerRun {
		return errTooLarge
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := localIndex(lx, lz)
	old := r.offsets[idx]

	var sector int
	if old.present() && old.count() >= needed {
		sector = old.sector()
		// Any sectors beyond what's needed become free again.
		for s := old.sector() + needed; s < old.sector()+old.count(); s++ {
			r.free[s] = true
		}
	} else {
		if old.present() {
			for s := old.sector(); s < old.sector()+old.count(); s++ {
				r.free[s] = true
			}
		}
		sector = r.findRun(needed)
	}

	buf := make([]byte, needed*sectorSize)
	putBeUint32(buf, uint32(len(payload)+1))
	buf[4] = compression
	copy(buf[5:], payload)

	if _, err := r.f.WriteAt(buf, int64(sector)*sectorSize); err != nil {
		return err
	}
	for s := sector; s < sector+needed; s++ {
		delete(r.free, s)
	}

	r.offsets[idx] = newOffsetEntry(sector, needed)
	r.times[idx] = uint32(now.Unix())
	if err := r.flushHeaderEntry(idx); err != nil {
		return err
	}
	return r.f.Sync()
}

// findRun locates a contiguous run of `needed` free sectors, or appends at
// end-of-file if none fits (§4.2 write path).
func (r *RegionFile) findRun(needed int) int {
	start, run := -1, 0
	for s := headerSectors; s < r.sectorCount; s++ {
		if r.free[s] {
			if start == -1 {
				start = s
			}
			run++
			if run == needed {
				return start
			}
		} else {
			start, run = -1, 0
		}
	}
	// Append at end-of-file.
	appendAt := r.sectorCount
	r.sectorCount += needed
	return appendAt
}

func (r *RegionFile) flushHeaderEntry(idx int) error {
	var offBuf, timeBuf [4]byte
	putBeUint32(offBuf[:], uint32(r.offsets[idx]))
	putBeUint32(timeBuf[:], r.times[idx])
	if _, err := r.f.WriteAt(offBuf[:], int64(idx*4)); err != nil {
		return err
	}
	if _, err := r.f.WriteAt(timeBuf[:], int64(sectorSize+idx*4)); err != nil {
		return err
	}
	return nil
}

// Read loads and decompresses the chunk payload at local coordinates.
func (r *RegionFile) Read(lx, lz int) ([]byte, error) {
	r.mu.Lock()
	o := r.offsets[localIndex(lx, lz)]
	r.mu.Unlock()
	if !o.present() {
		return nil, errors.New("region: chunk absent")
	}
	header := make([]byte, 5)
	if _, err := r.f.ReadAt(header, int64(o.sector())*sectorSize); err != nil {
		return nil, err
	}
	length := beUint32(header[:4])
	tag := header[4]
	payload := make([]byte, length-1)
	if _, err := r.f.ReadAt(payload, int64(o.sector())*sectorSize+5); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return decompress(payload, tag)
}

func compress(raw []byte, tag uint8) ([]byte, error) {
	var buf bytes.Buffer
	switch tag {
	case compressionGZip:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case compressionZlib:
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("region: unknown compression tag %d", tag)
	}
	return buf.Bytes(), nil
}

func decompress(payload []byte, tag uint8) ([]byte, error) {
	switch tag {
	case compressionGZip:
		r, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case compressionZlib:
		r, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("region: unknown compression tag %d", tag)
	}
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putBeUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
