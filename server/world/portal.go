package world

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// PortalAxis is the horizontal orientation of a portal frame.
type PortalAxis int8

const (
	AxisX PortalAxis = iota
	AxisZ
)

const (
	portalSearchRadius  = 128
	portalCacheTTLTicks = 600
)

// PortalRegistry supplies the concrete block ids a portal frame is built
// from; the core only knows the frame's shape (§1: the block/item registry
// is out of scope).
type PortalRegistry interface {
	// IsFrameBlock reports whether (id, meta) is the frame material (e.g.
	// obsidian).
	IsFrameBlock(id uint16, meta uint8) bool
	// IsInteriorBlock reports whether (id, meta) may occupy a portal's
	// interior without disqualifying it (air-like, fire, or an active
	// portal block already oriented along axis).
	IsInteriorBlock(id uint16, meta uint8, axis PortalAxis) bool
	// PortalAxisOf reports the axis of an active portal block, if (id, meta)
	// is one.
	PortalAxisOf(id uint16, meta uint8) (PortalAxis, bool)
	// FrameBlock returns the (id, meta) used to build a frame.
	FrameBlock() (id uint16, meta uint8)
	// PortalBlock returns the (id, meta) used to fill a frame's interior for
	// the given axis.
	PortalBlock(axis PortalAxis) (id uint16, meta uint8)
}

const (
	portalMinWidth  = 2
	portalMaxWidth  = 21
	portalMinHeight = 3
	portalMaxHeight = 21
)

// PortalFrame describes the interior of an activated portal.
type PortalFrame struct {
	Axis          PortalAxis
	Width, Height int
	Corner        BlockPos
}

// Contains reports whether pos lies within the frame's interior.
func (f PortalFrame) Contains(pos BlockPos) bool {
	if f.Width == 0 || f.Height == 0 {
		return false
	}
	dx, dy, dz := pos.X()-f.Corner.X(), pos.Y()-f.Corner.Y(), pos.Z()-f.Corner.Z()
	if dy < 0 || dy >= f.Height {
		return false
	}
	switch f.Axis {
	case AxisX:
		return dx >= 0 && dx < f.Width
	case AxisZ:
		return dz >= 0 && dz < f.Width
	default:
		return false
	}
}

// Center returns the world-space centre of the frame's interior.
func (f PortalFrame) Center() mgl64.Vec3 {
	if f.Width == 0 || f.Height == 0 {
		return mgl64.Vec3{float64(f.Corner.X()) + 0.5, float64(f.Corner.Y()) + 0.5, float64(f.Corner.Z()) + 0.5}
	}
	max := f.offset(f.Width - 1)
	return mgl64.Vec3{
		float64(f.Corner.X()) + float64(max.X())/2 + 0.5,
		float64(f.Corner.Y()) + float64(f.Height-1)/2 + 0.5,
		float64(f.Corner.Z()) + float64(max.Z())/2 + 0.5,
	}
}

func (f PortalFrame) offset(n int) BlockPos { return axisOffset(f.Axis, n) }

func axisOffset(axis PortalAxis, n int) BlockPos {
	if axis == AxisX {
		return BlockPos{n, 0, 0}
	}
	return BlockPos{0, 0, n}
}

// PortalFrameAt resolves the portal frame containing pos, if pos holds an
// active portal block oriented along axis.
func PortalFrameAt(tx *Tx, reg PortalRegistry, pos BlockPos, axis PortalAxis) (PortalFrame, bool) {
	frame, ok := detectPortalFrame(tx, reg, pos, axis)
	if !ok || !frame.Contains(pos) {
		return PortalFrame{}, false
	}
	return frame, true
}

// portalCacheEntry is the per-chunk "nearest portal" memo described in §4.10.
type portalCacheEntry struct {
	pos       BlockPos
	validTick int64
}

// PortalCache memoizes FindNearestPortal results per chunk with a 600-tick
// TTL, as specified in §4.10.
type PortalCache struct {
	mu      sync.Mutex
	entries map[ChunkPos]portalCacheEntry
}

// NewPortalCache constructs an empty portal-lookup cache.
func NewPortalCache() *PortalCache {
	return &PortalCache{entries: make(map[ChunkPos]portalCacheEntry)}
}

// FindNearestPortal scans a 128-block XZ radius around centre for the
// nearest active portal block, consulting and refreshing the per-chunk TTL
// cache.
func (pc *PortalCache) FindNearestPortal(tx *Tx, reg PortalRegistry, centre BlockPos, tick int64) (PortalFrame, bool) {
	key := centre.Chunk()

	pc.mu.Lock()
	if e, ok := pc.entries[key]; ok && tick < e.validTick {
		pc.mu.Unlock()
		if id, meta := tx.Block(e.pos); id != 0 {
			if axis, isPortal := reg.PortalAxisOf(id, meta); isPortal {
				if frame, ok := detectPortalFrame(tx, reg, e.pos, axis); ok {
					return frame, true
				}
			}
		}
	} else {
		pc.mu.Unlock()
	}

	bestDist := math.MaxFloat64
	var best PortalFrame
	found := false

	for dx := -portalSearchRadius; dx <= portalSearchRadius; dx++ {
		for dz := -portalSearchRadius; dz <= portalSearchRadius; dz++ {
			for y := 0; y < MaxHeight; y++ {
				pos := BlockPos{centre.X() + dx, y, centre.Z() + dz}
				id, meta := tx.Block(pos)
				axis, ok := reg.PortalAxisOf(id, meta)
				if !ok {
					continue
				}
				frame, ok := detectPortalFrame(tx, reg, pos, axis)
				if !ok || !frame.Contains(pos) {
					continue
				}
				if d := distanceSq(centre, pos); d < bestDist {
					bestDist, best, found = d, frame, true
				}
			}
		}
	}
	if found {
		pc.mu.Lock()
		pc.entries[key] = portalCacheEntry{pos: best.Corner, validTick: tick + portalCacheTTLTicks}
		pc.mu.Unlock()
	}
	return best, found
}

// BuildPortal performs §4.10's two-pass clearing search centred on centre:
// first a width-3 clearing with a non-air floor (four attempts, alternating
// the X and Z axes), then a width-1 clearing along X and Z, and failing
// both, forces a platform at y in [70, MaxHeight-10]. Each clearing test
// covers only a one-block-thick slice portalMinHeight (3) blocks tall, not
// a 4x4 footprint.
func BuildPortal(tx *Tx, reg PortalRegistry, centre BlockPos) PortalFrame {
	if frame, ok := findClearing(tx, reg, centre, 3); ok {
		return frame
	}
	if frame, ok := findClearing(tx, reg, centre, 1); ok {
		return frame
	}
	return forcePlatform(tx, reg, centre)
}

func findClearing(tx *Tx, reg PortalRegistry, centre BlockPos, width int) (PortalFrame, bool) {
	axes := []PortalAxis{AxisX, AxisZ}
	if width == 3 {
		// Four rotations collapse to the same two axes for a symmetric
		// width-3 clearing; both orientations are tried regardless.
		axes = []PortalAxis{AxisX, AxisZ, AxisX, AxisZ}
	}
	for _, axis := range axes {
		base := centre.Add(BlockPos{0, 1, 0})
		corner := base.Add(axisOffset(axis, -(width / 2)))
		if clearingFree(tx, corner, axis, width) {
			frame := PortalFrame{Axis: axis, Width: width, Height: portalMinHeight, Corner: corner}
			buildFrame(tx, reg, frame)
			fillFrame(tx, reg, frame)
			return frame, true
		}
	}
	return PortalFrame{}, false
}

// clearingFree reports whether the width-wide, portalMinHeight-tall,
// one-block-thick slice starting at corner along axis is all air (id 0)
// with a non-air floor beneath it.
func clearingFree(tx *Tx, corner BlockPos, axis PortalAxis, width int) bool {
	for h := 0; h < portalMinHeight; h++ {
		for o := 0; o < width; o++ {
			pos := corner.Add(axisOffset(axis, o)).Add(BlockPos{0, h, 0})
			if id, _ := tx.Block(pos); id != 0 {
				return false
			}
		}
	}
	for o := 0; o < width; o++ {
		floor := corner.Add(axisOffset(axis, o)).Add(BlockPos{0, -1, 0})
		if id, _ := tx.Block(floor); id == 0 {
			return false
		}
	}
	return true
}

func forcePlatform(tx *Tx, reg PortalRegistry, centre BlockPos) PortalFrame {
	y := centre.Y()
	if y < 70 {
		y = 70
	}
	if max := MaxHeight - 10; y > max {
		y = max
	}
	frameID, frameMeta := reg.FrameBlock()
	for dx := -1; dx <= portalMinWidth; dx++ {
		for dz := -4; dz <= 0; dz++ {
			tx.SetBlock(BlockPos{centre.X() + dx, y - 1, centre.Z() + dz}, frameID, frameMeta)
		}
	}
	corner := BlockPos{centre.X(), y, centre.Z() - 1}
	frame := PortalFrame{Axis: AxisZ, Width: portalMinWidth, Height: portalMinHeight, Corner: corner}
	buildFrame(tx, reg, frame)
	fillFrame(tx, reg, frame)
	return frame
}

func detectPortalFrame(tx *Tx, reg PortalRegistry, origin BlockPos, axis PortalAxis) (PortalFrame, bool) {
	current := origin
	for current.Y() > 0 {
		below := current.Add(BlockPos{0, -1, 0})
		id, meta := tx.Block(below)
		if !reg.IsInteriorBlock(id, meta, axis) {
			break
		}
		current = below
	}
	belowID, belowMeta := tx.Block(current.Add(BlockPos{0, -1, 0}))
	if !reg.IsFrameBlock(belowID, belowMeta) {
		return PortalFrame{}, false
	}

	left := 0
	for left < portalMaxWidth {
		cand := current.Add(axisOffset(axis, -(left + 1)))
		id, meta := tx.Block(cand)
		if reg.IsFrameBlock(id, meta) {
			break
		}
		if !reg.IsInteriorBlock(id, meta, axis) {
			return PortalFrame{}, false
		}
		left++
	}
	if left >= portalMaxWidth {
		return PortalFrame{}, false
	}
	right := 0
	for right < portalMaxWidth {
		cand := current.Add(axisOffset(axis, right+1))
		id, meta := tx.Block(cand)
		if reg.IsFrameBlock(id, meta) {
			break
		}
		if !reg.IsInteriorBlock(id, meta, axis) {
			return PortalFrame{}, false
		}
		right++
	}
	width := left + right + 1
	if width < portalMinWidth || width > portalMaxWidth {
		return PortalFrame{}, false
	}
	corner := current.Add(axisOffset(axis, -left))

	height := 0
	for height < portalMaxHeight {
		row := corner.Add(BlockPos{0, height, 0})
		valid := true
		for o := 0; o < width; o++ {
			id, meta := tx.Block(row.Add(axisOffset(axis, o)))
			if !reg.IsInteriorBlock(id, meta, axis) {
				valid = false
				break
			}
		}
		if !valid {
			break
		}
		height++
	}
	if height < portalMinHeight || height > portalMaxHeight {
		return PortalFrame{}, false
	}

	for y := 0; y < height; y++ {
		leftPos := corner.Add(axisOffset(axis, -1)).Add(BlockPos{0, y, 0})
		rightPos := corner.Add(axisOffset(axis, width)).Add(BlockPos{0, y, 0})
		lid, lmeta := tx.Block(leftPos)
		rid, rmeta := tx.Block(rightPos)
		if !reg.IsFrameBlock(lid, lmeta) || !reg.IsFrameBlock(rid, rmeta) {
			return PortalFrame{}, false
		}
	}
	for o := -1; o <= width; o++ {
		bottom := corner.Add(axisOffset(axis, o)).Add(BlockPos{0, -1, 0})
		top := corner.Add(axisOffset(axis, o)).Add(BlockPos{0, height, 0})
		bid, bmeta := tx.Block(bottom)
		tid, tmeta := tx.Block(top)
		if !reg.IsFrameBlock(bid, bmeta) || !reg.IsFrameBlock(tid, tmeta) {
			return PortalFrame{}, false
		}
	}
	return PortalFrame{Axis: axis, Width: width, Height: height, Corner: corner}, true
}

func buildFrame(tx *Tx, reg PortalRegistry, f PortalFrame) {
	id, meta := reg.FrameBlock()
	for o := -1; o <= f.Width; o++ {
		bottom := f.Corner.Add(axisOffset(f.Axis, o)).Add(BlockPos{0, -1, 0})
		top := f.Corner.Add(axisOffset(f.Axis, o)).Add(BlockPos{0, f.Height, 0})
		tx.SetBlock(bottom, id, meta)
		tx.SetBlock(top, id, meta)
	}
	for y := 0; y < f.Height; y++ {
		left := f.Corner.Add(axisOffset(f.Axis, -1)).Add(BlockPos{0, y, 0})
		right := f.Corner.Add(axisOffset(f.Axis, f.Width)).Add(BlockPos{0, y, 0})
		tx.SetBlock(left, id, meta)
		tx.SetBlock(right, id, meta)
	}
}

func fillFrame(tx *Tx, reg PortalRegistry, f PortalFrame) {
	id, meta := reg.PortalBlock(f.Axis)
	for y := 0; y < f.Height; y++ {
		for o := 0; o < f.Width; o++ {
			pos := f.Corner.Add(axisOffset(f.Axis, o)).Add(BlockPos{0, y, 0})
			tx.SetBlock(pos, id, meta)
		}
	}
}

func distanceSq(a, b BlockPos) float64 {
	dx := float64(a.X() - b.X())
	dy := float64(a.Y() - b.Y())
	dz := float64(a.Z() - b.Z())
	return dx*dx + dy*dy + dz*dz
}
