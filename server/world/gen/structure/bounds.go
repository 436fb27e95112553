// Package structure places villages, temples, mineshafts and strongholds
// during chunk generation, grounded on world/generator/pmgen's per-dimension
// generator shape and on the grid-lattice/ring placement rules of §4.9.
package structure

// BoundingBox is an inclusive axis-aligned box in block coordinates.
type BoundingBox struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// Box builds a bounding box from two corners, normalizing min/max per axis.
func Box(x1, y1, z1, x2, y2, z2 int) BoundingBox {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if z1 > z2 {
		z1, z2 = z2, z1
	}
	return BoundingBox{x1, y1, z1, x2, y2, z2}
}

// Intersects2D reports whether b overlaps the column range [x1, x2] x [z1, z2].
func (b BoundingBox) Intersects2D(x1, z1, x2, z2 int) bool {
	return b.MaxX >= x1 && b.MinX <= x2 && b.MaxZ >= z1 && b.MinZ <= z2
}

// Intersects reports whether b and o overlap in all three axes.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.MaxX >= o.MinX && b.MinX <= o.MaxX &&
		b.MaxZ >= o.MinZ && b.MinZ <= o.MaxZ &&
		b.MaxY >= o.MinY && b.MinY <= o.MaxY
}

// Contains reports whether the block (x, y, z) lies within b.
func (b BoundingBox) Contains(x, y, z int) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY && z >= b.MinZ && z <= b.MaxZ
}

// Expand grows b to also cover o.
func (b *BoundingBox) Expand(o BoundingBox) {
	if o.MinX < b.MinX {
		b.MinX = o.MinX
	}
	if o.MinY < b.MinY {
		b.MinY = o.MinY
	}
	if o.MinZ < b.MinZ {
		b.MinZ = o.MinZ
	}
	if o.MaxX > b.MaxX {
		b.MaxX = o.MaxX
	}
	if o.MaxY > b.MaxY {
		b.MaxY = o.MaxY
	}
	if o.MaxZ > b.MaxZ {
		b.MaxZ = o.MaxZ
	}
}

// Center returns the integer center of b.
func (b BoundingBox) Center() (x, y, z int) {
	return b.MinX + (b.MaxX-b.MinX+1)/2, b.MinY + (b.MaxY-b.MinY+1)/2, b.MinZ + (b.MaxZ-b.MinZ+1)/2
}

// Component is a single building piece within a structure, oriented along
// one of four facings.
type Component struct {
	Box    BoundingBox
	Facing int // 0=south, 1=west, 2=north, 3=east
	Kind   string
}

// Start is a structure anchored at a chunk, made up of one or more
// components; persisted per-dimension so decoration and "nearest structure"
// queries can find it again without recomputing placement.
type Start struct {
	Name   string
	ChunkX int32
	ChunkZ int32
	Box    BoundingBox
	Parts  []Component
}

// finalize recomputes Box from Parts; call after appending every component.
func (s *Start) finalize() {
	if len(s.Parts) == 0 {
		return
	}
	s.Box = s.Parts[0].Box
	for _, p := range s.Parts[1:] {
		s.Box.Expand(p.Box)
	}
}
