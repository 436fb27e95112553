// Package pathfinding implements the A* node graph, binary-heap open set,
// and search of §4.6. Nodes are block cells addressed by a packed hash, kept
// in a flat arena so the search never allocates per node after warm-up.
package pathfinding

// PathPoint is a single node in the A* graph: a block cell plus the
// bookkeeping A* needs (cost-so-far, heuristic, heap slot, predecessor).
type PathPoint struct {
	X, Y, Z int32

	heapIndex int32 // slot in the open-set heap; -1 = not present
	prev      int32 // arena index of the predecessor; -1 = none

	g, h, f  float64
	visited  bool
	assigned bool
}

// Hash packs a coordinate triple into a single int32 key, following the
// reference makeHash layout: y in the low byte, the low 15 bits of x at
// bit 10, the low 15 bits of z at bit 25, with explicit sign bits for x and
// y and none for z. Shifting z by 25 into an int32 keeps only its low 7
// bits, so z values that differ by a multiple of 128 collide. When the
// arena meets such a collision it compares coordinates, creates a fresh
// node for the new cell and points the hash at it; the earlier node stays
// in the arena but is no longer found through the hash.
func Hash(x, y, z int32) int32 {
	h := (y & 0xFF) | ((x & 0x7FFF) << 10) | ((z & 0x7FFF) << 25)
	if y < 0 {
		h |= 0x200
	}
	if x < 0 {
		h |= 1 << 24
	}
	return h
}

func (p *PathPoint) distanceToSquared(o *PathPoint) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	dz := float64(p.Z - o.Z)
	return dx*dx + dy*dy + dz*dz
}

func (p *PathPoint) equalsCoords(x, y, z int32) bool {
	return p.X == x && p.Y == y && p.Z == z
}

// Path is the ordered sequence of waypoints returned by a search, together
// with the follower's current position in it.
type Path struct {
	Points  []PathPoint
	Current int
}

// Finished reports whether every waypoint has been consumed.
func (p *Path) Finished() bool { return p.Current >= len(p.Points) }

// Len returns the number of waypoints.
func (p *Path) Len() int { return len(p.Points) }

// At returns the waypoint at idx, or false if idx is out of range.
func (p *Path) At(idx int) (PathPoint, bool) {
	if idx < 0 || idx >= len(p.Points) {
		return PathPoint{}, false
	}
	return p.Points[idx], true
}

// SameAs reports whether p and o visit the same waypoints in the same
// order, used to avoid replacing an in-progress path with an identical one.
func (p *Path) SameAs(o *Path) bool {
	if o == nil || len(p.Points) != len(o.Points) {
		return false
	}
	for i, pt := range p.Points {
		if !pt.equalsCoords(o.Points[i].X, o.Points[i].Y, o.Points[i].Z) {
			return false
		}
	}
	return true
}
