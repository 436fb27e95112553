package pathfinding

// Standability classifies a block cell for the A* search, folding
// floor/headroom checks into a single verdict so the search never reasons
// about raw block ids (those stay behind the registry, §1). The seven
// values mirror the reference canEntityStandAt return codes one-to-one.
type Standability int8

const (
	Trapdoor  Standability = -4
	FenceGate Standability = -3
	Lava      Standability = -2
	Water     Standability = -1
	Blocked   Standability = 0
	Passable  Standability = 1
	Open      Standability = 2
)

func isWalkable(s Standability) bool { return s == Passable || s == Open }

// BlockStander answers whether an entity could stand with its feet at
// (x, y, z); the registry on the other side of this interface owns what
// that means in terms of actual blocks (§1).
type BlockStander interface {
	StandabilityAt(x, y, z int32) Standability
}

// Config tunes a single search.
type Config struct {
	MaxFallHeight int32
	MaxDistance   float64 // heuristic pruning radius from the goal, in blocks; 0 disables pruning
	AvoidsWater   bool
	CanSwim       bool
}

// arena is the flat node store a search allocates into, keyed by Hash so
// repeated visits to the same cell return the same PathPoint.
type arena struct {
	index map[int32]int32
	nodes []PathPoint
}

func newArena() *arena {
	return &arena{index: make(map[int32]int32, 64), nodes: make([]PathPoint, 0, 64)}
}

// open returns the arena index for (x, y, z), creating a fresh node on
// first visit.
func (a *arena) open(x, y, z int32) int32 {
	h := Hash(x, y, z)
	if idx, ok := a.index[h]; ok && a.nodes[idx].equalsCoords(x, y, z) {
		return idx
	}
	idx := int32(len(a.nodes))
	a.nodes = append(a.nodes, PathPoint{X: x, Y: y, Z: z, heapIndex: -1, prev: -1})
	a.index[h] = idx
	return idx
}

var cardinals = [4][2]int32{{0, 1}, {-1, 0}, {1, 0}, {0, -1}}

// Find runs the A* search of §4.6 from (startX,startY,startZ) to
// (goalX,goalY,goalZ). It always returns a usable path: reached reports
// whether the goal itself was reached, and if not the returned path leads
// to the closest node discovered.
func Find(stander BlockStander, startX, startY, startZ, goalX, goalY, goalZ int32, cfg Config) (path *Path, reached bool) {
	ar := newArena()
	startIdx := ar.open(startX, startY, startZ)
	goalIdx := ar.open(goalX, goalY, goalZ)

	start := &ar.nodes[startIdx]
	start.g = 0
	start.h = start.distanceToSquared(&ar.nodes[goalIdx])
	start.f = start.h
	start.assigned = true

	heap := newOpenHeap(ar)
	heap.push(startIdx)

	closestIdx := startIdx
	closestDist := start.h

	for !heap.empty() {
		curIdx := heap.pop()
		curX, curY, curZ := ar.nodes[curIdx].X, ar.nodes[curIdx].Y, ar.nodes[curIdx].Z

		if curX == goalX && curY == goalY && curZ == goalZ {
			return buildPath(ar, curIdx), true
		}

		if d := ar.nodes[curIdx].distanceToSquared(&ar.nodes[goalIdx]); d < closestDist {
			closestDist, closestIdx = d, curIdx
		}
		ar.nodes[curIdx].visited = true

		for _, d := range cardinals {
			nx, nz := curX+d[0], curZ+d[1]
			ny, ok := landingY(stander, curX, curY, curZ, nx, nz, cfg)
			if !ok {
				continue
			}
			// ar.open may grow (and reallocate) the node slice; curIdx and
			// goalIdx stay valid as indices regardless.
			nIdx := ar.open(nx, ny, nz)
			if ar.nodes[nIdx].visited {
				continue
			}
			if dist := ar.nodes[nIdx].distanceToSquared(&ar.nodes[goalIdx]); cfg.MaxDistance > 0 && dist > cfg.MaxDistance*cfg.MaxDistance {
				continue
			}

			newG := ar.nodes[curIdx].g + ar.nodes[curIdx].distanceToSquared(&ar.nodes[nIdx])
			if ar.nodes[nIdx].assigned && newG >= ar.nodes[nIdx].g {
				continue
			}

			ar.nodes[nIdx].prev = curIdx
			ar.nodes[nIdx].g = newG
			ar.nodes[nIdx].h = ar.nodes[nIdx].distanceToSquared(&ar.nodes[goalIdx])
			ar.nodes[nIdx].f = newG + ar.nodes[nIdx].h
			ar.nodes[nIdx].assigned = true

			if ar.nodes[nIdx].heapIndex >= 0 {
				heap.reposition(nIdx)
			} else {
				heap.push(nIdx)
			}
		}
	}

	if closestIdx == startIdx {
		return &Path{}, false
	}
	return buildPath(ar, closestIdx), false
}

// landingY resolves the neighbour cell reached by stepping from
// (curX,curY,curZ) to (nx, _, nz): stay level if possible, else step up
// one block when there is headroom to do so, else drop down up to
// cfg.MaxFallHeight.
func landingY(stander BlockStander, curX, curY, curZ, nx, nz int32, cfg Config) (int32, bool) {
	if isWalkable(stander.StandabilityAt(nx, curY, nz)) {
		return curY, true
	}
	if isWalkable(stander.StandabilityAt(curX, curY+1, curZ)) && isWalkable(stander.StandabilityAt(nx, curY+1, nz)) {
		return curY + 1, true
	}
	for dy := int32(1); dy <= cfg.MaxFallHeight; dy++ {
		ny := curY - dy
		switch s := stander.StandabilityAt(nx, ny, nz); {
		case s == Lava:
			return 0, false
		case s == Water:
			if cfg.AvoidsWater && !cfg.CanSwim {
				return 0, false
			}
			return ny, true
		case isWalkable(s):
			return ny, true
		}
	}
	return 0, false
}

func buildPath(ar *arena, endIdx int32) *Path {
	count := 1
	for i := ar.nodes[endIdx].prev; i >= 0; i = ar.nodes[i].prev {
		count++
	}
	points := make([]PathPoint, count)
	idx := endIdx
	for i := count - 1; i >= 0; i-- {
		p := ar.nodes[idx]
		p.prev = -1
		points[i] = p
		idx = ar.nodes[idx].prev
	}
	return &Path{Points: points}
}
