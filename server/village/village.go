// Package village implements the spatial village record and its per-tick
// bookkeeping — door expiry, aggressor expiry, iron-golem spawn requests —
// grounded on original_source/include/village/Village.h and the
// "iterate, prune expired" shape of the teacher's scheduledTickQueue.tick
// (§4.10).
package village

import (
	"math"

	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

const (
	// doorExpiryTicks is how long a door may go unvalidated before it is
	// dropped from the village.
	doorExpiryTicks = 1200
	// aggressorExpiryTicks is how long an aggressor is remembered.
	aggressorExpiryTicks = 300
	// matingCooldownTicks is the mating-season cooldown after EndMatingSeason.
	matingCooldownTicks = 3600
	// minRadius is the floor applied to the computed door-centroid radius.
	minRadius = 32
	// golemDoorThreshold is the door count a village must exceed before
	// golems are requested.
	golemDoorThreshold = 20
	// golemChance is the 1-in-N roll for an iron-golem spawn each tick.
	golemChance = 7000

	reputationMin = -30
	reputationMax = 10
	// reputationLowThreshold is the "too hostile to trade" cutoff.
	reputationLowThreshold = -15
)

// MobIronGolem tags the spawn request TickResult carries; the external mob
// content registry resolves it to a concrete entity (§1).
const MobIronGolem = "iron_golem"

// Door is a village door: its block position, the direction from the door
// block toward the village interior, and the tick it was last confirmed to
// still be a door.
type Door struct {
	Pos           world.BlockPos
	InsideX       int
	InsideZ       int
	LastValidated int64
}

func (d Door) distSq(x, y, z int) int64 {
	dx := int64(d.Pos.X() - x)
	dy := int64(d.Pos.Y() - y)
	dz := int64(d.Pos.Z() - z)
	return dx*dx + dy*dy + dz*dz
}

// Aggressor is an entity remembered as having attacked a villager.
type Aggressor struct {
	EntityID int64
	LastSeen int64
}

// TickResult reports what the caller should do as a consequence of a
// village's tick, mirroring the reference Village::tick's TickResult: at
// most one iron-golem spawn request per tick.
type TickResult struct {
	SpawnGolem bool
	GolemKind  string
	GolemPos   world.BlockPos
}

// Village is a spatial record: a set of doors, their centroid and radius, a
// villager/golem census, per-player reputation, and recent aggressors.
type Village struct {
	Doors      []Door
	Aggressors []Aggressor
	Reputation map[string]int

	Villagers  int
	IronGolems int

	centerSumX, centerSumY, centerSumZ int
	CenterX, CenterY, CenterZ          int
	Radius                             int

	lastDoorAdd int64
	tick        int64
	noBreedTick int64
}

// New returns an empty village.
func New() *Village {
	return &Village{Reputation: make(map[string]int)}
}

// AddDoor records a door at the current tick and recomputes the centroid.
func (v *Village) AddDoor(pos world.BlockPos, insideX, insideZ int) {
	d := Door{Pos: pos, InsideX: insideX, InsideZ: insideZ, LastValidated: v.tick}
	v.Doors = append(v.Doors, d)
	v.centerSumX += pos.X()
	v.centerSumY += pos.Y()
	v.centerSumZ += pos.Z()
	v.recalculate()
	v.lastDoorAdd = v.tick
}

// TicksSinceLastDoor returns how long it has been since a door was last
// added to this village.
func (v *Village) TicksSinceLastDoor() int64 { return v.tick - v.lastDoorAdd }

// Annihilated reports whether the village has no doors left.
func (v *Village) Annihilated() bool { return len(v.Doors) == 0 }

// InRange reports whether (x, y, z) lies within the village's radius of its
// centre.
func (v *Village) InRange(x, y, z int) bool {
	dx := float64(x - v.CenterX)
	dy := float64(y - v.CenterY)
	dz := float64(z - v.CenterZ)
	return dx*dx+dy*dy+dz*dz < float64(v.Radius*v.Radius)
}

// NearestDoor returns the door closest to (x, y, z), if any exist.
func (v *Village) NearestDoor(x, y, z int) (Door, bool) {
	best, bestDist := Door{}, int64(math.MaxInt64)
	found := false
	for _, d := range v.Doors {
		if dist := d.distSq(x, y, z); !found || dist < bestDist {
			best, bestDist, found = d, dist, true
		}
	}
	return best, found
}

// Reputation accessors

// ReputationFor returns player's standing with this village, defaulting to 0.
func (v *Village) ReputationFor(player string) int {
	return v.Reputation[player]
}

// ModifyReputation adjusts player's standing by delta, clamped to
// [reputationMin, reputationMax], and returns the new value.
func (v *Village) ModifyReputation(player string, delta int) int {
	next := v.Reputation[player] + delta
	if next < reputationMin {
		next = reputationMin
	} else if next > reputationMax {
		next = reputationMax
	}
	v.Reputation[player] = next
	return next
}

// ReputationTooLow reports whether player is too hostile to trade with.
func (v *Village) ReputationTooLow(player string) bool {
	return v.ReputationFor(player) <= reputationLowThreshold
}

// Aggressor tracking

// AddOrRenewAggressor records entityID as having attacked this tick, or
// refreshes its timestamp if already tracked.
func (v *Village) AddOrRenewAggressor(entityID int64) {
	for i := range v.Aggressors {
		if v.Aggressors[i].EntityID == entityID {
			v.Aggressors[i].LastSeen = v.tick
			return
		}
	}
	v.Aggressors = append(v.Aggressors, Aggressor{EntityID: entityID, LastSeen: v.tick})
}

// Mating season

// MatingSeason reports whether villagers in this village may currently breed.
func (v *Village) MatingSeason() bool {
	return v.noBreedTick == 0 || v.tick-v.noBreedTick >= matingCooldownTicks
}

// EndMatingSeason starts the cooldown from the current tick.
func (v *Village) EndMatingSeason() {
	v.noBreedTick = v.tick
}

// Tick advances the village by one world tick: dropping stale doors,
// expiring old aggressors, and rolling for an iron-golem spawn request.
func (v *Village) Tick(worldTick int64, r *rng.LCG) TickResult {
	v.tick = worldTick
	v.pruneDoors()
	v.pruneAggressors()

	var result TickResult
	desiredGolems := v.Villagers / 10
	if v.IronGolems >= desiredGolems || len(v.Doors) <= golemDoorThreshold {
		return result
	}
	if r.NextInt(golemChance) != 0 {
		return result
	}

	dx := int(r.NextInt(int32(v.Radius*2+1))) - v.Radius
	dy := int(r.NextInt(5)) - 2
	dz := int(r.NextInt(int32(v.Radius*2+1))) - v.Radius
	pos := world.BlockPos{v.CenterX + dx, v.CenterY + dy, v.CenterZ + dz}
	if !v.InRange(pos.X(), pos.Y(), pos.Z()) {
		return result
	}

	v.IronGolems++
	return TickResult{SpawnGolem: true, GolemKind: MobIronGolem, GolemPos: pos}
}

func (v *Village) pruneDoors() {
	kept := v.Doors[:0]
	changed := false
	for _, d := range v.Doors {
		if abs64(v.tick-d.LastValidated) > doorExpiryTicks {
			v.centerSumX -= d.Pos.X()
			v.centerSumY -= d.Pos.Y()
			v.centerSumZ -= d.Pos.Z()
			changed = true
			continue
		}
		kept = append(kept, d)
	}
	v.Doors = kept
	if changed {
		v.recalculate()
	}
}

func (v *Village) pruneAggressors() {
	kept := v.Aggressors[:0]
	for _, a := range v.Aggressors {
		if abs64(v.tick-a.LastSeen) <= aggressorExpiryTicks {
			kept = append(kept, a)
		}
	}
	v.Aggressors = kept
}

func (v *Village) recalculate() {
	n := len(v.Doors)
	if n == 0 {
		v.CenterX, v.CenterY, v.CenterZ, v.Radius = 0, 0, 0, 0
		return
	}
	v.CenterX = v.centerSumX / n
	v.CenterY = v.centerSumY / n
	v.CenterZ = v.centerSumZ / n

	var maxDistSq int64
	for _, d := range v.Doors {
		if dist := d.distSq(v.CenterX, v.CenterY, v.CenterZ); dist > maxDistSq {
			maxDistSq = dist
		}
	}
	r := int(math.Ceil(math.Sqrt(float64(maxDistSq))))
	if r < minRadius {
		r = minRadius
	}
	v.Radius = r
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
