package village

import (
	"math"

	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

// MobZombie tags zombie spawn requests a siege emits.
const MobZombie = "zombie"

const (
	siegeNightStart = 13000
	siegeNightEnd   = 22000

	siegeMinDoors     = 10
	siegeMinVillagers = 20
	siegeTotalZombies = 20
	siegeSpawnEvery   = 2
	siegeBorderFactor = 0.9
	// siegePlayerRange is how close a player must be for a siege to begin.
	siegePlayerRange = 32
)

// PlayerNearby reports whether (x, y, z) is close enough to v to count as
// "a nearby player" for ShouldStart.
func PlayerNearby(v *Village, x, y, z int) bool {
	dx := float64(x - v.CenterX)
	dy := float64(y - v.CenterY)
	dz := float64(z - v.CenterZ)
	r := float64(v.Radius + siegePlayerRange)
	return dx*dx+dy*dy+dz*dz < r*r
}

// siegeState is the VillageSiege state machine: looking for a night to
// start, or actively spawning zombies.
type siegeState int

const (
	siegeInactive siegeState = iota
	siegeSpawning
)

// Siege drives a village's zombie siege event: once started, it spawns 20
// zombies over 40 ticks along the village border.
type Siege struct {
	state      siegeState
	spawned    int
	nextSpawn  int64
	angleSteps int64
}

// NewSiege returns an inactive siege tracker.
func NewSiege() *Siege { return &Siege{} }

// Active reports whether a siege is currently spawning zombies.
func (s *Siege) Active() bool { return s.state == siegeSpawning }

// IsNight reports whether worldTime falls in the siege window (13000-22000).
func IsNight(worldTime int64) bool {
	t := worldTime % 24000
	return t >= siegeNightStart && t < siegeNightEnd
}

// ShouldStart reports whether a new siege may begin against v, given the
// current world time and whether a player is nearby.
func ShouldStart(v *Village, worldTime int64, playerNearby bool) bool {
	return IsNight(worldTime) && playerNearby &&
		len(v.Doors) >= siegeMinDoors && v.Villagers >= siegeMinVillagers
}

// SiegeSpawn is a single zombie spawn request emitted by a tick.
type SiegeSpawn struct {
	Kind string
	Pos  world.BlockPos
}

// Tick advances the siege by one world tick against v, returning a zombie
// spawn request when one is due. The siege ends once 20 zombies have spawned.
func (s *Siege) Tick(v *Village, worldTime int64, r *rng.LCG) (SiegeSpawn, bool) {
	if s.state == siegeInactive {
		return SiegeSpawn{}, false
	}
	if worldTime < s.nextSpawn {
		return SiegeSpawn{}, false
	}
	if s.spawned >= siegeTotalZombies {
		s.state = siegeInactive
		return SiegeSpawn{}, false
	}

	angle := r.NextDouble() * 2 * math.Pi
	radius := float64(v.Radius) * siegeBorderFactor
	x := v.CenterX + int(math.Cos(angle)*radius)
	z := v.CenterZ + int(math.Sin(angle)*radius)

	s.spawned++
	s.nextSpawn = worldTime + siegeSpawnEvery
	if s.spawned >= siegeTotalZombies {
		s.state = siegeInactive
	}
	return SiegeSpawn{Kind: MobZombie, Pos: world.BlockPos{x, v.CenterY, z}}, true
}

// Start arms the siege to begin spawning on the next Tick call.
func (s *Siege) Start(worldTime int64) {
	s.state = siegeSpawning
	s.spawned = 0
	s.nextSpawn = worldTime
}
