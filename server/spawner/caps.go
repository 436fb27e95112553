// Package spawner implements natural mob spawning: the eligible-chunk map
// built around each player, per-category population caps, and the
// pack/wander search for a valid spawn position, grounded on
// original_source/include/world/SpawnerAnimals.h (§4.10).
package spawner

// Category is a natural-spawning population class; each has its own cap and
// habitat flags, mirroring the reference CreatureType enum.
type Category int

const (
	Monster Category = iota
	Creature
	WaterCreature
	Ambient
)

// capInfo holds a category's world population ceiling and habitat flags.
type capInfo struct {
	maxCount  int
	peaceful  bool
	animal    bool
	water     bool
	hostile   bool
	dayActive bool
}

var caps = map[Category]capInfo{
	Monster:       {maxCount: 70, hostile: true},
	Creature:      {maxCount: 10, peaceful: true, animal: true, dayActive: true},
	WaterCreature: {maxCount: 5, peaceful: true, water: true},
	Ambient:       {maxCount: 15, peaceful: true},
}

// MaxCount returns a category's world-population ceiling.
func (c Category) MaxCount() int { return caps[c].maxCount }

// Peaceful reports whether c never attacks players.
func (c Category) Peaceful() bool { return caps[c].peaceful }

// Animal reports whether c is a breedable land animal.
func (c Category) Animal() bool { return caps[c].animal }

// Water reports whether c lives in liquid.
func (c Category) Water() bool { return caps[c].water }

// eligibleChunkRange matches the reference RANGE constant: the radius, in
// chunks, scanned around each player.
const eligibleChunkRange = 8

// perColumnDenominator is the reference's 256, the number of chunk-columns in
// a 16x16-chunk area; caps scale linearly with the eligible chunk count
// relative to it.
const perColumnDenominator = 256

// capForEligibleChunks returns the scaled population ceiling for a category
// given how many chunks are currently eligible for spawning.
func capForEligibleChunks(c Category, eligibleChunks int) int {
	return c.MaxCount() * eligibleChunks / perColumnDenominator
}

// UnderCap reports whether currentCount leaves room for more of category c
// to spawn, given eligibleChunks eligible chunks loaded.
func UnderCap(c Category, currentCount, eligibleChunks int) bool {
	return currentCount <= capForEligibleChunks(c, eligibleChunks)
}
