package spawner

import (
	"github.com/basaltcore/voxelserver/server/entity/pathfinding"
	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/rng"
)

const (
	packCount        = 3
	attemptsPerPack  = 4
	wanderHorizontal = 6
	wanderVertical   = 1

	playerExclusion        = 24
	exclusionRadiusSquared = playerExclusion * playerExclusion
)

// Request is a single natural-spawn instance. Species names the species by
// tag rather than a concrete entity type (the same boundary village's
// TickResult crosses for iron golems and zombies): GenerateInitialPopulation
// fills it from its List, while Search resolves positions only and leaves it
// empty.
type Request struct {
	Species string
	Pos     world.BlockPos
	Yaw     float32
}

// Terrain answers the block classification questions the spawn search
// needs: standability (shared with pathfinding) plus the solid-ground check
// a standability verdict alone can't distinguish.
type Terrain interface {
	pathfinding.BlockStander
	// SolidTop reports whether (x, y-1, z) is solid ground, excluding
	// bedrock, a land creature could stand on.
	SolidTop(x, y, z int32) bool
}

// validLand reports whether (x, y, z) is a legal land-creature spawn point:
// passable at foot height with solid ground below.
func validLand(t Terrain, x, y, z int32) bool {
	if !t.SolidTop(x, y, z) {
		return false
	}
	s := t.StandabilityAt(x, y, z)
	return s == pathfinding.Passable || s == pathfinding.Open
}

// validWater reports whether (x, y, z) is a legal water-creature spawn
// point: liquid at the position and below.
func validWater(t Terrain, x, y, z int32) bool {
	return t.StandabilityAt(x, y, z) == pathfinding.Water &&
		t.StandabilityAt(x, y-1, z) == pathfinding.Water
}

func validFor(c Category, t Terrain, x, y, z int32) bool {
	if c.Water() {
		return validWater(t, x, y, z)
	}
	return validLand(t, x, y, z)
}

// tooClose reports whether (x, y, z) lies within playerExclusion blocks of
// (px, py, pz) — used both for the "too close to a player" and "too close
// to the world spawn point" rejections.
func tooClose(x, y, z, px, py, pz int32) bool {
	dx, dy, dz := int64(x-px), int64(y-py), int64(z-pz)
	return dx*dx+dy*dy+dz*dz < int64(exclusionRadiusSquared)
}

func asInt32(p world.BlockPos) (x, y, z int32) {
	return int32(p.X()), int32(p.Y()), int32(p.Z())
}

// Search looks for up to packCount spawn clusters of category c within
// chunk, wandering out from a random starting column within the chunk.
// players and worldSpawn are block positions the search must stay clear of;
// t answers terrain questions; topOf returns the highest occupied y at a
// given column, the ceiling for the random starting height.
func Search(c Category, chunk world.ChunkPos, t Terrain, r *rng.LCG, players []world.BlockPos, worldSpawn world.BlockPos, topOf func(x, z int32) int32) []Request {
	baseX, baseZ := chunk.X*16, chunk.Z*16
	startX := baseX + r.NextInt(16)
	startZ := baseZ + r.NextInt(16)
	top := topOf(startX, startZ)
	if top <= 0 {
		return nil
	}
	startY := r.NextInt(top + 1)

	if !validFor(c, t, startX, startY, startZ) {
		return nil
	}

	wsx, wsy, wsz := asInt32(worldSpawn)
	var out []Request
	for pack := 0; pack < packCount; pack++ {
		x, y, z := startX, startY, startZ
		for attempt := 0; attempt < attemptsPerPack; attempt++ {
			x += r.NextInt(2*wanderHorizontal+1) - wanderHorizontal
			z += r.NextInt(2*wanderHorizontal+1) - wanderHorizontal
			y += r.NextInt(2*wanderVertical+1) - wanderVertical

			if !validFor(c, t, x, y, z) {
				continue
			}
			if tooClose(x, y, z, wsx, wsy, wsz) {
				continue
			}
			if anyPlayerNear(players, x, y, z) {
				continue
			}

			out = append(out, Request{
				Pos: world.BlockPos{int(x), int(y), int(z)},
				Yaw: r.NextFloat() * 360,
			})
		}
	}
	return out
}

func anyPlayerNear(players []world.BlockPos, x, y, z int32) bool {
	for _, p := range players {
		px, py, pz := asInt32(p)
		if tooClose(x, y, z, px, py, pz) {
			return true
		}
	}
	return false
}
