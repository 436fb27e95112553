package redstone

import "github.com/basaltcore/voxelserver/server/world"

// Pushability classifies a block cell for a piston push/pull scan, mirroring
// the Standability pattern in entity/pathfinding: the concrete block ids a
// verdict like "obsidian" or "bedrock" maps to stay behind the registry,
// out of scope for this package (§1).
type Pushability int8

const (
	// Blocking aborts the push entirely (obsidian, bedrock, an already-
	// extended piston part, an end portal frame, a tile-entity-bearing
	// block).
	Blocking Pushability = iota
	// Air terminates a chain successfully; nothing occupies the cell.
	Air
	// Pushable blocks move along with the chain.
	Pushable
)

// PushRegistry answers whether a block may be pushed or pulled by a piston.
type PushRegistry interface {
	PushabilityAt(pos world.BlockPos) Pushability
}

// ContainerRegistry supplies the "fullness" reading a comparator in
// container-reading mode takes from the block behind it.
type ContainerRegistry interface {
	// ContainerFullness reports the used/capacity slot counts for the
	// container at pos. ok is false if pos holds no container.
	ContainerFullness(pos world.BlockPos) (used, max int, ok bool)
}
