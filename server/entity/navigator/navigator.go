// Package navigator drives an entity along a pathfinding.Path: advancing
// waypoints, detecting a stuck path, and steering yaw toward the next
// point, per §4.7.
package navigator

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/basaltcore/voxelserver/server/entity"
	"github.com/basaltcore/voxelserver/server/entity/pathfinding"
)

const (
	stuckCheckInterval = 100
	stuckDistSq        = 2.25
	maxYawStep         = 30.0
)

// MoveCommand is the per-tick steering instruction a Navigator emits: move
// toward Target at Speed. A zero MoveCommand with ok=false means stay put.
type MoveCommand struct {
	Target mgl64.Vec3
	Speed  float64
}

// Navigator holds one entity's current path and follow-state. It is not
// safe for concurrent use; the owning entity's simulation thread drives it
// (§5).
type Navigator struct {
	path  *pathfinding.Path
	speed float64

	totalTicks     int64
	ticksAtLastPos int64
	lastPos        mgl64.Vec3
}

// New returns a Navigator with no active path.
func New() *Navigator { return &Navigator{} }

// SetPath installs path as the navigator's active route, unless it is
// identical to the one already being followed (in which case the current
// progress is kept). pos is the entity's position at the moment the path
// is set, used to seed stuck detection.
func (n *Navigator) SetPath(path *pathfinding.Path, speed float64, pos mgl64.Vec3) bool {
	if path == nil || path.Len() == 0 {
		n.path = nil
		return false
	}
	if n.path == nil || !path.SameAs(n.path) {
		n.path = path
	}
	n.speed = speed
	n.ticksAtLastPos = n.totalTicks
	n.lastPos = pos
	return true
}

// Clear drops the active path.
func (n *Navigator) Clear() { n.path = nil }

// NoPath reports whether there is nothing left to follow.
func (n *Navigator) NoPath() bool { return n.path == nil || n.path.Finished() }

// Tick advances the navigator by one world tick for e, returning the move
// command to execute (if any).
func (n *Navigator) Tick(e *entity.Entity) (MoveCommand, bool) {
	n.totalTicks++
	if n.NoPath() {
		return MoveCommand{}, false
	}

	pos := e.Position()
	width := e.BBox().HalfWidth * 2
	n.advance(pos, width*width)

	if n.stuck(pos) {
		n.Clear()
		return MoveCommand{}, false
	}
	if n.NoPath() {
		return MoveCommand{}, false
	}

	wp, _ := n.path.At(n.path.Current)
	target := mgl64.Vec3{float64(wp.X) + 0.5, float64(wp.Y), float64(wp.Z) + 0.5}
	n.steer(e, pos, target)
	return MoveCommand{Target: target, Speed: n.speed}, true
}

// advance skips past waypoints whose XZ distance from pos is within
// widthSq of the entity.
func (n *Navigator) advance(pos mgl64.Vec3, widthSq float64) {
	for n.path.Current < n.path.Len() {
		wp, _ := n.path.At(n.path.Current)
		dx := pos.X() - (float64(wp.X) + 0.5)
		dz := pos.Z() - (float64(wp.Z) + 0.5)
		if dx*dx+dz*dz >= widthSq {
			return
		}
		n.path.Current++
	}
}

// stuck samples pos once every stuckCheckInterval ticks; if the entity has
// moved less than √stuckDistSq since the last sample, the path is stuck.
func (n *Navigator) stuck(pos mgl64.Vec3) bool {
	if n.totalTicks-n.ticksAtLastPos <= stuckCheckInterval {
		return false
	}
	d := pos.Sub(n.lastPos)
	moved := d.Dot(d)
	n.ticksAtLastPos = n.totalTicks
	n.lastPos = pos
	return moved < stuckDistSq
}

// steer turns e's yaw toward target, clamped to maxYawStep degrees per
// tick.
func (n *Navigator) steer(e *entity.Entity, pos, target mgl64.Vec3) {
	dx, dz := target.X()-pos.X(), target.Z()-pos.Z()
	if dx == 0 && dz == 0 {
		return
	}
	want := math.Atan2(-dx, dz) * 180 / math.Pi
	yaw, pitch := e.Rotation()
	delta := normalizeDegrees(want - yaw)
	if delta > maxYawStep {
		delta = maxYawStep
	} else if delta < -maxYawStep {
		delta = -maxYawStep
	}
	e.SetRotation(normalizeDegrees(yaw+delta), pitch)
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg >= 180 {
		deg -= 360
	} else if deg < -180 {
		deg += 360
	}
	return deg
}
