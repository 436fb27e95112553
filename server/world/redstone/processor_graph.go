package redstone

import (
	"math"

	"github.com/basaltcore/voxelserver/server/world"
)

const (
	burnoutWindowTicks = 60
	burnoutThreshold   = 8
	pushLimit          = 12
)

// NewGraphProcessor returns the default redstone processor implementation,
// reading piston push legality and container fullness through the given
// registries.
func NewGraphProcessor(push PushRegistry, containers ContainerRegistry) Processor {
	return graphProcessor{push: push, containers: containers}
}

type graphProcessor struct {
	push       PushRegistry
	containers ContainerRegistry
}

func (p graphProcessor) HandleEvent(_ ChunkID, g *Graph, ev Event, emit Emitter) {
	if g == nil {
		return
	}
	idx, node, state := locateNode(g, ev)
	if node == nil || state == nil {
		return
	}
	switch node.Kind {
	case NodeSource:
		// Constant power; a block of redstone has no dynamic behaviour.
	case NodeTorch:
		handleTorch(g, idx, node, state, ev, emit)
	case NodeWire:
		handleWire(g, idx, node, state, ev, emit)
	case NodeRepeater:
		handleRepeater(g, idx, node, state, ev, emit)
	case NodeComparator:
		p.handleComparator(g, idx, node, state, ev, emit)
	case NodePiston:
		p.handlePiston(g, idx, node, state, ev, emit)
	case NodeConsumer:
		handleConsumer(node, state, ev, emit)
	}
}

func locateNode(g *Graph, ev Event) (int, *Node, *NodeState) {
	if ev.Kind == EventTick || ev.Node != 0 {
		if idx, node, state, ok := g.nodeByID(ev.Node); ok {
			return idx, node, state
		}
	}
	if idx, node, state, ok := g.nodeByPos(ev.Pos); ok {
		return idx, node, state
	}
	return -1, nil, nil
}

// --- Direction helpers -------------------------------------------------

func facingOf(data uint16) Direction       { return Direction((data >> 2) & 0x7) }
func delayOf(data uint16) int              { return int(data&0x3) + 1 }
func subtractModeOf(data uint16) bool      { return data&0x1 != 0 }
func readsContainerOf(data uint16) bool    { return data&0x2 != 0 }
func pistonFacingOf(data uint16) Direction { return Direction(data & 0x7) }
func stickyOf(data uint16) bool            { return data&0x8 != 0 }

// MakeRepeaterData packs a repeater's facing and 1-4 tick delay.
func MakeRepeaterData(facing Direction, delay int) uint16 {
	if delay < 1 {
		delay = 1
	}
	if delay > 4 {
		delay = 4
	}
	return uint16(delay-1) | uint16(facing)<<2
}

// MakeComparatorData packs a comparator's facing, mode, and whether it reads
// a container behind it.
func MakeComparatorData(facing Direction, subtract, readsContainer bool) uint16 {
	var d uint16
	if subtract {
		d |= 0x1
	}
	if readsContainer {
		d |= 0x2
	}
	return d | uint16(facing)<<2
}

// MakePistonData packs a piston's facing and stickiness.
func MakePistonData(facing Direction, sticky bool) uint16 {
	d := uint16(facing)
	if sticky {
		d |= 0x8
	}
	return d
}

func perpendicular(facing Direction) (Direction, Direction) {
	if facing == North || facing == South {
		return West, East
	}
	return North, South
}

// --- Wire handling -------------------------------------------------------

// handleWire recomputes the wire's power as max(neighbour outputs) - 1,
// pulling fresh values from every neighbour rather than trusting the
// triggering event's carried power, so a wire junction fed by multiple
// sources always reflects the strongest one (§4.8 Wire propagation).
func handleWire(g *Graph, idx int, node *Node, state *NodeState, ev Event, emit Emitter) {
	switch ev.Kind {
	case EventPowerChange, EventSignalRise, EventSignalFall, EventBlockUpdate:
		newPower := wirePowerFrom(g, idx)
		if newPower == state.Power {
			return
		}
		state.Power = newPower
		state.Active = newPower > 0
		emit.Output(Event{Kind: EventOutput, Pos: node.Pos, Power: newPower, Tick: ev.Tick, Node: node.ID})
		propagatePower(g, idx, node, newPower, ev.Tick, emit)
	}
}

func wirePowerFrom(g *Graph, idx int) uint8 {
	ids, dirs := g.neighbourEdges(idx)
	var best uint8
	for i, nbID := range ids {
		_, nbNode, nbState, ok := g.nodeByID(nbID)
		if !ok {
			continue
		}
		towardDir := dirs[i].Opposite()
		if p := nodeOutputTowards(nbNode, nbState, towardDir); p > best {
			best = p
		}
	}
	if best == 0 {
		return 0
	}
	return best - 1
}

// nodeOutputTowards is the power a node presents to a neighbour sitting in
// direction towardDir from it (the direction the neighbour would travel to
// reach this node).
func nodeOutputTowards(n *Node, s *NodeState, towardDir Direction) uint8 {
	switch n.Kind {
	case NodeSource:
		return 15
	case NodeTorch:
		if s.Active {
			return 15
		}
		return 0
	case NodeWire:
		return s.Power
	case NodeRepeater:
		if towardDir == facingOf(n.Data) && s.Active {
			return 15
		}
		return 0
	case NodeComparator:
		if towardDir == facingOf(n.Data) {
			return s.Power
		}
		return 0
	default:
		return 0
	}
}

// --- Torch handling --------------------------------------------------------

// handleTorch inverts the power of the block it is attached to and tracks
// burnout: on every toggle attempt it re-checks whether its own trailing
// 60-tick toggleLog still holds 8 or more entries. There is no separate
// cooldown timer — the lock clears itself once enough of the offending
// toggles age out of that same window that a new toggle leaves fewer than
// 8 entries, so a torch toggled steadily resumes normal inversion within
// 60 ticks of its last toggle (§4.8 Torch).
func handleTorch(g *Graph, idx int, node *Node, state *NodeState, ev Event, emit Emitter) {
	var newPower uint8
	switch ev.Kind {
	case EventPowerChange:
		if ev.Power > 0 {
			newPower = 0
		} else {
			newPower = 15
		}
	case EventSignalRise, EventBlockUpdate:
		newPower = 15
	case EventSignalFall:
		newPower = 0
	default:
		return
	}
	if newPower == state.Power {
		return
	}

	recordToggle(state, ev.Tick)
	if len(state.toggleLog) >= burnoutThreshold {
		newPower = 0
	}
	if newPower == state.Power {
		return
	}

	state.Power = newPower
	state.Active = newPower > 0
	propagatePower(g, idx, node, newPower, ev.Tick, emit)
}

func recordToggle(state *NodeState, tick int64) {
	state.toggleLog = append(state.toggleLog, tick)
	cutoff := tick - burnoutWindowTicks
	i := 0
	for i < len(state.toggleLog) && state.toggleLog[i] < cutoff {
		i++
	}
	state.toggleLog = state.toggleLog[i:]
}

// --- Repeater handling -------------------------------------------------

// handleRepeater schedules a flip delay ticks after an input change and
// ignores input while locked by a perpendicular neighbour repeater that
// faces into it and is powered (§4.8 Repeater).
func handleRepeater(g *Graph, idx int, node *Node, state *NodeState, ev Event, emit Emitter) {
	facing := facingOf(node.Data)
	state.Locked = isRepeaterLocked(g, idx, facing)

	switch ev.Kind {
	case EventPowerChange, EventSignalRise, EventSignalFall, EventBlockUpdate:
		if state.Locked {
			return
		}
		input := ev.Power
		state.LastInput = input
		targetTick := ev.Tick + int64(delayOf(node.Data))
		state.PendingTick = targetTick
		if input > 0 {
			state.PendingPower = 15
		} else {
			state.PendingPower = 0
		}
		emit.Local(Event{Pos: node.Pos, Kind: EventTick, Tick: targetTick, Node: node.ID})
	case EventTick:
		if state.PendingTick != 0 && ev.Tick >= state.PendingTick {
			state.PendingTick = 0
			if state.Power == state.PendingPower {
				return
			}
			state.Power = state.PendingPower
			state.Active = state.Power > 0
			propagatePower(g, idx, node, state.Power, ev.Tick, emit)
		}
	}
}

func isRepeaterLocked(g *Graph, idx int, facing Direction) bool {
	p1, p2 := perpendicular(facing)
	ids, dirs := g.neighbourEdges(idx)
	for i, nbID := range ids {
		d := dirs[i]
		if d != p1 && d != p2 {
			continue
		}
		_, nbNode, nbState, ok := g.nodeByID(nbID)
		if !ok || nbNode.Kind != NodeRepeater {
			continue
		}
		if facingOf(nbNode.Data) == d.Opposite() && nbState.Active {
			return true
		}
	}
	return false
}

// --- Comparator handling -------------------------------------------------

// handleComparator implements the two comparator modes of §4.8: compare
// outputs the rear input when it is at least as strong as the stronger side
// input, subtract outputs the difference. The rear input may instead be a
// container fullness reading of the block behind the comparator.
func (p graphProcessor) handleComparator(g *Graph, idx int, node *Node, state *NodeState, ev Event, emit Emitter) {
	switch ev.Kind {
	case EventPowerChange, EventSignalRise, EventSignalFall, EventBlockUpdate:
	default:
		return
	}

	facing := facingOf(node.Data)
	ids, dirs := g.neighbourEdges(idx)

	rear := neighbourPowerFacing(g, ids, dirs, facing.Opposite())
	if readsContainerOf(node.Data) && p.containers != nil {
		rearPos := world.BlockPos{node.Pos[0] + facing.Opposite().Offset()[0], node.Pos[1] + facing.Opposite().Offset()[1], node.Pos[2] + facing.Opposite().Offset()[2]}
		if used, max, ok := p.containers.ContainerFullness(rearPos); ok && max > 0 {
			hasAny := 0
			if used > 0 {
				hasAny = 1
			}
			v := int(math.Ceil(15*float64(used)/float64(max))) + hasAny
			if v > 15 {
				v = 15
			}
			rear = uint8(v)
		}
	}

	p1, p2 := perpendicular(facing)
	side := neighbourPowerFacing(g, ids, dirs, p1)
	if s2 := neighbourPowerFacing(g, ids, dirs, p2); s2 > side {
		side = s2
	}

	var out uint8
	if subtractModeOf(node.Data) {
		if rear > side {
			out = rear - side
		}
	} else if rear >= side {
		out = rear
	}

	if out == state.Power {
		return
	}
	state.Power = out
	state.Active = out > 0
	propagatePower(g, idx, node, out, ev.Tick, emit)
}

// neighbourPowerFacing returns the power the neighbour in direction dir
// presents toward this node, or 0 if there is none.
func neighbourPowerFacing(g *Graph, ids []NodeID, dirs []Direction, dir Direction) uint8 {
	for i, nbID := range ids {
		if dirs[i] != dir {
			continue
		}
		_, nbNode, nbState, ok := g.nodeByID(nbID)
		if !ok {
			continue
		}
		return nodeOutputTowards(nbNode, nbState, dir.Opposite())
	}
	return 0
}

// --- Piston handling -------------------------------------------------------

// handlePiston scans the forward chain on a power-on trigger and aborts if
// it exceeds the 12-block push limit or meets an unpushable block; a sticky
// piston additionally pulls the block ahead of its head on retract
// (§4.8 Piston).
func (p graphProcessor) handlePiston(_ *Graph, _ int, node *Node, state *NodeState, ev Event, emit Emitter) {
	switch ev.Kind {
	case EventPowerChange, EventSignalRise, EventSignalFall, EventBlockUpdate:
	default:
		return
	}
	powered := ev.Power > 0
	if ev.Kind == EventSignalRise {
		powered = true
	} else if ev.Kind == EventSignalFall {
		powered = false
	}
	if powered == state.Active {
		return
	}
	state.Active = powered

	facing := pistonFacingOf(node.Data)
	if powered {
		chain, ok := scanPushChain(p.push, node.Pos, facing)
		if !ok {
			state.Active = false
			return
		}
		emit.Output(Event{Kind: EventOutput, Pos: node.Pos, Tick: ev.Tick, Meta: encodePistonMeta(facing, true), Chain: chain})
		return
	}

	var chain []world.BlockPos
	if stickyOf(node.Data) && p.push != nil {
		off := facing.Offset()
		pulled := world.BlockPos{node.Pos[0] + 2*off[0], node.Pos[1] + 2*off[1], node.Pos[2] + 2*off[2]}
		if p.push.PushabilityAt(pulled) == Pushable {
			chain = []world.BlockPos{pulled}
		}
	}
	emit.Output(Event{Kind: EventOutput, Pos: node.Pos, Tick: ev.Tick, Meta: encodePistonMeta(facing, false), Chain: chain})
}

// scanPushChain walks forward from base along facing, collecting pushable
// blocks until it meets air (success) or a blocking block / the 12-block
// limit (failure). The returned chain is ordered farthest-from-piston
// first, matching the move order required by §4.8.
func scanPushChain(reg PushRegistry, base world.BlockPos, facing Direction) ([]world.BlockPos, bool) {
	if reg == nil {
		return nil, false
	}
	off := facing.Offset()
	cur := world.BlockPos{base[0] + off[0], base[1] + off[1], base[2] + off[2]}
	var chain []world.BlockPos
	for i := 0; i < pushLimit+1; i++ {
		switch reg.PushabilityAt(cur) {
		case Air:
			reversed := make([]world.BlockPos, len(chain))
			for j, pos := range chain {
				reversed[len(chain)-1-j] = pos
			}
			return reversed, true
		case Blocking:
			return nil, false
		default: // Pushable
			chain = append(chain, cur)
			if len(chain) > pushLimit {
				return nil, false
			}
			cur = world.BlockPos{cur[0] + off[0], cur[1] + off[1], cur[2] + off[2]}
		}
	}
	return nil, false
}

func encodePistonMeta(facing Direction, extend bool) uint32 {
	m := uint32(facing)
	if extend {
		m |= 0x8
	}
	return m
}

// --- Consumer handling -----------------------------------------------------

func handleConsumer(node *Node, state *NodeState, ev Event, emit Emitter) {
	switch ev.Kind {
	case EventPowerChange, EventSignalRise, EventSignalFall, EventBlockUpdate:
		newPower := ev.Power
		if ev.Kind == EventSignalRise && newPower == 0 {
			newPower = 15
		}
		active := newPower > 0
		if state.Active == active && state.Power == newPower {
			return
		}
		state.Active = active
		state.Power = newPower
		emit.Output(Event{Kind: EventOutput, Pos: node.Pos, Power: newPower, Tick: ev.Tick, Node: node.ID, Meta: boolToMeta(active)})
	}
}

func boolToMeta(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

// --- Shared propagation ----------------------------------------------------

func propagatePower(g *Graph, idx int, node *Node, power uint8, tick int64, emit Emitter) {
	ids, _ := g.neighbourEdges(idx)
	for _, nbID := range ids {
		_, nbNode, _, ok := g.nodeByID(nbID)
		if !ok || nbNode == nil {
			continue
		}
		emit.Local(Event{Pos: nbNode.Pos, Kind: EventPowerChange, Power: power, Tick: tick, Node: nbNode.ID})
	}
	for _, port := range g.Ports {
		if port.Node != node.ID {
			continue
		}
		emit.Remote(port.Neighbor, Event{Pos: node.Pos, Kind: EventPowerChange, Power: power, Tick: tick})
	}
}
