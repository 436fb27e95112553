package redstone

import (
	"context"
	"testing"

	"github.com/basaltcore/voxelserver/server/world"
)

type fakePushRegistry map[world.BlockPos]Pushability

func (f fakePushRegistry) PushabilityAt(pos world.BlockPos) Pushability {
	if v, ok := f[pos]; ok {
		return v
	}
	return Air
}

type fakeContainerRegistry struct {
	used, max int
	ok        bool
}

func (f fakeContainerRegistry) ContainerFullness(world.BlockPos) (int, int, bool) {
	return f.used, f.max, f.ok
}

func newStepper(proc Processor) (*ChunkWorker, func()) {
	router := NewRouter(RouterConfig{})
	w := NewChunkWorker(WorkerConfig{
		Router:    router,
		Chunk:     ChunkID{X: 0, Z: 0},
		InboxSize: 32,
		Processor: proc,
	})
	return w, w.Stop
}

func TestSourceWireConsumer(t *testing.T) {
	proc := NewGraphProcessor(nil, nil)
	worker, stop := newStepper(proc)
	defer stop()

	b := NewGraphBuilder()
	src := b.AddNode(world.BlockPos{0, 64, 0}, NodeSource, 0)
	wire := b.AddNode(world.BlockPos{1, 64, 0}, NodeWire, 0)
	lamp := b.AddNode(world.BlockPos{2, 64, 0}, NodeConsumer, 0)
	b.Connect(src, wire, East)
	b.Connect(wire, lamp, East)
	g := b.Build(nil)
	worker.UpdateGraph(g)

	worker.EnqueueLocal(Event{Kind: EventBlockUpdate, Pos: world.BlockPos{1, 64, 0}, Tick: 1, Node: wire})
	res := worker.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})

	if p := worker.graph.States[1].Power; p != 14 {
		t.Fatalf("expected wire power 14, got %d", p)
	}
	if p := worker.graph.States[2].Power; p != 14 {
		t.Fatalf("expected lamp power 14, got %d", p)
	}
	found := false
	for _, ev := range res.Outputs {
		if ev.Pos == (world.BlockPos{2, 64, 0}) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a lamp output event")
	}
}

func TestTorchInvertsAndBurnsOut(t *testing.T) {
	proc := NewGraphProcessor(nil, nil)
	worker, stop := newStepper(proc)
	defer stop()

	b := NewGraphBuilder()
	torch := b.AddNode(world.BlockPos{0, 64, 0}, NodeTorch, 0)
	wire := b.AddNode(world.BlockPos{1, 64, 0}, NodeWire, 0)
	b.Connect(torch, wire, East)
	g := b.Build(nil)
	worker.UpdateGraph(g)

	// Toggle the torch's input 9 times within 60 ticks (alternating rise
	// and fall so every attempt actually inverts), per spec.md §8 scenario
	// 6: the torch is off after the 8th toggle, and the 9th is a no-op.
	var lastTick int64
	for i := 0; i <= burnoutThreshold; i++ {
		tick := int64(i + 1)
		lastTick = tick
		kind := EventSignalFall
		if i%2 == 0 {
			kind = EventSignalRise
		}
		worker.EnqueueLocal(Event{Kind: kind, Pos: world.BlockPos{0, 64, 0}, Tick: tick, Node: torch})
		worker.Step(context.Background(), StepRequest{Tick: tick, Budget: 32})
	}

	if len(worker.graph.States[0].toggleLog) < burnoutThreshold {
		t.Fatalf("expected torch to be burned out after %d toggles", burnoutThreshold)
	}
	if p := worker.graph.States[0].Power; p != 0 {
		t.Fatalf("expected the 9th toggle to be a no-op, torch still reading 0, got %d", p)
	}

	// 60 ticks after the last toggle, every toggle but that last one has
	// aged out of the trailing window, so the next attempt inverts normally
	// again.
	resumeTick := lastTick + burnoutWindowTicks
	worker.EnqueueLocal(Event{Kind: EventSignalRise, Pos: world.BlockPos{0, 64, 0}, Tick: resumeTick, Node: torch})
	worker.Step(context.Background(), StepRequest{Tick: resumeTick, Budget: 32})
	if len(worker.graph.States[0].toggleLog) >= burnoutThreshold {
		t.Fatalf("expected the toggle log to have aged out by tick %d", resumeTick)
	}
	if p := worker.graph.States[0].Power; p != 15 {
		t.Fatalf("expected torch to resume normal inversion, got power %d", p)
	}
}

func TestRepeaterLockedByPerpendicularNeighbour(t *testing.T) {
	proc := NewGraphProcessor(nil, nil)
	worker, stop := newStepper(proc)
	defer stop()

	b := NewGraphBuilder()
	rep := b.AddNode(world.BlockPos{0, 64, 0}, NodeRepeater, MakeRepeaterData(South, 1))
	blocker := b.AddNode(world.BlockPos{-1, 64, 0}, NodeRepeater, MakeRepeaterData(East, 1))
	b.Connect(rep, blocker, West)
	g := b.Build(nil)
	worker.UpdateGraph(g)
	worker.graph.States[1].Active = true

	worker.EnqueueLocal(Event{Kind: EventPowerChange, Pos: world.BlockPos{0, 64, 0}, Power: 15, Tick: 1, Node: rep})
	worker.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})

	if !worker.graph.States[0].Locked {
		t.Fatalf("expected repeater to be locked")
	}
	if worker.graph.States[0].PendingTick != 0 {
		t.Fatalf("expected locked repeater to ignore the input change")
	}
}

func TestRepeaterDelaysOutput(t *testing.T) {
	proc := NewGraphProcessor(nil, nil)
	worker, stop := newStepper(proc)
	defer stop()

	b := NewGraphBuilder()
	rep := b.AddNode(world.BlockPos{0, 64, 0}, NodeRepeater, MakeRepeaterData(East, 3))
	g := b.Build(nil)
	worker.UpdateGraph(g)

	worker.EnqueueLocal(Event{Kind: EventPowerChange, Pos: world.BlockPos{0, 64, 0}, Power: 15, Tick: 1, Node: rep})
	worker.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})
	if worker.graph.States[0].Active {
		t.Fatalf("expected repeater output unchanged before its delay elapses")
	}
	worker.Step(context.Background(), StepRequest{Tick: 4, Budget: 32})
	if !worker.graph.States[0].Active {
		t.Fatalf("expected repeater to flip on after its 3-tick delay")
	}
}

func TestComparatorCompareAndSubtractModes(t *testing.T) {
	build := func(subtract bool) (*ChunkWorker, func(), NodeID) {
		proc := NewGraphProcessor(nil, nil)
		worker, stop := newStepper(proc)
		b := NewGraphBuilder()
		cmp := b.AddNode(world.BlockPos{0, 64, 0}, NodeComparator, MakeComparatorData(South, subtract, false))
		rear := b.AddNode(world.BlockPos{0, 64, -1}, NodeWire, 0)
		west := b.AddNode(world.BlockPos{-1, 64, 0}, NodeWire, 0)
		east := b.AddNode(world.BlockPos{1, 64, 0}, NodeWire, 0)
		b.Connect(cmp, rear, North)
		b.Connect(cmp, west, West)
		b.Connect(cmp, east, East)
		g := b.Build(nil)
		worker.UpdateGraph(g)
		worker.graph.States[1].Power = 10
		worker.graph.States[2].Power = 4
		worker.graph.States[3].Power = 7
		return worker, stop, cmp
	}

	worker, stop, cmp := build(false)
	defer stop()
	worker.EnqueueLocal(Event{Kind: EventBlockUpdate, Pos: world.BlockPos{0, 64, 0}, Tick: 1, Node: cmp})
	worker.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})
	if p := worker.graph.States[0].Power; p != 10 {
		t.Fatalf("compare mode: expected 10, got %d", p)
	}

	worker2, stop2, cmp2 := build(true)
	defer stop2()
	worker2.EnqueueLocal(Event{Kind: EventBlockUpdate, Pos: world.BlockPos{0, 64, 0}, Tick: 1, Node: cmp2})
	worker2.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})
	if p := worker2.graph.States[0].Power; p != 3 {
		t.Fatalf("subtract mode: expected 3, got %d", p)
	}
}

func TestComparatorReadsContainerFullness(t *testing.T) {
	proc := NewGraphProcessor(nil, fakeContainerRegistry{used: 9, max: 27, ok: true})
	worker, stop := newStepper(proc)
	defer stop()

	b := NewGraphBuilder()
	cmp := b.AddNode(world.BlockPos{0, 64, 0}, NodeComparator, MakeComparatorData(South, false, true))
	g := b.Build(nil)
	worker.UpdateGraph(g)

	worker.EnqueueLocal(Event{Kind: EventBlockUpdate, Pos: world.BlockPos{0, 64, 0}, Tick: 1, Node: cmp})
	worker.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})

	// ceil(15*9/27) + 1 = 5+1 = 6
	if p := worker.graph.States[0].Power; p != 6 {
		t.Fatalf("expected container fullness reading 6, got %d", p)
	}
}

func TestPistonPushChainSucceeds(t *testing.T) {
	reg := fakePushRegistry{
		{1, 64, 0}: Pushable,
		{2, 64, 0}: Pushable,
		{3, 64, 0}: Air,
	}
	proc := NewGraphProcessor(reg, nil)
	worker, stop := newStepper(proc)
	defer stop()

	b := NewGraphBuilder()
	piston := b.AddNode(world.BlockPos{0, 64, 0}, NodePiston, MakePistonData(East, false))
	g := b.Build(nil)
	worker.UpdateGraph(g)

	worker.EnqueueLocal(Event{Kind: EventSignalRise, Pos: world.BlockPos{0, 64, 0}, Power: 15, Tick: 1, Node: piston})
	res := worker.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})

	if len(res.Outputs) != 1 {
		t.Fatalf("expected one output event, got %d", len(res.Outputs))
	}
	if len(res.Outputs[0].Chain) != 2 {
		t.Fatalf("expected a 2-block push chain, got %d", len(res.Outputs[0].Chain))
	}
	if res.Outputs[0].Chain[0] != (world.BlockPos{2, 64, 0}) {
		t.Fatalf("expected the far block to move first, got %v", res.Outputs[0].Chain[0])
	}
}

func TestPistonBlockedByBlockingNeighbour(t *testing.T) {
	reg := fakePushRegistry{{1, 64, 0}: Blocking}
	proc := NewGraphProcessor(reg, nil)
	worker, stop := newStepper(proc)
	defer stop()

	b := NewGraphBuilder()
	piston := b.AddNode(world.BlockPos{0, 64, 0}, NodePiston, MakePistonData(East, false))
	g := b.Build(nil)
	worker.UpdateGraph(g)

	worker.EnqueueLocal(Event{Kind: EventSignalRise, Pos: world.BlockPos{0, 64, 0}, Power: 15, Tick: 1, Node: piston})
	res := worker.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})

	if len(res.Outputs) != 0 {
		t.Fatalf("expected no output event when the push is blocked, got %d", len(res.Outputs))
	}
}

func TestPistonExceedsPushLimit(t *testing.T) {
	reg := make(fakePushRegistry)
	for i := 1; i <= pushLimit+2; i++ {
		reg[world.BlockPos{i, 64, 0}] = Pushable
	}
	proc := NewGraphProcessor(reg, nil)
	worker, stop := newStepper(proc)
	defer stop()

	b := NewGraphBuilder()
	piston := b.AddNode(world.BlockPos{0, 64, 0}, NodePiston, MakePistonData(East, false))
	g := b.Build(nil)
	worker.UpdateGraph(g)

	worker.EnqueueLocal(Event{Kind: EventSignalRise, Pos: world.BlockPos{0, 64, 0}, Power: 15, Tick: 1, Node: piston})
	res := worker.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})

	if len(res.Outputs) != 0 {
		t.Fatalf("expected the push to fail past the chain limit, got %d outputs", len(res.Outputs))
	}
}

func TestStickyPistonPullsOnRetract(t *testing.T) {
	reg := fakePushRegistry{{2, 64, 0}: Pushable}
	proc := NewGraphProcessor(reg, nil)
	worker, stop := newStepper(proc)
	defer stop()

	b := NewGraphBuilder()
	piston := b.AddNode(world.BlockPos{0, 64, 0}, NodePiston, MakePistonData(East, true))
	g := b.Build(nil)
	worker.UpdateGraph(g)
	worker.graph.States[0].Active = true

	worker.EnqueueLocal(Event{Kind: EventSignalFall, Pos: world.BlockPos{0, 64, 0}, Power: 0, Tick: 1, Node: piston})
	res := worker.Step(context.Background(), StepRequest{Tick: 1, Budget: 32})

	if len(res.Outputs) != 1 || len(res.Outputs[0].Chain) != 1 {
		t.Fatalf("expected the sticky piston to pull one block, got %+v", res.Outputs)
	}
	if res.Outputs[0].Chain[0] != (world.BlockPos{2, 64, 0}) {
		t.Fatalf("expected the pulled block to be two blocks ahead, got %v", res.Outputs[0].Chain[0])
	}
}
