package cmd

import (
	"errors"
	"testing"

	"github.com/basaltcore/voxelserver/server/world"
)

type fakeSource struct {
	name  string
	level Level
	out   *Output
}

func (f *fakeSource) Name() string                { return f.name }
func (f *fakeSource) PermissionLevel() Level      { return f.level }
func (f *fakeSource) SendCommandOutput(o *Output) { f.out = o }

type fakeResolver struct {
	all []string
}

func (f fakeResolver) AllPlayers() []string          { return f.all }
func (f fakeResolver) NearestPlayer() (string, bool) { return "nearest", true }
func (f fakeResolver) RandomPlayer() (string, bool)  { return "random", true }
func (f fakeResolver) Entities() []string            { return []string{"zombie-1"} }

type fakeAdapter struct {
	stopped   bool
	worldTime int64
	weather   string
	seed      int64
	players   []string
	rules     *world.GameRules
}

func (a *fakeAdapter) Stop() error          { a.stopped = true; return nil }
func (a *fakeAdapter) WorldTime() int64     { return a.worldTime }
func (a *fakeAdapter) SetWorldTime(t int64) { a.worldTime = t }
func (a *fakeAdapter) Weather() string      { return a.weather }
func (a *fakeAdapter) SetWeather(w string)  { a.weather = w }
func (a *fakeAdapter) Seed() int64          { return a.seed }
func (a *fakeAdapter) PlayerNames() []string {
	return a.players
}
func (a *fakeAdapter) Kick(name, reason string) bool {
	for i, p := range a.players {
		if p == name {
			a.players = append(a.players[:i], a.players[i+1:]...)
			return true
		}
	}
	return false
}
func (a *fakeAdapter) SetGamemode(name, mode string) bool {
	for _, p := range a.players {
		if p == name {
			return true
		}
	}
	return false
}
func (a *fakeAdapter) SetDifficulty(name string) bool {
	switch name {
	case "peaceful", "easy", "normal", "hard":
		return true
	default:
		return false
	}
}
func (a *fakeAdapter) Rules() *world.GameRules { return a.rules }

func freshRegistry(t *testing.T) *fakeAdapter {
	t.Helper()
	registryMu.Lock()
	registry = map[string]*Command{}
	registryMu.Unlock()
	a := &fakeAdapter{rules: world.DefaultGameRules(), players: []string{"alice", "bob"}}
	RegisterBuiltins(a)
	return a
}

func TestExecuteLineRunsKnownCommand(t *testing.T) {
	a := freshRegistry(t)
	src := &fakeSource{name: "console", level: LevelOwner}
	out := ExecuteLine(src, "/seed", nil)
	if !out.Success() {
		t.Fatalf("unexpected errors: %v", out.Errors())
	}
}

func TestExecuteLineRejectsUnknownCommand(t *testing.T) {
	freshRegistry(t)
	src := &fakeSource{name: "console", level: LevelOwner}
	out := ExecuteLine(src, "/bogus", nil)
	if out.Success() {
		t.Fatalf("expected an error for an unknown command")
	}
}

func TestExecuteLineEnforcesPermission(t *testing.T) {
	freshRegistry(t)
	src := &fakeSource{name: "player1", level: LevelAll}
	out := ExecuteLine(src, "/stop", nil)
	if out.Success() {
		t.Fatalf("expected permission error for a LevelAll source running /stop")
	}
}

func TestStopCommandCallsAdapter(t *testing.T) {
	a := freshRegistry(t)
	src := &fakeSource{name: "console", level: LevelOwner}
	out := ExecuteLine(src, "/stop", nil)
	if !out.Success() {
		t.Fatalf("unexpected errors: %v", out.Errors())
	}
	if !a.stopped {
		t.Fatalf("expected Stop() to be called")
	}
}

func TestKickExpandsAtASelector(t *testing.T) {
	a := freshRegistry(t)
	src := &fakeSource{name: "console", level: LevelOwner}
	resolver := fakeResolver{all: []string{"alice"}}
	out := ExecuteLine(src, "/kick @a rude", resolver)
	if !out.Success() {
		t.Fatalf("unexpected errors: %v", out.Errors())
	}
	for _, p := range a.players {
		if p == "alice" {
			t.Fatalf("expected alice to be kicked")
		}
	}
}

func TestGameruleGetSet(t *testing.T) {
	a := freshRegistry(t)
	src := &fakeSource{name: "console", level: LevelOwner}

	out := ExecuteLine(src, "/gamerule keepInventory true", nil)
	if !out.Success() {
		t.Fatalf("unexpected errors: %v", out.Errors())
	}
	if !a.rules.Bool("keepInventory") {
		t.Fatalf("expected keepInventory to be set true")
	}

	out = ExecuteLine(src, "/gamerule keepInventory", nil)
	if len(out.Messages()) != 1 || out.Messages()[0] != "keepInventory = 1" {
		t.Fatalf("unexpected query output: %v", out.Messages())
	}
}

func TestGameruleRejectsUnknownName(t *testing.T) {
	freshRegistry(t)
	src := &fakeSource{name: "console", level: LevelOwner}
	out := ExecuteLine(src, "/gamerule notARule true", nil)
	if out.Success() {
		t.Fatalf("expected an error for an unknown game rule name")
	}
}

func TestCompletePrefixIsCaseInsensitive(t *testing.T) {
	freshRegistry(t)
	names := Complete("HE")
	found := false
	for _, n := range names {
		if n == "help" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected case-insensitive prefix match to find 'help', got %v", names)
	}
}

func TestOutputErrorWrapsErr(t *testing.T) {
	out := &Output{}
	out.Error(errors.New("boom"))
	if out.Success() {
		t.Fatalf("expected Success() to be false after Error()")
	}
}
