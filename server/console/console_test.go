package console

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/basaltcore/voxelserver/server/cmd"
	"github.com/basaltcore/voxelserver/server/world"
)

type fakeAdapter struct {
	mu      sync.Mutex
	stopped bool
	rules   *world.GameRules
}

func (a *fakeAdapter) Stop() error                     { a.mu.Lock(); defer a.mu.Unlock(); a.stopped = true; return nil }
func (a *fakeAdapter) WorldTime() int64                { return 0 }
func (a *fakeAdapter) SetWorldTime(int64)              {}
func (a *fakeAdapter) Weather() string                 { return "clear" }
func (a *fakeAdapter) SetWeather(string)               {}
func (a *fakeAdapter) Seed() int64                     { return 42 }
func (a *fakeAdapter) PlayerNames() []string           { return nil }
func (a *fakeAdapter) Kick(string, string) bool        { return false }
func (a *fakeAdapter) SetGamemode(string, string) bool { return false }
func (a *fakeAdapter) SetDifficulty(string) bool       { return false }
func (a *fakeAdapter) Rules() *world.GameRules         { return a.rules }

type noSelectors struct{}

func (noSelectors) AllPlayers() []string          { return nil }
func (noSelectors) NearestPlayer() (string, bool) { return "", false }
func (noSelectors) RandomPlayer() (string, bool)  { return "", false }
func (noSelectors) Entities() []string            { return nil }

func withRegistry(t *testing.T) *fakeAdapter {
	t.Helper()
	a := &fakeAdapter{rules: world.DefaultGameRules()}
	cmd.RegisterBuiltins(a)
	return a
}

func TestRunScannerExecutesPipedCommands(t *testing.T) {
	a := withRegistry(t)
	r := strings.NewReader("/stop\n")
	c := New(noSelectors{}, slog.New(slog.NewTextHandler(io.Discard, nil))).WithReader(r)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.Run(ctx)

	if !a.stopped {
		t.Fatalf("expected /stop to have run")
	}
}

func TestExecuteAddsLeadingSlash(t *testing.T) {
	withRegistry(t)
	c := New(noSelectors{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.execute("seed", &source{log: c.log})
	if len(c.history) != 1 || c.history[0] != "/seed" {
		t.Fatalf("history = %v, want a single leading-slash entry", c.history)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	withRegistry(t)
	c := New(noSelectors{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for i := 0; i < maxHistoryEntries+10; i++ {
		c.execute("seed", &source{log: c.log})
	}
	if len(c.history) != maxHistoryEntries {
		t.Fatalf("history length = %d, want capped at %d", len(c.history), maxHistoryEntries)
	}
}
