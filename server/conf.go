package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/basaltcore/voxelserver/server/playerchunk"
	"github.com/basaltcore/voxelserver/server/world"
	"github.com/basaltcore/voxelserver/server/world/redstone"
)

// Overworld is the default dimension every Server creates.
var Overworld = world.Dimension{Name: "overworld", MinY: 0, MaxY: world.MaxHeight}

// Config collects the tunables a Server is constructed with, modeled on
// dm-vev-adamant/server.Config and loadable from a TOML file in place of
// that teacher's resource-pack-heavy configuration surface (§2).
type Config struct {
	Log *slog.Logger `toml:"-"`
	// Name identifies the server in logs and the player list.
	Name string `toml:"name"`
	// Seed is the generation seed used by every dimension that doesn't
	// override it.
	Seed int64 `toml:"seed"`
	// TickIntervalMillis is the nominal tick length; 50 matches vanilla.
	TickIntervalMillis int `toml:"tick_interval_millis"`
	// MinViewRadius/MaxViewRadius bound a player's requested view distance
	// (§4.3), in chunks.
	MinViewRadius int32 `toml:"min_view_radius"`
	MaxViewRadius int32 `toml:"max_view_radius"`
	// RandomTickSpeed seeds the "randomTickSpeed" game rule (§6) for every
	// dimension created by this Config.
	RandomTickSpeed int `toml:"random_tick_speed"`
	// SpawnProtectionRadius is loaded from the config file, but nothing in
	// the server reads it: spawner.Search's world-spawn exclusion uses its
	// own fixed 24-block radius.
	SpawnProtectionRadius int `toml:"spawn_protection_radius"`
	// Redstone configures the per-dimension redstone execution system
	// (§4.8).
	Redstone redstone.Config `toml:"-"`
	// Dimensions lists every dimension this Server creates at startup. Left
	// empty, only Overworld is created.
	Dimensions []world.Dimension `toml:"-"`
}

// DefaultConfig returns the configuration a Server starts with when no file
// is supplied.
func DefaultConfig() Config {
	return Config{
		Name:                  "Voxel Server",
		TickIntervalMillis:    50,
		MinViewRadius:         playerchunk.MinViewRadius,
		MaxViewRadius:         playerchunk.MaxViewRadius,
		RandomTickSpeed:       3,
		SpawnProtectionRadius: 16,
		Redstone:              redstone.Config{Enabled: true},
		Dimensions:            []world.Dimension{Overworld},
	}
}

// LoadConfig reads and parses a TOML configuration file at path, starting
// from DefaultConfig and overlaying whatever the file sets.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	conf := DefaultConfig()
	if err := toml.Unmarshal(data, &conf); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return conf, nil
}

// New builds a Server from conf, creating every configured dimension and
// registering the §6 built-in commands against it.
func (conf Config) New() *Server {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Name == "" {
		conf.Name = "Voxel Server"
	}
	if conf.MaxViewRadius == 0 {
		conf = mergeViewRadiusDefaults(conf)
	}
	if len(conf.Dimensions) == 0 {
		conf.Dimensions = []world.Dimension{Overworld}
	}
	return newServer(conf)
}

func mergeViewRadiusDefaults(conf Config) Config {
	conf.MinViewRadius = playerchunk.MinViewRadius
	conf.MaxViewRadius = playerchunk.MaxViewRadius
	return conf
}
