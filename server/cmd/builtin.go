package cmd

import (
	"strconv"
	"strings"

	"github.com/basaltcore/voxelserver/server/world"
)

// Adapter is the subset of server-level operations the built-in commands
// need, mirroring the teacher's builtin.serverAdapter — a narrow interface
// so this package never imports the top-level server package.
type Adapter interface {
	Stop() error
	WorldTime() int64
	SetWorldTime(int64)
	Weather() string
	SetWeather(string)
	Seed() int64
	PlayerNames() []string
	Kick(name, reason string) bool
	SetGamemode(name, mode string) bool
	SetDifficulty(name string) bool
	Rules() *world.GameRules
}

type handlerFunc func(src Source, out *Output, args []string)

func (f handlerFunc) Run(src Source, out *Output, args []string) { f(src, out, args) }

// RegisterBuiltins registers the §6 built-in command table against a.
func RegisterBuiltins(a Adapter) {
	Register(&Command{Name: "help", Description: "Lists available commands.", Permission: LevelAll, Handler: handlerFunc(helpHandler)})
	Register(&Command{Name: "stop", Description: "Stops the server.", Permission: LevelOwner, Handler: handlerFunc(stopHandler(a))})
	Register(&Command{Name: "time", Description: "Queries or changes the world time.", Permission: LevelAdmin, Handler: handlerFunc(timeHandler(a))})
	Register(&Command{Name: "gamemode", Description: "Changes a player's gamemode.", Permission: LevelAdmin, Handler: handlerFunc(gamemodeHandler(a))})
	Register(&Command{Name: "difficulty", Description: "Changes the world difficulty.", Permission: LevelAdmin, Handler: handlerFunc(difficultyHandler(a))})
	Register(&Command{Name: "kill", Description: "Kills an entity.", Permission: LevelGameplay, Handler: handlerFunc(notImplemented("kill"))})
	Register(&Command{Name: "weather", Description: "Changes the weather.", Permission: LevelAdmin, Handler: handlerFunc(weatherHandler(a))})
	Register(&Command{Name: "xp", Description: "Grants experience to a player.", Permission: LevelAdmin, Handler: handlerFunc(notImplemented("xp"))})
	Register(&Command{Name: "tp", Description: "Teleports a player.", Permission: LevelGameplay, Handler: handlerFunc(notImplemented("tp"))})
	Register(&Command{Name: "give", Description: "Gives an item to a player.", Permission: LevelAdmin, Handler: handlerFunc(notImplemented("give"))})
	Register(&Command{Name: "say", Description: "Broadcasts a message as the server.", Permission: LevelModerate, Handler: handlerFunc(sayHandler)})
	Register(&Command{Name: "gamerule", Description: "Queries or sets a game rule.", Permission: LevelAdmin, Handler: handlerFunc(gameruleHandler(a))})
	Register(&Command{Name: "setblock", Description: "Places a block.", Permission: LevelAdmin, Handler: handlerFunc(notImplemented("setblock"))})
	Register(&Command{Name: "summon", Description: "Summons an entity.", Permission: LevelAdmin, Handler: handlerFunc(notImplemented("summon"))})
	Register(&Command{Name: "seed", Description: "Displays the world seed.", Permission: LevelAll, Handler: handlerFunc(seedHandler(a))})
	Register(&Command{Name: "list", Description: "Lists connected players.", Permission: LevelAll, Handler: handlerFunc(listHandler(a))})
	Register(&Command{Name: "op", Description: "Grants operator status.", Permission: LevelOwner, Handler: handlerFunc(notImplemented("op"))})
	Register(&Command{Name: "deop", Description: "Revokes operator status.", Permission: LevelOwner, Handler: handlerFunc(notImplemented("deop"))})
	Register(&Command{Name: "kick", Description: "Disconnects a player.", Permission: LevelAdmin, Handler: handlerFunc(kickHandler(a))})
	Register(&Command{Name: "ban", Description: "Bans a player.", Permission: LevelAdmin, Handler: handlerFunc(notImplemented("ban"))})
	Register(&Command{Name: "pardon", Description: "Unbans a player.", Permission: LevelAdmin, Handler: handlerFunc(notImplemented("pardon"))})
	Register(&Command{Name: "whitelist", Description: "Manages the server whitelist.", Permission: LevelOwner, Handler: handlerFunc(notImplemented("whitelist"))})
	Register(&Command{Name: "save-all", Description: "Forces every loaded chunk to save.", Permission: LevelOwner, Handler: handlerFunc(notImplemented("save-all"))})
}

func notImplemented(name string) handlerFunc {
	return func(_ Source, out *Output, _ []string) {
		out.Errorf("%s is not wired to a world in this build", name)
	}
}

func helpHandler(_ Source, out *Output, _ []string) {
	for _, c := range All() {
		out.Print("/%s - %s", c.Name, c.Description)
	}
}

func stopHandler(a Adapter) handlerFunc {
	return func(_ Source, out *Output, _ []string) {
		out.Print("Stopping server...")
		if err := a.Stop(); err != nil {
			out.Error(err)
		}
	}
}

func timeHandler(a Adapter) handlerFunc {
	return func(_ Source, out *Output, args []string) {
		if len(args) == 0 {
			out.Print("Time is %d", a.WorldTime())
			return
		}
		switch args[0] {
		case "set":
			if len(args) < 2 {
				out.Errorf("usage: /time set <value>")
				return
			}
			v, err := parseTimeValue(args[1])
			if err != nil {
				out.Error(err)
				return
			}
			a.SetWorldTime(v)
			out.Print("Set time to %d", v)
		case "add":
			if len(args) < 2 {
				out.Errorf("usage: /time add <value>")
				return
			}
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				out.Error(err)
				return
			}
			a.SetWorldTime(a.WorldTime() + n)
		case "query":
			out.Print("Time is %d", a.WorldTime())
		default:
			out.Errorf("unknown time subcommand %q", args[0])
		}
	}
}

func parseTimeValue(v string) (int64, error) {
	switch v {
	case "day":
		return 1000, nil
	case "night":
		return 13000, nil
	default:
		return strconv.ParseInt(v, 10, 64)
	}
}

func weatherHandler(a Adapter) handlerFunc {
	return func(_ Source, out *Output, args []string) {
		if len(args) == 0 {
			out.Print("Weather is %s", a.Weather())
			return
		}
		switch args[0] {
		case "clear", "rain", "thunder":
			a.SetWeather(args[0])
			out.Print("Set weather to %s", args[0])
		default:
			out.Errorf("unknown weather type %q", args[0])
		}
	}
}

func gamemodeHandler(a Adapter) handlerFunc {
	return func(_ Source, out *Output, args []string) {
		if len(args) < 2 {
			out.Errorf("usage: /gamemode <mode> <player>")
			return
		}
		if !a.SetGamemode(args[1], args[0]) {
			out.Errorf("player %q not found", args[1])
			return
		}
		out.Print("Set %s's gamemode to %s", args[1], args[0])
	}
}

func difficultyHandler(a Adapter) handlerFunc {
	return func(_ Source, out *Output, args []string) {
		if len(args) == 0 {
			out.Errorf("usage: /difficulty <level>")
			return
		}
		if !a.SetDifficulty(args[0]) {
			out.Errorf("unknown difficulty %q", args[0])
			return
		}
		out.Print("Set difficulty to %s", args[0])
	}
}

func seedHandler(a Adapter) handlerFunc {
	return func(_ Source, out *Output, _ []string) {
		out.Print("Seed: %d", a.Seed())
	}
}

func listHandler(a Adapter) handlerFunc {
	return func(_ Source, out *Output, _ []string) {
		names := a.PlayerNames()
		out.Print("There are %d player(s) online: %s", len(names), strings.Join(names, ", "))
	}
}

func kickHandler(a Adapter) handlerFunc {
	return func(_ Source, out *Output, args []string) {
		if len(args) == 0 {
			out.Errorf("usage: /kick <player> [reason]")
			return
		}
		reason := "Kicked by an operator."
		if len(args) > 1 {
			reason = strings.Join(args[1:], " ")
		}
		if !a.Kick(args[0], reason) {
			out.Errorf("player %q not found", args[0])
			return
		}
		out.Print("Kicked %s: %s", args[0], reason)
	}
}

func sayHandler(src Source, out *Output, args []string) {
	out.Print("[%s] %s", src.Name(), strings.Join(args, " "))
}

func gameruleHandler(a Adapter) handlerFunc {
	return func(_ Source, out *Output, args []string) {
		rules := a.Rules()
		if len(args) == 0 {
			out.Errorf("usage: /gamerule <name> [value]")
			return
		}
		if !knownRule(rules, args[0]) {
			out.Errorf("unknown game rule %q", args[0])
			return
		}
		if len(args) == 1 {
			out.Print("%s = %d", args[0], rules.Int(args[0]))
			return
		}
		switch args[1] {
		case "true":
			rules.Set(args[0], world.Bool(true))
		case "false":
			rules.Set(args[0], world.Bool(false))
		default:
			n, err := strconv.Atoi(args[1])
			if err != nil {
				out.Errorf("invalid game rule value %q", args[1])
				return
			}
			rules.Set(args[0], world.Int(n))
		}
		out.Print("%s set to %s", args[0], args[1])
	}
}

func knownRule(rules *world.GameRules, name string) bool {
	for _, n := range rules.Names() {
		if n == name {
			return true
		}
	}
	return false
}
