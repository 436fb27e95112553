// Package cmd implements the command dispatcher: a name-to-handler registry
// gated by permission level, case-insensitive prefix completion, and target
// selector expansion, grounded on the teacher's server/cmd package shape
// (Command/Source/Output, Register/ByName/ExecuteLine) and the built-in
// command table and selector syntax from spec §6.
package cmd

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Level is a permission level a command requires to run; 0 admits every
// player, 4 requires full operator.
type Level int

const (
	LevelAll      Level = 0
	LevelModerate Level = 1
	LevelGameplay Level = 2
	LevelAdmin    Level = 3
	LevelOwner    Level = 4
)

// Source is whoever issued a command: a player or the operator console.
type Source interface {
	Name() string
	PermissionLevel() Level
	SendCommandOutput(*Output)
}

// Output accumulates the messages produced by running a command, mirroring
// the teacher's Output type: successes and errors are tracked separately so
// a caller can tell whether anything went wrong.
type Output struct {
	messages []string
	errors   []string
}

// Print appends a plain informational line.
func (o *Output) Print(format string, a ...any) {
	o.messages = append(o.messages, fmt.Sprintf(format, a...))
}

// Error appends an error line.
func (o *Output) Error(err error) {
	o.errors = append(o.errors, err.Error())
}

// Errorf appends a formatted error line.
func (o *Output) Errorf(format string, a ...any) {
	o.errors = append(o.errors, fmt.Sprintf(format, a...))
}

// Messages returns every informational line printed.
func (o *Output) Messages() []string { return o.messages }

// Errors returns every error line printed.
func (o *Output) Errors() []string { return o.errors }

// Success reports whether nothing errored.
func (o *Output) Success() bool { return len(o.errors) == 0 }

// Handler is the behaviour a registered command runs.
type Handler interface {
	// Run executes the command with its whitespace-separated arguments
	// (every field after the command name, selectors already expanded).
	Run(src Source, out *Output, args []string)
}

// Command is a named, permission-gated, registered handler.
type Command struct {
	Name        string
	Description string
	Permission  Level
	Aliases     []string
	Handler     Handler
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Command{}
	matcher    = cases.Fold()
)

func normalize(name string) string { return matcher.String(name) }

// Register adds c to the dispatcher's registry under its name and aliases.
func Register(c *Command) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[normalize(c.Name)] = c
	for _, a := range c.Aliases {
		registry[normalize(a)] = c
	}
}

// ByName returns the command with an exact name or alias match.
func ByName(name string) (*Command, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[normalize(name)]
	return c, ok
}

// All returns every distinct registered command, for /help listings.
func All() []*Command {
	registryMu.RLock()
	defer registryMu.RUnlock()
	seen := map[*Command]bool{}
	out := make([]*Command, 0, len(registry))
	for _, c := range registry {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Complete returns every command name or alias whose name has prefix as a
// case-insensitive prefix, the completion behaviour spec §6 names.
func Complete(prefix string) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	normPrefix := normalize(prefix)
	var out []string
	for key, c := range registry {
		if strings.HasPrefix(key, normPrefix) {
			out = append(out, c.Name)
		}
	}
	return out
}

// ExecuteLine parses commandLine (including its leading slash), expands any
// target selectors against resolver, checks permission, and runs the
// matching command. Unknown commands or permission failures are reported on
// out rather than returned as an error, matching §7's "surfaced to the
// origin, do not abort the tick" rule for invalid-input faults.
func ExecuteLine(src Source, commandLine string, resolver SelectorResolver) *Output {
	out := &Output{}
	commandLine = strings.TrimSpace(commandLine)
	if commandLine == "" {
		return out
	}
	fields := strings.Fields(commandLine)
	name, ok := strings.CutPrefix(fields[0], "/")
	if !ok || name == "" {
		out.Errorf("commands.generic.notFound: %q", fields[0])
		return out
	}

	c, ok := ByName(name)
	if !ok {
		out.Errorf("commands.generic.notFound: %q", name)
		return out
	}
	if src.PermissionLevel() < c.Permission {
		out.Errorf("commands.generic.permission")
		return out
	}

	args := ExpandSelectors(fields[1:], resolver)
	c.Handler.Run(src, out, args)
	return out
}
