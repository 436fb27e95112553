// Package console provides the operator's interactive command-line surface:
// a cmd.Source that reads lines from stdin (or any io.Reader in tests),
// echoes command output through a structured logger, and offers prefix
// completion over the registered command table. Grounded on the teacher's
// server/console package shape (scanner loop for piped input, go-prompt for
// an interactive terminal, a history ring for the prompt).
package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/basaltcore/voxelserver/server/cmd"
)

const (
	promptPrefix      = "> "
	maxHistoryEntries = 128
)

// Console drives the operator command line: read a line, run it through the
// command dispatcher, report the result through log.
type Console struct {
	resolver cmd.SelectorResolver
	log      *slog.Logger
	reader   io.Reader
	history  []string
}

// New returns a Console reading from os.Stdin, reporting output through log.
func New(resolver cmd.SelectorResolver, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{resolver: resolver, log: log, reader: os.Stdin}
}

// WithReader swaps the input source, for driving the console from a test
// fixture instead of a real terminal.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run consumes commands until ctx is cancelled or the reader hits EOF. When
// the reader is anything other than os.Stdin it falls back to a plain line
// scanner instead of the interactive prompt.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	src := &source{log: c.log}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line, src)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	src := &source{log: c.log}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := prompt.Input(promptPrefix, c.complete,
			prompt.OptionTitle("Operator Console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(promptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line, src)
	}
}

func (c *Console) execute(line string, src *source) {
	if !strings.HasPrefix(line, "/") {
		line = "/" + line
	}
	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}
	out := cmd.ExecuteLine(src, line, c.resolver)
	for _, m := range out.Messages() {
		c.log.Info(m)
	}
	for _, e := range out.Errors() {
		c.log.Error(e)
	}
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	word := strings.TrimPrefix(doc.GetWordBeforeCursor(), "/")
	names := cmd.Complete(word)
	suggestions := make([]prompt.Suggest, 0, len(names))
	for _, name := range names {
		suggestions = append(suggestions, prompt.Suggest{Text: name})
	}
	return suggestions
}

// source is the cmd.Source the console executes commands as: full operator
// permission, output routed through the console's logger.
type source struct {
	log *slog.Logger
}

func (s *source) Name() string               { return "CONSOLE" }
func (s *source) PermissionLevel() cmd.Level { return cmd.LevelOwner }
func (s *source) SendCommandOutput(o *cmd.Output) {
	for _, m := range o.Messages() {
		s.log.Info(m)
	}
	for _, e := range o.Errors() {
		s.log.Error(e)
	}
}
