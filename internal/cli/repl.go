package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/staticslot/internal/config"
)

// ReplCmd returns the repl command.
func ReplCmd(cfg *config.Config, log *zap.Logger) *Command {
	return &Command{
		Flags: flag.NewFlagSet("repl", flag.ContinueOnError),
		Usage: "repl",
		Short: "Start an interactive shell",
		Long: `Start an interactive shell on the slot. Statement errors are printed and
the shell keeps running. Ctrl-C, Ctrl-D or exit leave the shell.

The slot starts empty and is cleared when the shell exits.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			defer session.Clear()

			r := &REPL{
				shell:       NewShell(&session, o, log, cfg.SnapshotFile),
				o:           o,
				prompt:      cfg.Prompt,
				historyFile: cfg.HistoryFile,
			}

			return r.Run(ctx)
		},
	}
}

// prompter is the part of liner.State the loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// REPL is the interactive statement loop.
type REPL struct {
	shell       *Shell
	o           *IO
	prompt      string
	historyFile string
}

// Run starts the REPL on the terminal. History is read from and written
// back to historyFile when one is configured.
func (r *REPL) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	r.readHistory(line)

	r.o.Println("slotty - static slot shell")
	r.o.Println("Type 'help' for available statements.")
	r.o.Println()

	err := r.loop(ctx, line)

	r.writeHistory(line)

	return err
}

// loop reads statements until exit, EOF, Ctrl-C or ctx is done. Statement
// errors are printed and the loop continues.
func (r *REPL) loop(ctx context.Context, p prompter) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := p.Prompt(r.prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				r.o.Println()
				r.o.Println("Bye!")

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		p.AppendHistory(input)

		quit, err := r.shell.Exec(ctx, input)
		if err != nil {
			r.o.ErrPrintln("error:", err)
		}

		if quit {
			r.o.Println("Bye!")

			return nil
		}
	}
}

func (r *REPL) readHistory(line *liner.State) {
	if r.historyFile == "" {
		return
	}

	f, err := os.Open(r.historyFile)
	if err != nil {
		return
	}

	defer f.Close()

	_, _ = line.ReadHistory(f)
}

func (r *REPL) writeHistory(line *liner.State) {
	if r.historyFile == "" {
		return
	}

	f, err := os.Create(r.historyFile)
	if err != nil {
		r.o.Warn("cannot write history file "+r.historyFile, "set history_file to a writable path")

		return
	}

	defer f.Close()

	_, err = line.WriteHistory(f)
	if err != nil {
		r.o.Warn("cannot write history file "+r.historyFile, err.Error())
	}
}

// complete provides tab completion for statement keywords. A word is
// completed at the start of the line or after any chain of "with <value>".
func complete(line string) []string {
	idx := strings.LastIndex(line, " ")
	prefix, word := line[:idx+1], line[idx+1:]

	if !statementPosition(strings.Fields(prefix)) {
		return nil
	}

	var completions []string

	lower := strings.ToLower(word)
	for _, stmt := range statements {
		if strings.HasPrefix(stmt, lower) {
			completions = append(completions, prefix+stmt)
		}
	}

	return completions
}

func statementPosition(done []string) bool {
	if len(done)%2 != 0 {
		return false
	}

	for i := 0; i < len(done); i += 2 {
		if strings.ToLower(done[i]) != "with" {
			return false
		}
	}

	return true
}
