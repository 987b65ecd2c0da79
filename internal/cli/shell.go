package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/calvinalkan/staticslot/internal/snapshot"
	"github.com/calvinalkan/staticslot/pkg/staticslot"
)

// Shell errors.
var (
	ErrUnknownStatement = errors.New("unknown statement")
	ErrMissingArgument  = errors.New("missing argument")
	ErrUnexpectedArg    = errors.New("unexpected argument")
)

// LockTimeout bounds how long save and load wait for the snapshot lock.
const LockTimeout = 5 * time.Second

const emptyMarker = "(empty)"

// session is the slot every shell started by Run operates on.
var session staticslot.Slot[string]

// statements lists the shell keywords, used for help and completion.
var statements = []string{
	"get", "set", "swap", "take", "clear", "empty",
	"with", "save", "load", "help", "exit", "quit",
}

// Shell interprets slot statements, one per line.
type Shell struct {
	slot         *staticslot.Slot[string]
	o            *IO
	log          *zap.Logger
	snapshotFile string
}

// NewShell returns a shell operating on slot. snapshotFile is the default
// path for save and load.
func NewShell(slot *staticslot.Slot[string], o *IO, log *zap.Logger, snapshotFile string) *Shell {
	return &Shell{slot: slot, o: o, log: log, snapshotFile: snapshotFile}
}

// Exec runs a single statement. It reports quit=true for exit and quit,
// including when they appear nested inside with.
func (sh *Shell) Exec(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}

	keyword, rest := cutWord(line)
	keyword = strings.ToLower(keyword)

	switch keyword {
	case "exit", "quit":
		return true, noArgs(keyword, rest)

	case "help", "?":
		err := noArgs(keyword, rest)
		if err == nil {
			sh.printHelp()
		}

		return false, err

	case "get":
		return false, sh.get(rest)

	case "empty":
		err := noArgs(keyword, rest)
		if err == nil {
			sh.o.Println(sh.slot.IsEmpty())
		}

		return false, err

	case "set":
		return false, sh.set(rest)

	case "swap":
		return false, sh.swap(rest)

	case "take":
		return false, sh.take(rest)

	case "clear":
		return false, sh.clear(rest)

	case "with":
		return sh.with(ctx, rest)

	case "save":
		return false, sh.save(ctx, rest)

	case "load":
		return false, sh.load(ctx, rest)

	default:
		return false, fmt.Errorf("%w: %s (type 'help' for statements)", ErrUnknownStatement, keyword)
	}
}

// RunScript executes every line read from r and stops at the first error
// or at exit. Errors carry the 1-based line number.
func (sh *Shell) RunScript(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		quit, err := sh.Exec(ctx, scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		if quit {
			return nil
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	return nil
}

func (sh *Shell) get(rest string) error {
	err := noArgs("get", rest)
	if err != nil {
		return err
	}

	if v, ok := sh.slot.Get(); ok {
		sh.o.Println(*v)
	} else {
		sh.o.Println(emptyMarker)
	}

	return nil
}

func (sh *Shell) set(value string) error {
	if value == "" {
		return fmt.Errorf("%w: set <value>", ErrMissingArgument)
	}

	sh.slot.Set(value)
	sh.logMutation("set", true, value)
	sh.o.Println("ok")

	return nil
}

func (sh *Shell) swap(value string) error {
	if value == "" {
		return fmt.Errorf("%w: swap <value>", ErrMissingArgument)
	}

	old, ok := sh.slot.Swap(value)
	sh.logMutation("swap", true, value)
	sh.printValue(old, ok)

	return nil
}

func (sh *Shell) take(rest string) error {
	err := noArgs("take", rest)
	if err != nil {
		return err
	}

	v, ok := sh.slot.Take()
	sh.logMutation("take", false, "")
	sh.printValue(v, ok)

	return nil
}

func (sh *Shell) clear(rest string) error {
	err := noArgs("clear", rest)
	if err != nil {
		return err
	}

	cleared := sh.slot.Clear()
	sh.logMutation("clear", false, "")
	sh.o.Println(cleared)

	return nil
}

type scopeResult struct {
	quit bool
	err  error
}

// with installs value for the duration of the nested statement. The
// previous content is restored afterwards even when the nested statement
// fails.
func (sh *Shell) with(ctx context.Context, rest string) (bool, error) {
	value, stmt := cutWord(rest)

	if value == "" || stmt == "" {
		return false, fmt.Errorf("%w: with <value> <statement>", ErrMissingArgument)
	}

	sh.logMutation("with", true, value)

	res := staticslot.WithResult(sh.slot, value, func() scopeResult {
		quit, err := sh.Exec(ctx, stmt)

		return scopeResult{quit: quit, err: err}
	})

	_, restored := sh.slot.Get()
	sh.log.Debug("slot scope restored", zap.String("op", "with"), zap.Bool("present", restored))

	return res.quit, res.err
}

func (sh *Shell) save(ctx context.Context, rest string) error {
	path, err := sh.snapshotPath(rest)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	err = snapshot.Save(ctx, path, sh.slot)
	if err != nil {
		return err
	}

	sh.log.Debug("snapshot saved", zap.String("path", path))
	sh.o.Println("saved", path)

	return nil
}

func (sh *Shell) load(ctx context.Context, rest string) error {
	path, err := sh.snapshotPath(rest)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	present, err := snapshot.Load(ctx, path, sh.slot)
	if err != nil {
		return err
	}

	value := ""
	if v, ok := sh.slot.Get(); ok {
		value = *v
	}

	sh.logMutation("load", present, value)

	if present {
		sh.o.Println("loaded", path)
	} else {
		sh.o.Println("loaded", path, emptyMarker)
	}

	return nil
}

func (sh *Shell) snapshotPath(rest string) (string, error) {
	if _, extra := cutWord(rest); extra != "" {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedArg, extra)
	}

	if rest != "" {
		return rest, nil
	}

	if sh.snapshotFile == "" {
		return "", fmt.Errorf("%w: no path given and no snapshot_file configured", ErrMissingArgument)
	}

	return sh.snapshotFile, nil
}

func (sh *Shell) printValue(v string, ok bool) {
	if ok {
		sh.o.Println(v)
	} else {
		sh.o.Println(emptyMarker)
	}
}

func (sh *Shell) logMutation(op string, present bool, value string) {
	sh.log.Debug("slot mutated",
		zap.String("op", op),
		zap.Bool("present", present),
		zap.String("value", value),
	)
}

func (sh *Shell) printHelp() {
	sh.o.Println("Statements:")
	sh.o.Println("  get                        Print the value or (empty)")
	sh.o.Println("  set <value>                Replace the value")
	sh.o.Println("  swap <value>               Replace the value, print the previous one")
	sh.o.Println("  take                       Remove and print the value")
	sh.o.Println("  clear                      Remove the value, print whether one existed")
	sh.o.Println("  empty                      Print whether the slot is empty")
	sh.o.Println("  with <value> <statement>   Run statement with value installed, then restore")
	sh.o.Println("  save [path]                Write the slot to a snapshot file")
	sh.o.Println("  load [path]                Replace the slot from a snapshot file")
	sh.o.Println("  help                       Show this help")
	sh.o.Println("  exit / quit                Stop")
	sh.o.Println()
	sh.o.Println("Lines starting with # are ignored.")
}

// cutWord splits s at the first whitespace run into its first word and the
// trimmed remainder.
func cutWord(s string) (string, string) {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}

	return s[:idx], strings.TrimSpace(s[idx:])
}

func noArgs(keyword, rest string) error {
	if rest != "" {
		return fmt.Errorf("%w: %s takes no arguments", ErrUnexpectedArg, keyword)
	}

	return nil
}
