package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/staticslot/internal/config"
	"github.com/calvinalkan/staticslot/internal/snapshot"
)

var errNoInput = errors.New("no input: pass a file or pipe statements on stdin")

// ExecCmd returns the exec command.
func ExecCmd(cfg *config.Config, in io.Reader, log *zap.Logger) *Command {
	flags := flag.NewFlagSet("exec", flag.ContinueOnError)
	load := flags.Bool("load", false, "Load the snapshot file before the first statement")
	save := flags.Bool("save", false, "Save the slot to the snapshot file after the last statement")

	return &Command{
		Flags: flags,
		Usage: "exec [flags] [file]",
		Short: "Run statements from a file or stdin",
		Long: `Run shell statements, one per line, from file or from stdin when no file
is given. Execution stops at the first failing statement or at exit.

The slot starts empty and is cleared when exec returns.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execScript(ctx, o, cfg, in, log, args, *load, *save)
		},
	}
}

func execScript(
	ctx context.Context,
	o *IO,
	cfg *config.Config,
	in io.Reader,
	log *zap.Logger,
	args []string,
	load, save bool,
) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: %v", ErrUnexpectedArg, args[1:])
	}

	src := in

	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0]) //nolint:gosec // script path is user input
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}

		defer f.Close()

		src = f
	}

	if src == nil {
		return errNoInput
	}

	defer session.Clear()

	sh := NewShell(&session, o, log, cfg.SnapshotFile)

	if load {
		loadCtx, cancel := context.WithTimeout(ctx, LockTimeout)
		_, err := snapshot.Load(loadCtx, cfg.SnapshotFile, &session)

		cancel()

		if err != nil && !errors.Is(err, snapshot.ErrNotFound) {
			return err
		}

		if errors.Is(err, snapshot.ErrNotFound) {
			o.Warn("no snapshot at "+cfg.SnapshotFile, "run with --save first or drop --load")
		}
	}

	err := sh.RunScript(ctx, src)
	if err != nil {
		return err
	}

	if save {
		saveCtx, cancel := context.WithTimeout(ctx, LockTimeout)
		defer cancel()

		return snapshot.Save(saveCtx, cfg.SnapshotFile, &session)
	}

	return nil
}
