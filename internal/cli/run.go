package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/calvinalkan/staticslot/internal/config"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal received on it cancels the running command.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("slotty", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{}) // discard pflag output

	var (
		flagCwd          = globals.StringP("cwd", "C", "", "Run as if started in `dir`")
		flagConfig       = globals.StringP("config", "c", "", "Use specified config `file`")
		flagPrompt       = globals.String("prompt", "", "Override the REPL prompt")
		flagSnapshotFile = globals.String("snapshot-file", "", "Override the default snapshot `path`")
		flagVerbose      = globals.BoolP("verbose", "v", false, "Log slot operations to stderr")
		flagHelp         = globals.BoolP("help", "h", false, "Show help")
	)

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals)

		return 1
	}

	rest := globals.Args()
	if *flagHelp || len(rest) == 0 {
		printUsage(out, globals)

		return 0
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride:      *flagCwd,
		ConfigPath:           *flagConfig,
		PromptOverride:       *flagPrompt,
		SnapshotFileOverride: *flagSnapshotFile,
		Env:                  env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	log := newLogger(errOut, *flagVerbose)
	defer func() { _ = log.Sync() }()

	commands := allCommands(&cfg, in, log)

	cmd, ok := commands[rest[0]]
	if !ok {
		fprintln(errOut, "error: unknown command:", rest[0])
		printUsage(errOut, globals)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	log.Debug("running command", zap.String("command", cmd.Name()), zap.String("cwd", cfg.EffectiveCwd))

	return cmd.Run(ctx, NewIO(out, errOut), rest[1:])
}

func allCommands(cfg *config.Config, in io.Reader, log *zap.Logger) map[string]*Command {
	list := commandList(cfg, in, log)

	commands := make(map[string]*Command, len(list))
	for _, cmd := range list {
		commands[cmd.Name()] = cmd
	}

	return commands
}

func commandList(cfg *config.Config, in io.Reader, log *zap.Logger) []*Command {
	return []*Command{
		ReplCmd(cfg, log),
		ExecCmd(cfg, in, log),
		PrintConfigCmd(cfg),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet) {
	fprintln(w, `slotty - shell around a process-wide static slot

Usage: slotty [options] <command> [args]

Options:`)

	var buf strings.Builder

	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})

	_, _ = fmt.Fprint(w, buf.String())

	fprintln(w)
	fprintln(w, "Commands:")

	for _, cmd := range commandList(&config.Config{}, nil, zap.NewNop()) {
		fprintln(w, cmd.HelpLine())
	}
}
