package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one slotty subcommand.
type Command struct {
	// Flags holds the subcommand's own flags. Nil means none.
	Flags *flag.FlagSet

	// Usage starts with the command name, e.g. "exec [flags] [file]".
	Usage string

	// Short is shown in the command list of the global usage.
	Short string

	// Long is shown by --help. Short is used when empty.
	Long string

	// Exec receives the arguments left after flag parsing.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine is the command's row in the global usage.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-22s %s", c.Usage, c.Short)
}

// PrintHelp writes the --help text for the command to stdout.
func (c *Command) PrintHelp(o *IO) {
	description := c.Long
	if description == "" {
		description = c.Short
	}

	o.Println("Usage: slotty", c.Usage)
	o.Println()
	o.Println(description)

	defaults := c.flagDefaults()
	if defaults != "" {
		o.Println()
		o.Println("Flags:")
		o.Printf("%s", defaults)
	}
}

// Run parses args, executes the command and returns the exit code.
// Parse and exec errors are printed to stderr.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	flags := c.flagSet()

	err := flags.Parse(args)

	switch {
	case errors.Is(err, flag.ErrHelp):
		c.PrintHelp(o)

		return 0
	case err != nil:
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)

		return 1
	}

	err = c.Exec(ctx, o, flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return o.Finish()
}

// flagSet returns the command's flags with pflag's own output silenced.
func (c *Command) flagSet() *flag.FlagSet {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}

	c.Flags.SetOutput(&strings.Builder{})

	return c.Flags
}

func (c *Command) flagDefaults() string {
	if c.Flags == nil || !c.Flags.HasFlags() {
		return ""
	}

	return c.Flags.FlagUsages()
}
