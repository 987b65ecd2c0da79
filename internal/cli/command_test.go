package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func Test_IO_Prints_Warnings_Before_Output_And_At_Finish_When_Warned(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := NewIO(&out, &errOut)
	o.Warn("stale file", "delete it")
	o.Println("result")

	assert.Equal(t, 1, o.Finish())
	assert.Equal(t, "result\n", out.String())
	assert.Equal(t, "warning: stale file: delete it\nwarning: stale file: delete it\n", errOut.String())
}

func Test_IO_Returns_Zero_When_No_Warnings(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	o := NewIO(&out, &errOut)
	o.Printf("%d\n", 7)

	assert.Equal(t, 0, o.Finish())
	assert.Empty(t, errOut.String())
}

func Test_Command_Run_Returns_Exit_Code_When_Parsed_Or_Failed(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	newCmd := func() *Command {
		flags := flag.NewFlagSet("demo", flag.ContinueOnError)
		fail := flags.Bool("fail", false, "Fail on purpose")

		return &Command{
			Flags: flags,
			Usage: "demo [flags]",
			Short: "Demo command",
			Exec: func(_ context.Context, o *IO, args []string) error {
				if *fail {
					return errBoom
				}

				o.Println(args)

				return nil
			},
		}
	}

	testCases := []struct {
		name       string
		args       []string
		wantCode   int
		wantOut    string
		wantErrOut string
	}{
		{name: "Args", args: []string{"a", "b"}, wantCode: 0, wantOut: "[a b]"},
		{name: "Help", args: []string{"--help"}, wantCode: 0, wantOut: "--fail"},
		{name: "ExecError", args: []string{"--fail"}, wantCode: 1, wantErrOut: "error: boom"},
		{name: "UnknownFlag", args: []string{"--nope"}, wantCode: 1, wantErrOut: "unknown flag: --nope"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var out, errOut bytes.Buffer

			code := newCmd().Run(context.Background(), NewIO(&out, &errOut), tc.args)

			assert.Equal(t, tc.wantCode, code)
			AssertContains(t, out.String(), tc.wantOut)
			AssertContains(t, errOut.String(), tc.wantErrOut)
		})
	}
}

func Test_Command_Run_Accepts_Args_When_Flags_Nil(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	cmd := &Command{
		Usage: "bare",
		Exec: func(_ context.Context, o *IO, args []string) error {
			o.Println(len(args))

			return nil
		},
	}

	assert.Equal(t, 0, cmd.Run(context.Background(), NewIO(&out, &out), []string{"x"}))
	assert.Equal(t, "1\n", out.String())
}
