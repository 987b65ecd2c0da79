package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calvinalkan/staticslot/pkg/staticslot"
)

// scriptedPrompter replays lines and then returns end.
type scriptedPrompter struct {
	lines   []string
	end     error
	prompts int
	history []string
}

func (p *scriptedPrompter) Prompt(string) (string, error) {
	p.prompts++

	if len(p.lines) == 0 {
		return "", p.end
	}

	line := p.lines[0]
	p.lines = p.lines[1:]

	return line, nil
}

func (p *scriptedPrompter) AppendHistory(item string) {
	p.history = append(p.history, item)
}

func newTestREPL() (*REPL, *staticslot.Slot[string], *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer

	o := NewIO(&out, &errOut)
	slot := &staticslot.Slot[string]{}

	return &REPL{
		shell:  NewShell(slot, o, zap.NewNop(), ""),
		o:      o,
		prompt: "test> ",
	}, slot, &out, &errOut
}

func Test_REPL_Continues_When_Statement_Fails(t *testing.T) {
	t.Parallel()

	r, slot, out, errOut := newTestREPL()
	p := &scriptedPrompter{lines: []string{"set a", "  bogus  ", "", "get"}, end: io.EOF}

	require.NoError(t, r.loop(context.Background(), p))

	assert.Equal(t, "ok\na\n\nBye!\n", out.String())
	AssertContains(t, errOut.String(), "unknown statement")
	assert.Equal(t, []string{"set a", "bogus", "get"}, p.history, "blank lines are not recorded")

	got, ok := slot.Get()
	require.True(t, ok)
	assert.Equal(t, "a", *got)
}

func Test_REPL_Stops_When_Exit_Entered(t *testing.T) {
	t.Parallel()

	r, slot, out, _ := newTestREPL()
	p := &scriptedPrompter{lines: []string{"exit", "set a"}, end: io.EOF}

	require.NoError(t, r.loop(context.Background(), p))

	assert.Equal(t, "Bye!\n", out.String())
	assert.True(t, slot.IsEmpty(), "statements after exit must not run")
	assert.Equal(t, 1, p.prompts)
}

func Test_REPL_Stops_Without_Error_When_Prompt_Aborted(t *testing.T) {
	t.Parallel()

	r, _, _, _ := newTestREPL()

	require.NoError(t, r.loop(context.Background(), &scriptedPrompter{end: liner.ErrPromptAborted}))
}

func Test_REPL_Returns_Error_When_Prompt_Fails(t *testing.T) {
	t.Parallel()

	r, _, _, _ := newTestREPL()
	errBroken := errors.New("terminal gone")

	err := r.loop(context.Background(), &scriptedPrompter{end: errBroken})
	require.ErrorIs(t, err, errBroken)
}

func Test_REPL_Stops_Before_Prompting_When_Context_Canceled(t *testing.T) {
	t.Parallel()

	r, _, _, _ := newTestREPL()
	p := &scriptedPrompter{lines: []string{"set a"}, end: io.EOF}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, r.loop(ctx, p))
	assert.Equal(t, 0, p.prompts)
}

func Test_Complete_Returns_Statements_When_At_Statement_Position(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		line string
		want []string
	}{
		{line: "s", want: []string{"set", "swap", "save"}},
		{line: "G", want: []string{"get"}},
		{line: "e", want: []string{"empty", "exit"}},
		{line: "with x s", want: []string{"with x set", "with x swap", "with x save"}},
		{line: "with a with b ta", want: []string{"with a with b take"}},
		{line: "set x", want: nil},
		{line: "with ", want: nil},
		{line: "get a b", want: nil},
		{line: "zzz", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, complete(tc.line))
		})
	}
}

func Test_Complete_Returns_All_Statements_When_Line_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, statements, complete(""))
}
