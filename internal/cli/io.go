package cli

import (
	"fmt"
	"io"
)

// IO is where a command writes. Regular output goes to out; errors and
// warnings go to errOut.
//
// Warnings are deferred: they are printed once before the first line of
// regular output and once more by Finish, and any warning turns the exit
// code into 1.
type IO struct {
	out    io.Writer
	errOut io.Writer

	warnings      []string
	warnedUpfront bool
}

// NewIO returns an IO writing to out and errOut.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a problem and the action that resolves it.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, issue+": "+action)
}

// Println writes a line to out.
func (o *IO) Println(a ...any) {
	o.warnUpfront()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted text to out.
func (o *IO) Printf(format string, a ...any) {
	o.warnUpfront()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes a line to errOut.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Finish repeats the warnings at the end of the output and returns the
// exit code of a command that did not fail.
func (o *IO) Finish() int {
	o.warnUpfront()
	o.printWarnings()

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) warnUpfront() {
	if o.warnedUpfront || len(o.warnings) == 0 {
		return
	}

	o.warnedUpfront = true
	o.printWarnings()
}

func (o *IO) printWarnings() {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}
}
