package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// Console prints user-facing notices. Quiet suppresses info and success
// lines and the spinner; warnings and errors always print.
type Console struct {
	out   io.Writer
	quiet bool
}

// NewConsole writes notices to stderr.
func NewConsole(quiet bool) *Console {
	return &Console{out: os.Stderr, quiet: quiet}
}

// NewConsoleTo writes notices to w with colors disabled.
func NewConsoleTo(w io.Writer, quiet bool) *Console {
	pterm.DisableStyling()
	return &Console{out: w, quiet: quiet}
}

// Info prints an informational notice.
func (c *Console) Info(format string, a ...any) {
	if c.quiet {
		return
	}
	pterm.Info.WithWriter(c.out).Printfln(format, a...)
}

// Success prints a success notice.
func (c *Console) Success(format string, a ...any) {
	if c.quiet {
		return
	}
	pterm.Success.WithWriter(c.out).Printfln(format, a...)
}

// Warn prints a warning.
func (c *Console) Warn(format string, a ...any) {
	pterm.Warning.WithWriter(c.out).Printfln(format, a...)
}

// Error prints an error notice.
func (c *Console) Error(format string, a ...any) {
	pterm.Error.WithWriter(c.out).Printfln(format, a...)
}

// Spinner is a running progress indicator.
type Spinner struct {
	sp *pterm.SpinnerPrinter
}

// Start shows a spinner with msg. In quiet mode it returns a no-op spinner.
func (c *Console) Start(msg string) *Spinner {
	if c.quiet {
		return &Spinner{}
	}
	sp, err := pterm.DefaultSpinner.WithWriter(c.out).WithRemoveWhenDone(true).Start(msg)
	if err != nil {
		return &Spinner{}
	}
	return &Spinner{sp: sp}
}

// Stop removes the spinner.
func (s *Spinner) Stop() {
	if s.sp != nil {
		_ = s.sp.Stop()
	}
}

// Colorizers for inline amounts in plain output.
var (
	incomeColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	accentColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	warnColor   = color.New(color.FgYellow).SprintFunc()
)

// Income highlights an incoming amount.
func Income(v float64) string { return incomeColor(FormatMoney(v)) }

// Accent highlights a label.
func Accent(s string) string { return accentColor(s) }

// Warning highlights cautionary text.
func Warning(s string) string { return warnColor(s) }

// Println writes a line to stdout, indented like the tables.
func Println(a ...any) {
	fmt.Println(append([]any{" "}, a...)...)
}
