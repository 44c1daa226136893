// Package progress renders per-notifier status lines for interactive
// commands, with a spinner while a delivery is in flight.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Display prints one status line per step. Safe for concurrent use.
type Display struct {
	mu           sync.Mutex
	out          io.Writer
	capabilities TerminalCapabilities
	spinner      *spinner.Spinner
	symbols      ProgressSymbols
}

// NewDisplay creates a display writing to out.
func NewDisplay(caps TerminalCapabilities, out io.Writer) *Display {
	return &Display{
		out:          out,
		capabilities: caps,
		symbols:      SelectSymbols(caps),
	}
}

// Start shows msg with a spinner on a TTY, or prints it once otherwise.
func (d *Display) Start(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()

	if !d.capabilities.IsTTY {
		fmt.Fprintln(d.out, msg)
		return
	}
	writer := spinner.WithWriter(d.out)
	if f, ok := d.out.(*os.File); ok {
		writer = spinner.WithWriterFile(f)
	}
	d.spinner = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond, writer)
	d.spinner.Suffix = " " + msg
	d.spinner.Start()
}

// Succeed stops the spinner and prints a success line.
func (d *Display) Succeed(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	fmt.Fprintf(d.out, "%s %s\n", d.mark(d.symbols.Checkmark, color.FgGreen), msg)
}

// Fail stops the spinner and prints a failure line.
func (d *Display) Fail(msg string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	fmt.Fprintf(d.out, "%s %s\n", d.mark(d.symbols.Failure, color.FgRed), msg)
}

// Skip prints a line for a step that did not run.
func (d *Display) Skip(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	fmt.Fprintf(d.out, "%s %s\n", d.mark("-", color.Faint), msg)
}

// Stop stops the spinner without printing.
func (d *Display) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Display) stopLocked() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}

func (d *Display) mark(symbol string, attr color.Attribute) string {
	if !d.capabilities.SupportsColor {
		return symbol
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(symbol)
}
