package report

import (
	"fmt"
	"io"
	"os"
)

const consoleRule = "─────────────────────────────────────────────────────────────"

// ConsoleSink renders a live axis table on a terminal, one redraw per cycle:
// per axis the raw, smoothed and mapped values plus the distance from the last
// accepted output. Observational only; it never feeds back into the pipeline.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a console sink writing to w. A nil writer defaults
// to stdout.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{w: w}
}

// Send redraws the table with the frame's per-axis detail.
func (c *ConsoleSink) Send(f Frame) error {
	// Clear screen and home the cursor so the table redraws in place.
	fmt.Fprint(c.w, "\033[2J\033[H")
	fmt.Fprintln(c.w, consoleRule)
	fmt.Fprintln(c.w, "  Axis          Raw   Smoothed   Mapped   ΔMapped   Out")
	fmt.Fprintln(c.w, consoleRule)

	for _, r := range f.Detail {
		fmt.Fprintf(c.w, "  %-12s %5d   %5d      %5d     %4d   %5d\n",
			r.Name, r.Raw, r.Smoothed, r.Mapped, r.Delta, r.Output)
	}

	fmt.Fprintln(c.w, consoleRule)
	fmt.Fprintf(c.w, "  Buttons: %08x\n", f.Buttons)
	return nil
}

// Close is a no-op.
func (c *ConsoleSink) Close() error {
	return nil
}
