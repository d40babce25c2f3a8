package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"frontscan/internal/scanner"
	"frontscan/pkg/domain"

	"golang.org/x/term"
)

const defaultWidth = 80

// Term redraws a single progress line, terminated by a carriage return. It is
// a no-op unless the output is a terminal.
type Term struct {
	w       io.Writer
	width   int
	enabled bool
	drawn   int
}

// NewTerm returns a Term drawing on f when f is a terminal.
func NewTerm(f *os.File) *Term {
	fd := int(f.Fd()) //nolint: gosec
	if !term.IsTerminal(fd) {
		return &Term{w: f}
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width = defaultWidth
	}

	return &Term{w: f, width: width, enabled: true}
}

// NewTermWriter returns a Term that always draws on w, truncating lines to width.
func NewTermWriter(w io.Writer, width int) *Term {
	if width <= 0 {
		width = defaultWidth
	}

	return &Term{w: w, width: width, enabled: true}
}

// Enabled reports whether the line is drawn at all.
func (t *Term) Enabled() bool { return t.enabled }

// Report implements scanner.Reporter.
func (t *Term) Report(p scanner.Progress) {
	if !t.enabled {
		return
	}

	line := fmt.Sprintf("[%d/%d] working %d  restricted %d  target %d  subdomain %d  not-edge %d  dns %d  %s",
		p.Completed, p.Total,
		p.Totals.Working, p.Totals.Restricted, p.Totals.TargetIssue,
		p.Totals.SubdomainIssue, p.Totals.NotEdgeNetwork, p.Totals.DNSFailure,
		p.Candidate)
	// leave the last column free so the terminal does not wrap
	if len(line) > t.width-1 {
		line = line[:t.width-1]
	}
	pad := max(t.drawn-len(line), 0)
	t.drawn = len(line)

	_, _ = fmt.Fprint(t.w, "\r"+line+strings.Repeat(" ", pad))
}

// Finished implements scanner.Lifecycle by ending the progress line.
func (t *Term) Finished(*domain.ScanResult) {
	if !t.enabled || t.drawn == 0 {
		return
	}
	t.drawn = 0

	_, _ = fmt.Fprintln(t.w)
}

// Started implements scanner.Lifecycle.
func (t *Term) Started(scanner.Session, int) {}
