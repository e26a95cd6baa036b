package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

const (
	defaultBarWidth = 30
	minBarWidth     = 10
)

// progressPrinter renders scan events. On a terminal progress is a single
// line redrawn with a carriage return; elsewhere only log lines are printed.
type progressPrinter struct {
	mu       sync.Mutex
	w        io.Writer
	tty      bool
	width    int
	drawn    int
	quietLog bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	p := &progressPrinter{w: w, width: defaultBarWidth}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = true
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			// Leave room for the counters.
			if bw := cols - 30; bw < defaultBarWidth {
				p.width = max(bw, minBarWidth)
			}
		}
	}
	return p
}

// Handle is a domain.EventSink.
func (p *progressPrinter) Handle(e domain.ScanEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case domain.EventProgress:
		if p.tty {
			p.clear()
			line := renderBar(e, p.width)
			fmt.Fprint(p.w, line)
			p.drawn = len(line)
		}
	case domain.EventLog:
		if p.quietLog && e.Level == domain.LevelInfo {
			return
		}
		p.clear()
		fmt.Fprintln(p.w, formatLog(e))
	case domain.EventFinished:
		if p.drawn > 0 {
			fmt.Fprintln(p.w)
			p.drawn = 0
		}
	}
}

// clear erases the progress line so a log line can be printed.
func (p *progressPrinter) clear() {
	if p.drawn == 0 {
		return
	}
	fmt.Fprint(p.w, "\r"+strings.Repeat(" ", p.drawn)+"\r")
	p.drawn = 0
}

func renderBar(e domain.ScanEvent, width int) string {
	frac := e.Fraction()
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return fmt.Sprintf("[%s%s] %d/%d (%3.0f%%)",
		strings.Repeat("#", filled), strings.Repeat("-", width-filled),
		e.Processed, e.Total, frac*100)
}

func formatLog(e domain.ScanEvent) string {
	prefix := ""
	switch e.Level {
	case domain.LevelWarn:
		prefix = "warning: "
	case domain.LevelError:
		prefix = "error: "
	}
	if e.Path == "" {
		return prefix + e.Message
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Path, e.Message)
}
