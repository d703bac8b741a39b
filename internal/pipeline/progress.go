package pipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// redrawEvery limits how often the status line is rewritten.
const redrawEvery = 100 * time.Millisecond

// Progress reports merged work. It is only touched by the reducer goroutine
// and a nil *Progress ignores all calls.
type Progress struct {
	w     io.Writer
	live  bool // rewrite a status line with \r
	quiet bool
	width int

	start    time.Time
	lastDraw time.Time
	chunks   int64
	lines    int64
	bytes    int64

	now func() time.Time
}

// NewProgress reports to w. The status line is only drawn when w is a
// terminal; the completion summary is printed unless quiet is set.
func NewProgress(w io.Writer, quiet bool) *Progress {
	p := &Progress{w: w, quiet: quiet, now: time.Now}
	if f, ok := w.(*os.File); ok && !quiet {
		fd := f.Fd()
		p.live = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		if p.live {
			p.width = terminalWidth(fd)
		}
	}
	p.start = p.now()
	return p
}

// Update records one merged chunk.
func (p *Progress) Update(lines, bytes int64) {
	if p == nil {
		return
	}
	p.chunks++
	p.lines += lines
	p.bytes += bytes
	if !p.live {
		return
	}
	now := p.now()
	if now.Sub(p.lastDraw) < redrawEvery {
		return
	}
	p.lastDraw = now
	fmt.Fprint(p.w, "\r"+p.fit(p.status(now)))
}

// Done clears the status line and prints the elapsed-time summary.
func (p *Progress) Done() {
	if p == nil || p.quiet {
		return
	}
	now := p.now()
	if p.live {
		fmt.Fprint(p.w, "\r"+strings.Repeat(" ", max(p.width-1, 0))+"\r")
	}
	fmt.Fprintln(p.w, p.status(now))
}

// Snapshot returns the totals merged so far.
func (p *Progress) Snapshot() (chunks, lines, bytes int64) {
	if p == nil {
		return 0, 0, 0
	}
	return p.chunks, p.lines, p.bytes
}

func (p *Progress) status(now time.Time) string {
	elapsed := now.Sub(p.start)
	rate := ""
	if secs := elapsed.Seconds(); secs > 0 {
		rate = fmt.Sprintf(" (%s/s)", humanize.Bytes(uint64(float64(p.bytes)/secs)))
	}
	return fmt.Sprintf("chunks: %s, rows: %s, read: %s%s, elapsed: %s",
		humanize.Comma(p.chunks),
		humanize.Comma(p.lines),
		humanize.Bytes(uint64(p.bytes)),
		rate,
		elapsed.Round(time.Millisecond),
	)
}

func (p *Progress) fit(s string) string {
	if p.width > 1 && len(s) >= p.width {
		return s[:p.width-1]
	}
	return s
}
