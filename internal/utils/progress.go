package utils

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// Progress tracks entries processed out of a known total
type Progress struct {
	container *mpb.Progress
	bar       *mpb.Bar
	enabled   bool

	// read by the render goroutine
	entry atomic.Value
	bytes atomic.Int64
}

var descLength = 24

// NewProgress creates a progress bar on stderr when it is a terminal
func NewProgress(total int, enabled bool) *Progress {
	return newProgress(os.Stderr, total, enabled && isTerminal())
}

func newProgress(w io.Writer, total int, enabled bool) *Progress {
	p := &Progress{enabled: enabled}
	if !enabled {
		return p
	}

	// Add space before progress bar
	fmt.Fprintln(w)

	p.container = mpb.New(
		mpb.WithOutput(w),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	p.bar = p.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				name, _ := p.entry.Load().(string)
				return truncateLeft(name, descLength)
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.Name("  "),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				return Bytes(p.bytes.Load())
			}, decor.WC{W: 10}),
			decor.Name(" "),
			decor.Percentage(),
		),
	)

	return p
}

// Enabled reports whether the bar is being drawn
func (p *Progress) Enabled() bool {
	return p.enabled
}

// Start shows name as the entry being worked on
func (p *Progress) Start(name string) {
	if !p.enabled {
		return
	}
	p.entry.Store(name)
}

// Advance counts one finished entry and the bytes it produced
func (p *Progress) Advance(written int) {
	if !p.enabled || p.bar == nil {
		return
	}
	p.bytes.Add(int64(written))
	p.bar.Increment()
}

// Finish completes the progress bar and shuts down the container
func (p *Progress) Finish() {
	if !p.enabled || p.container == nil {
		return
	}

	// Entries left over after an abort would keep Wait blocked
	p.bar.SetTotal(-1, true)
	p.container.Wait()
}

// truncateLeft keeps the tail of long entry names, which carries the file name
func truncateLeft(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return ".." + s[len(s)-n+2:]
}

// isTerminal checks if stderr is a terminal (TTY)
func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
