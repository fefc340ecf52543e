// Package progress renders loading bars for long graph operations.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Bar tracks completion of a fixed amount of work. Implementations are safe
// for concurrent use.
type Bar interface {
	Add(n int)
	Finish()
}

var labelStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#00FFFF"))

// minRenderInterval throttles redraws from many concurrent workers.
const minRenderInterval = 100 * time.Millisecond

// New returns a terminal bar writing to w, or a no-op bar when verbose is off.
func New(w io.Writer, label string, total int, verbose bool) Bar {
	if !verbose || total <= 0 || w == nil {
		return Nop{}
	}
	return &TerminalBar{
		w:     w,
		label: label,
		total: total,
		model: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// TerminalBar redraws a single line with a gradient bar and counters.
type TerminalBar struct {
	mu         sync.Mutex
	w          io.Writer
	label      string
	total      int
	done       int
	finished   bool
	lastRender time.Time
	model      progress.Model
}

// Add records n completed units.
func (b *TerminalBar) Add(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.done = min(b.done+n, b.total)
	if b.done < b.total && time.Since(b.lastRender) < minRenderInterval {
		return
	}
	b.render()
}

// Finish draws the final state and ends the line. Later calls do nothing.
func (b *TerminalBar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.render()
	fmt.Fprintln(b.w)
	b.finished = true
}

// Done returns the completed units.
func (b *TerminalBar) Done() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

func (b *TerminalBar) render() {
	b.lastRender = time.Now()
	percent := float64(b.done) / float64(b.total)
	fmt.Fprintf(b.w, "\r%s %s %d/%d", labelStyle.Render(b.label), b.model.ViewAs(percent), b.done, b.total)
}

// Nop is a Bar that discards updates.
type Nop struct{}

func (Nop) Add(int) {}
func (Nop) Finish() {}
