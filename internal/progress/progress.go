// Package progress shows how far a batch of simulation runs has got.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Mode chooses how progress is drawn.
type Mode int

const (
	// ModeAuto picks ModeLines on CI and ModeBar elsewhere.
	ModeAuto Mode = iota
	// ModeBar redraws a single bar line in place.
	ModeBar
	// ModeLines appends a line for each tenth of the batch, for logs that
	// cannot handle carriage returns.
	ModeLines
)

func detectMode() Mode {
	for _, key := range []string{"CI", "GITHUB_ACTIONS"} {
		if os.Getenv(key) == "true" {
			return ModeLines
		}
	}
	return ModeBar
}

// Options configures an Indicator. A nil Writer means stderr, a zero
// Interval 100ms.
type Options struct {
	Writer   io.Writer
	Total    int
	Mode     Mode
	Interval time.Duration
}

// Indicator tracks completed runs. Update may be called from any goroutine.
type Indicator struct {
	opts    Options
	started time.Time
	done    atomic.Int64

	mu      sync.Mutex // guards writes and the fields below
	decile  int
	frame   int
	drawing bool
}

var frames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const barWidth = 30

// New returns an indicator for opts.Total runs.
func New(opts Options) *Indicator {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	if opts.Mode == ModeAuto {
		opts.Mode = detectMode()
	}
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}
	return &Indicator{opts: opts, started: time.Now()}
}

// Mode reports the resolved drawing mode.
func (p *Indicator) Mode() Mode { return p.opts.Mode }

// Completed returns the highest count passed to Update.
func (p *Indicator) Completed() int { return int(p.done.Load()) }

// Update records that completed runs have finished. Counts below one already
// seen are ignored, since workers report out of order.
func (p *Indicator) Update(completed int) {
	n := int64(completed)
	for {
		cur := p.done.Load()
		if n <= cur {
			return
		}
		if p.done.CompareAndSwap(cur, n) {
			break
		}
	}

	if p.opts.Mode != ModeLines || p.opts.Total <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if d := completed * 10 / p.opts.Total; d > p.decile {
		p.decile = d
		fmt.Fprintf(p.opts.Writer, "simulations: %d/%d\n", completed, p.opts.Total)
	}
}

// Start redraws the bar until ctx is done or the returned stop function is
// called. stop clears the bar line and may be called more than once. In
// ModeLines Start draws nothing.
func (p *Indicator) Start(ctx context.Context) (stop func()) {
	if p.opts.Mode != ModeBar {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(p.opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.draw()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.drawing {
				fmt.Fprintf(p.opts.Writer, "\r%s\r", strings.Repeat(" ", 80))
				p.drawing = false
			}
		})
	}
}

func (p *Indicator) draw() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if line := p.line(time.Since(p.started)); line != "" {
		fmt.Fprint(p.opts.Writer, "\r"+line)
		p.drawing = true
	}
	p.frame = (p.frame + 1) % len(frames)
}

// line renders the bar for the given elapsed time. Caller holds mu.
func (p *Indicator) line(elapsed time.Duration) string {
	total := p.opts.Total
	if total <= 0 {
		return ""
	}
	done := min(int(p.done.Load()), total)
	frac := float64(done) / float64(total)

	filled := int(barWidth * frac)
	var b strings.Builder
	fmt.Fprintf(&b, "%c [%s%s] %5.1f%% | %d/%d simulations | %s",
		frames[p.frame],
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled),
		frac*100, done, total, round(elapsed))
	if done > 0 && done < total {
		left := time.Duration(float64(elapsed) * (1 - frac) / frac)
		fmt.Fprintf(&b, " | ETA: %s", round(left))
	}
	return b.String()
}

// Summary writes the run ID and timing for the finished batch.
func (p *Indicator) Summary(runID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.started)
	done := p.Completed()
	rule := strings.Repeat("─", 59)

	rows := [][2]string{
		{"Run", runID},
		{"Simulations", fmt.Sprintf("%d/%d", done, p.opts.Total)},
		{"Total Time", round(elapsed)},
	}
	if done > 0 {
		rows = append(rows, [2]string{"Avg Time/Run", (elapsed / time.Duration(done)).Round(time.Microsecond).String()})
	}

	fmt.Fprintln(p.opts.Writer, rule)
	for _, r := range rows {
		fmt.Fprintf(p.opts.Writer, "%-14s%s\n", r[0]+":", r[1])
	}
	fmt.Fprintln(p.opts.Writer, rule)
}

func round(d time.Duration) string {
	return d.Round(time.Second).String()
}
