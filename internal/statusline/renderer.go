// Package statusline implements the single-writer, fixed-region terminal
// status display shared by every worker pool in this module: one aggregate
// line plus one line per worker, repainted in place as workers post
// updates. Generalizes a single progress bar into a multi-worker status
// block, so a download run with several concurrent workers still renders
// one stable block instead of interleaved lines.
package statusline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

type update struct {
	workerIndex int
	line        string
}

// Renderer owns the terminal: it is the single writer of the fixed status
// region, re-rendering whenever a worker posts a change. Centralizing the
// writer here is what keeps concurrent workers' lines from interleaving.
type Renderer struct {
	mu          sync.Mutex
	workerLines []string
	summary     func() string
	startedAt   time.Time
	updates     chan update
	done        chan struct{}
	enabled     bool
}

// New starts a renderer goroutine for workerCount workers. summary is
// called on every repaint to produce the aggregate line above the
// per-worker lines. Rendering is skipped entirely when the logger level is
// above info (warn or error); debug and info runs render the block.
func New(workerCount int, summary func() string) *Renderer {
	r := &Renderer{
		workerLines: make([]string, workerCount),
		summary:     summary,
		startedAt:   time.Now(),
		updates:     make(chan update, workerCount*4), //nolint:mnd // generous buffer, not a hard bound.
		done:        make(chan struct{}),
		enabled:     logger.Level() <= zapcore.InfoLevel,
	}

	go r.loop()

	return r
}

func (r *Renderer) loop() {
	defer close(r.done)

	for u := range r.updates {
		r.mu.Lock()
		r.workerLines[u.workerIndex] = u.line
		r.render()
		r.mu.Unlock()
	}
}

func (r *Renderer) render() {
	if !r.enabled {
		return
	}

	fmt.Printf("\r%s | elapsed %s\n", r.summary(), FormatDuration(time.Since(r.startedAt)))

	for i, line := range r.workerLines {
		fmt.Printf("  worker %d: %s\n", i, line)
	}
}

// Post reports a worker's current state. Safe to call concurrently.
func (r *Renderer) Post(ctx context.Context, workerIndex int, format string, args ...any) {
	line := fmt.Sprintf(format, args...)

	select {
	case r.updates <- update{workerIndex: workerIndex, line: line}:
	case <-ctx.Done():
	}
}

// Close stops accepting updates and waits for the renderer to drain.
func (r *Renderer) Close() {
	close(r.updates)
	<-r.done
}

// FormatDuration renders d the way every status line in this module does.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}
