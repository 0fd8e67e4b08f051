package orchestrator

import (
	"github.com/soundeo-tools/soundeo-grabber/internal/statusline"
)

// statusRenderer narrates Phase 1/Phase 2 worker activity through the
// module-wide fixed-region terminal renderer, summarized by the run's
// disposition counters.
type statusRenderer struct {
	*statusline.Renderer
}

// newStatusRenderer starts a renderer for workerCount workers, summarized
// by stats.
func newStatusRenderer(workerCount int, stats *Statistics) *statusRenderer {
	return &statusRenderer{Renderer: statusline.New(workerCount, func() string {
		return stats.Snapshot().String()
	})}
}
