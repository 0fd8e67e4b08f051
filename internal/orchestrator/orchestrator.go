// Package orchestrator runs the two-phase download pipeline: Phase 1
// acquires one-time download URLs against the rate budget, Phase 2 streams
// the acquired URLs to disk. Both phases share a cooperative worker pool,
// bounded by a worker-count semaphore, same shape on both phases.
package orchestrator

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/catalog"
	"github.com/soundeo-tools/soundeo-grabber/internal/ratebudget"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/available"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/track"
)

// Deps are the collaborators an Orchestrator drives. All are required.
type Deps struct {
	Catalog      catalog.Client
	Tracks       *track.Store
	Queue        *queue.Store
	Available    *available.Store
	Budget       *ratebudget.Budget
	DownloadPath string
	WorkerCount  int
}

// Orchestrator runs Phase 1 (URL Acquisition) followed by Phase 2 (Byte
// Transfer) over the current queue and available-tracks snapshots.
type Orchestrator struct {
	deps Deps

	stats  *Statistics
	errs   *ErrorHandler
	render *statusRenderer

	// urls caches the one-time download URLs Phase 1 acquired, keyed by track
	// ID, so Phase 2 doesn't need to re-acquire (and re-consume budget for)
	// a URL it already has in hand this run. Entries resumed from a prior
	// session's AvailableSet won't have a cached URL and are re-acquired lazily.
	urls sync.Map

	// sessionMu serializes budget-refresh re-logins, which mutate shared cookie state.
	sessionMu sync.Mutex
}

// New creates an Orchestrator. WorkerCount is clamped to at least 1.
func New(deps Deps) *Orchestrator {
	if deps.WorkerCount < 1 {
		deps.WorkerCount = 1
	}

	stats := NewStatistics()

	return &Orchestrator{
		deps:  deps,
		stats: stats,
		errs:  NewErrorHandler(stats),
	}
}

// Run drives both phases to completion (or until ctx is cancelled) and
// returns the run's final Statistics. genreFilter, when non-empty, restricts
// Phase 1 to queue entries whose track genre matches exactly.
func (o *Orchestrator) Run(ctx context.Context, genreFilter string) (*Statistics, error) {
	o.render = newStatusRenderer(o.deps.WorkerCount, o.stats)
	defer o.render.Close()

	entries := o.deps.Queue.DequeueSorted()
	if genreFilter != "" {
		entries = o.filterByGenre(entries, genreFilter)
	}

	o.runPhase1(ctx, entries)
	o.runPhase2(ctx)

	return o.stats, nil
}

// filterByGenre keeps only entries whose TrackStore record has genre == want.
// Per spec, this joins Queue entries to TrackStore; entries with no known
// record are dropped rather than guessed at.
func (o *Orchestrator) filterByGenre(entries []queue.Entry, want string) []queue.Entry {
	filtered := make([]queue.Entry, 0, len(entries))

	for _, entry := range entries {
		record, ok := o.deps.Tracks.Get(entry.TrackID)
		if ok && record.Genre == want {
			filtered = append(filtered, entry)
		}
	}

	return filtered
}

// workerSlots hands out stable small integer identities [0, n) for status
// rendering, recycled as goroutines finish.
func workerSlots(n int) chan int {
	slots := make(chan int, n)
	for i := range n {
		slots <- i
	}

	return slots
}

func contextDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func downloadDestination(downloadPath, filename string) string {
	return filepath.Join(downloadPath, filename)
}
