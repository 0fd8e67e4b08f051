package cloudmirror

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
	"github.com/soundeo-tools/soundeo-grabber/internal/statusline"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
)

// QueueMigrationResult summarizes one MigrateQueue run.
type QueueMigrationResult struct {
	AlreadyMirrored int64
	Completed       int64
	Failed          int64

	total     int64
	startedAt time.Time
}

// String renders the aggregate status line: processed/total, completed,
// failed, and a per-minute rate.
func (r *QueueMigrationResult) String() string {
	completed := atomic.LoadInt64(&r.Completed)
	failed := atomic.LoadInt64(&r.Failed)
	processed := completed + failed
	elapsed := time.Since(r.startedAt)

	rate := 0.0
	if elapsed.Seconds() > 0 {
		rate = float64(processed) / elapsed.Seconds() * 60 //nolint:mnd // per-minute rate.
	}

	eta := "?"
	if rate > 0 && processed < r.total {
		remaining := time.Duration(float64(r.total-processed)/rate*60) * time.Second
		eta = statusline.FormatDuration(remaining)
	}

	return fmt.Sprintf("queue: %d/%d completed=%d failed=%d already_mirrored=%d rate=%.1f/min eta=%s",
		processed, r.total, completed, failed, r.AlreadyMirrored, rate, eta)
}

// MigrateQueue pushes every locally pending queue entry to the Cloud
// Mirror's queued_tracks collection. It first bulk-lists the remote
// collection's document IDs and marks any local entry already present
// there as mirrored locally without re-sending it, then migrates the
// remainder across an m.workerCount worker pool, each worker PATCHing one
// document at a time — the same per-worker individual-write shape as
// migrate_queue_to_subcollections's process_queue_worker, narrated through
// the same status renderer 4.F's downloader uses.
func (m *Mirror) MigrateQueue(ctx context.Context) (*QueueMigrationResult, error) {
	remoteIDs, err := m.remoteQueueIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote queue: %w", err)
	}

	result := &QueueMigrationResult{}

	var pending []queue.Entry

	for _, entry := range m.queue.PendingMirror() {
		if remoteIDs[entry.TrackID] {
			if _, err := m.queue.MarkMirrored(entry.TrackID); err != nil {
				return result, fmt.Errorf("failed to mark %s mirrored: %w", entry.TrackID, err)
			}

			result.AlreadyMirrored++

			continue
		}

		pending = append(pending, entry)
	}

	if len(pending) == 0 {
		return result, nil
	}

	result.total = int64(len(pending))
	result.startedAt = time.Now()

	renderer := statusline.New(m.workerCount, result.String)
	defer renderer.Close()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		index int
	)

	next := func() (queue.Entry, bool) {
		mu.Lock()
		defer mu.Unlock()

		if index >= len(pending) {
			return queue.Entry{}, false
		}

		entry := pending[index]
		index++

		return entry, true
	}

	for worker := range m.workerCount {
		wg.Add(1)

		go func(slot int) {
			defer wg.Done()

			for {
				entry, ok := next()
				if !ok {
					renderer.Post(ctx, slot, "idle")

					return
				}

				renderer.Post(ctx, slot, "migrating %s", entry.TrackID)

				if err := m.cloud.Save(ctx, queueCollection, entry.TrackID, queueEntryFields(entry)); err != nil {
					atomic.AddInt64(&result.Failed, 1)
					logger.Errorf(ctx, "cloudmirror: failed to migrate queue entry %s: %v", entry.TrackID, err)

					continue
				}

				if _, err := m.queue.MarkMirrored(entry.TrackID); err != nil {
					atomic.AddInt64(&result.Failed, 1)
					logger.Errorf(ctx, "cloudmirror: failed to mark %s mirrored: %v", entry.TrackID, err)

					continue
				}

				atomic.AddInt64(&result.Completed, 1)
			}
		}(worker)
	}

	wg.Wait()

	if result.Failed > 0 {
		return result, fmt.Errorf("queue migration completed with %d failures", result.Failed)
	}

	return result, nil
}

func (m *Mirror) remoteQueueIDs(ctx context.Context) (map[string]bool, error) {
	docs, err := m.cloud.List(ctx, queueCollection)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(docs))
	for _, doc := range docs {
		ids[doc.ID] = true
	}

	return ids, nil
}
