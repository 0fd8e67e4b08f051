package orchestrator

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/catalog"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"
)

// runPhase1 acquires download URLs for entries, in sorted order, using a
// fixed worker pool. It stops dispatching new entries as soon as any worker
// observes an exhausted, unrefreshable budget; entries never reached or
// abandoned this way are simply left untouched in the Queue store, so they
// retain their original order_key for the next session.
func (o *Orchestrator) runPhase1(ctx context.Context, entries []queue.Entry) {
	if len(entries) == 0 {
		return
	}

	slots := workerSlots(o.deps.WorkerCount)

	var (
		waitGroup sync.WaitGroup
		suspended atomic.Bool
	)

	for _, entry := range entries {
		if contextDone(ctx) || suspended.Load() {
			break
		}

		slot := <-slots

		waitGroup.Add(1)

		go func(slot int, entry queue.Entry) {
			defer waitGroup.Done()
			defer func() { slots <- slot }()

			o.render.Post(ctx, slot, "acquiring URL for %s", entry.TrackID)

			if o.acquireURL(ctx, entry) == phase1ResultSuspend {
				suspended.Store(true)
			}

			o.render.Post(ctx, slot, "idle")
		}(slot, entry)
	}

	waitGroup.Wait()
}

type phase1Result int

const (
	phase1ResultDone phase1Result = iota
	phase1ResultSuspend
)

// acquireURL runs the five numbered Phase 1 steps for a single queue entry.
func (o *Orchestrator) acquireURL(ctx context.Context, entry queue.Entry) phase1Result {
	trackID := entry.TrackID

	metadata, err := o.deps.Catalog.GetTrackInfo(ctx, trackID)
	if err != nil {
		o.errs.Handle(ctx, err, ErrorContext{TrackID: trackID, Phase: "fetch metadata"})
		o.stats.Record(DispositionFailed)

		return phase1ResultDone
	}

	if !metadata.IsDownloadable() {
		o.markNotDownloadable(trackID, metadata)
		o.stats.Record(DispositionNotDownloadable)

		return phase1ResultDone
	}

	if o.deps.Budget.Remaining() == 0 {
		if o.refreshBudget(ctx) == 0 {
			return phase1ResultSuspend
		}
	}

	o.deps.Budget.TryConsume()

	downloadURL, err := o.deps.Catalog.GetDownloadURL(ctx, trackID)
	if err != nil {
		return o.handleDownloadURLFailure(ctx, trackID, metadata, err)
	}

	if _, moveErr := o.deps.Queue.MoveToAvailable(trackID, o.mergedRecord(trackID, metadata)); moveErr != nil {
		o.errs.Handle(ctx, moveErr, ErrorContext{TrackID: trackID, Phase: "move to available"})

		return phase1ResultDone
	}

	// Disposition Downloaded is recorded once, by Phase 2, when bytes actually
	// land on disk — Phase 1 success only promotes Queue -> Available.
	o.urls.Store(trackID, downloadURL)

	return phase1ResultDone
}

// handleDownloadURLFailure runs the STEM-probe fallback from step 5.
func (o *Orchestrator) handleDownloadURLFailure(
	ctx context.Context,
	trackID string,
	metadata *catalog.TrackMetadata,
	cause error,
) phase1Result {
	if isStemAsset(metadata) {
		o.markNotDownloadable(trackID, metadata)
		o.stats.Record(DispositionStemTrack)

		return phase1ResultDone
	}

	o.errs.Handle(ctx, cause, ErrorContext{TrackID: trackID, Phase: "acquire download URL"})
	o.stats.Record(DispositionFailed)

	return phase1ResultDone
}

// isStemAsset decides STEM status from the metadata's StemVariant flag.
// The live Catalog's exact signal is undocumented (spec Open Question); this
// is the documented stand-in chosen for this implementation.
func isStemAsset(metadata *catalog.TrackMetadata) bool {
	return metadata.StemVariant
}

func (o *Orchestrator) markNotDownloadable(trackID string, metadata *catalog.TrackMetadata) {
	if err := o.deps.Tracks.Upsert(o.mergedRecord(trackID, metadata)); err != nil {
		logger.Errorf(context.Background(), "failed to persist metadata for %s: %v", trackID, err)
	}

	if err := o.deps.Tracks.MarkNotDownloadable(trackID); err != nil {
		logger.Errorf(context.Background(), "failed to mark %s not downloadable: %v", trackID, err)
	}

	if _, err := o.deps.Queue.Remove(trackID); err != nil {
		logger.Errorf(context.Background(), "failed to remove %s from queue: %v", trackID, err)
	}
}

// refreshBudget performs the authoritative reload, serialized against other
// workers since it mutates shared session/cookie state.
func (o *Orchestrator) refreshBudget(ctx context.Context) uint32 {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()

	if o.deps.Budget.Remaining() > 0 {
		return o.deps.Budget.Remaining()
	}

	if err := o.deps.Budget.RefreshFromClient(ctx, o.deps.Catalog); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf(ctx, "failed to refresh rate budget: %v", err)
	}

	return o.deps.Budget.Remaining()
}

// mergedRecord folds freshly fetched metadata into whatever local record
// already exists, so a re-fetch never clobbers locally-owned fields like
// AlreadyDownloaded, Mirrored, or SizeBytes.
func (o *Orchestrator) mergedRecord(trackID string, metadata *catalog.TrackMetadata) snapshot.TrackRecord {
	record, _ := o.deps.Tracks.Get(trackID)

	bpm, _ := strconv.ParseUint(metadata.BPM, 10, 32) //nolint:errcheck // a non-numeric BPM just renders as 0.

	record.ID = trackID
	record.Title = metadata.Title
	record.Release = metadata.Release
	record.TrackURL = metadata.ReleaseURL
	record.Label = metadata.Label
	record.Genre = metadata.Genre
	record.Date = metadata.Date
	record.BPM = uint32(bpm)
	record.Key = metadata.Key
	record.Downloadable = metadata.IsDownloadable()

	return record
}
