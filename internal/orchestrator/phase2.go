package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/catalog"
	"github.com/soundeo-tools/soundeo-grabber/internal/constants"
)

// runPhase2 streams every entry currently in the AvailableSet to disk, in
// whatever order the underlying store returns them (unspecified by design).
// Entries that fail stay in the AvailableSet for the next session's Phase 2.
func (o *Orchestrator) runPhase2(ctx context.Context) {
	pending := o.pendingAvailableTrackIDs()
	if len(pending) == 0 {
		return
	}

	slots := workerSlots(o.deps.WorkerCount)

	var waitGroup sync.WaitGroup

	for _, trackID := range pending {
		if contextDone(ctx) {
			break
		}

		slot := <-slots

		waitGroup.Add(1)

		go func(slot int, trackID string) {
			defer waitGroup.Done()
			defer func() { slots <- slot }()

			o.render.Post(ctx, slot, "downloading %s", trackID)
			o.transferOne(ctx, slot, trackID)
			o.render.Post(ctx, slot, "idle")
		}(slot, trackID)
	}

	waitGroup.Wait()
}

// pendingAvailableTrackIDs reads the live AvailableSet. Its storage order is
// unspecified by design, so Phase 2 processes it exactly as returned.
func (o *Orchestrator) pendingAvailableTrackIDs() []string {
	return o.deps.Available.List()
}

func (o *Orchestrator) transferOne(ctx context.Context, slot int, trackID string) {
	downloadURL, err := o.resolveDownloadURL(ctx, trackID)
	if err != nil {
		o.errs.Handle(ctx, err, ErrorContext{TrackID: trackID, Phase: "resolve download URL"})
		o.stats.Record(DispositionFailed)

		return
	}

	stream, err := o.deps.Catalog.StreamDownload(ctx, downloadURL)
	if err != nil {
		o.errs.Handle(ctx, err, ErrorContext{TrackID: trackID, Phase: "open download stream"})
		o.stats.Record(DispositionFailed)

		return
	}
	defer stream.Body.Close() //nolint:errcheck // best-effort close after the transfer completes or fails.

	destination := downloadDestination(o.deps.DownloadPath, stream.Filename)

	written, err := o.writeStream(ctx, slot, trackID, destination, stream)
	if err != nil {
		o.errs.Handle(ctx, err, ErrorContext{TrackID: trackID, Phase: "write file"})
		o.stats.Record(DispositionFailed)

		return
	}

	if stream.Size > 0 && written != stream.Size {
		o.errs.Handle(ctx, ErrIncompleteDownload, ErrorContext{TrackID: trackID, Phase: "write file"})
		o.stats.Record(DispositionFailed)

		return
	}

	o.stats.AddBytesDownloaded(written)

	if _, err := o.deps.Available.Remove(trackID); err != nil {
		o.errs.Handle(ctx, err, ErrorContext{TrackID: trackID, Phase: "clear available"})
	}

	if err := o.deps.Tracks.MarkDownloaded(trackID); err != nil {
		o.errs.Handle(ctx, err, ErrorContext{TrackID: trackID, Phase: "mark downloaded"})
	}

	o.stats.Record(DispositionDownloaded)
}

func (o *Orchestrator) resolveDownloadURL(ctx context.Context, trackID string) (string, error) {
	if cached, ok := o.urls.Load(trackID); ok {
		return cached.(string), nil //nolint:forcetypeassert // only this package ever stores into urls.
	}

	return o.deps.Catalog.GetDownloadURL(ctx, trackID)
}

func (o *Orchestrator) writeStream(
	ctx context.Context,
	slot int,
	trackID string,
	destination string,
	stream *catalog.DownloadStream,
) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destination), constants.DefaultFolderPermissions); err != nil {
		return 0, fmt.Errorf("failed to create download directory: %w", err)
	}

	file, err := os.Create(destination) //nolint:gosec // destination is derived from a trusted Content-Disposition filename.
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close() //nolint:errcheck,gosec

	bar := progressbar.DefaultBytes(stream.Size, trackID)
	defer bar.Close() //nolint:errcheck

	written, err := io.Copy(file, io.TeeReader(stream.Body, bar))
	if err != nil {
		return written, fmt.Errorf("failed to write download body: %w", err)
	}

	o.render.Post(ctx, slot, "downloaded %s (%s)", trackID, humanize.Bytes(uint64(written))) //nolint:gosec

	return written, nil
}
