package cloudmirror

import (
	"context"
	"fmt"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/firestore"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

// TracksResult summarizes one MirrorTracks run.
type TracksResult struct {
	AlreadyMirrored int
	Written         int
}

// MirrorTracks pushes every locally pending track record to the Cloud
// Mirror's soundeo_tracks collection. It first bulk-lists the remote
// collection's document IDs and marks any local record already present
// there as mirrored without re-sending it — the "bitmap-seeding" step from
// batch_write_tracks/migrate_queue_to_subcollections — then batch-writes
// the remainder in chunks of m.batchChunkSize.
func (m *Mirror) MirrorTracks(ctx context.Context) (*TracksResult, error) {
	remoteIDs, err := m.remoteTrackIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote tracks: %w", err)
	}

	result := &TracksResult{}

	var pending []trackToMirror

	for record := range m.tracks.ListPendingMirror() {
		if remoteIDs[record.ID] {
			if err := m.tracks.MarkMirrored(record.ID); err != nil {
				return result, fmt.Errorf("failed to mark %s mirrored: %w", record.ID, err)
			}

			result.AlreadyMirrored++

			continue
		}

		pending = append(pending, trackToMirror{id: record.ID, fields: trackFields(record)})
	}

	for start := 0; start < len(pending); start += m.batchChunkSize {
		end := min(start+m.batchChunkSize, len(pending))
		chunk := pending[start:end]

		items := make([]firestore.WriteItem, len(chunk))
		for i, t := range chunk {
			items[i] = firestore.WriteItem{Collection: tracksCollection, DocumentID: t.id, Fields: t.fields}
		}

		if err := m.cloud.BatchWrite(ctx, items); err != nil {
			return result, fmt.Errorf("failed to write track batch: %w", err)
		}

		for _, t := range chunk {
			if err := m.tracks.MarkMirrored(t.id); err != nil {
				return result, fmt.Errorf("failed to mark %s mirrored: %w", t.id, err)
			}

			result.Written++
		}

		logger.Debugf(ctx, "cloudmirror: wrote track batch of %d (%d/%d)", len(chunk), result.Written, len(pending))
	}

	return result, nil
}

type trackToMirror struct {
	id     string
	fields map[string]any
}

func (m *Mirror) remoteTrackIDs(ctx context.Context) (map[string]bool, error) {
	docs, err := m.cloud.List(ctx, tracksCollection)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(docs))
	for _, doc := range docs {
		ids[doc.ID] = true
	}

	return ids, nil
}
