// Package cloudmirror pushes this module's local state to the Cloud
// Mirror: track metadata into a `soundeo_tracks` collection and queued
// entries into a `queued_tracks` collection, each keyed per-user. Track
// metadata goes out as a bitmap-seeded bulk write; queue entries go out
// through an N-worker per-document PATCH pipeline.
package cloudmirror

import (
	"context"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/firestore"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/track"
)

const (
	tracksCollection = "soundeo_tracks"
	queueCollection  = "queued_tracks"
)

// CloudStore is the subset of the Firestore REST client Mirror depends on.
type CloudStore interface {
	List(ctx context.Context, collection string) ([]firestore.Document, error)
	Save(ctx context.Context, collection, documentID string, fields map[string]any) error
	BatchWrite(ctx context.Context, items []firestore.WriteItem) error
}

// Mirror reconciles local state against the Cloud Mirror.
type Mirror struct {
	cloud          CloudStore
	tracks         *track.Store
	queue          *queue.Store
	workerCount    int
	batchChunkSize int
}

// New creates a Mirror. workerCount sizes the queue-migration worker pool
// (migration_concurrency); batchChunkSize bounds each soundeo_tracks batch
// write (firebase_batch_chunk_size).
func New(cloud CloudStore, tracks *track.Store, queueStore *queue.Store, workerCount, batchChunkSize int) *Mirror {
	return &Mirror{
		cloud:          cloud,
		tracks:         tracks,
		queue:          queueStore,
		workerCount:    workerCount,
		batchChunkSize: batchChunkSize,
	}
}

func trackFields(record track.Record) map[string]any {
	return map[string]any{
		"id":                 record.ID,
		"title":              record.Title,
		"track_url":          record.TrackURL,
		"cover":              record.Cover,
		"release":            record.Release,
		"label":              record.Label,
		"genre":              record.Genre,
		"date":               record.Date,
		"bpm":                int64(record.BPM),
		"key":                record.Key,
		"size_bytes":         record.SizeBytes,
		"downloadable":       record.Downloadable,
		"already_downloaded": record.AlreadyDownloaded,
	}
}

func queueEntryFields(entry queue.Entry) map[string]any {
	return map[string]any{
		"track_id":  entry.TrackID,
		"priority":  string(entry.Priority),
		"order_key": firestore.Double(entry.OrderKey),
		"added_at":  entry.AddedAt,
	}
}
