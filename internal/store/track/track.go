// Package track is the in-memory-with-durable-backing mapping of catalog
// track IDs to their last known metadata, mirrored status, and download
// state. Every mutation goes through the shared snapshot lock so concurrent
// workers never observe a torn read.
package track

import (
	"iter"

	"github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"
)

// Record is a track's full local state.
type Record = snapshot.TrackRecord

// Store is a thin, typed view over the shared snapshot document's tracks_info map.
type Store struct {
	snap *snapshot.Store
}

// New wraps a snapshot store as a Track Store.
func New(snap *snapshot.Store) *Store {
	return &Store{snap: snap}
}

// Upsert inserts or replaces a track's record.
func (s *Store) Upsert(record Record) error {
	return s.snap.WithLock(func(doc *snapshot.Document) error {
		doc.TracksInfo[record.ID] = record

		return nil
	})
}

// Get returns a track's record, and whether it was found.
func (s *Store) Get(id string) (Record, bool) {
	var (
		record Record
		found  bool
	)

	s.snap.View(func(doc *snapshot.Document) {
		record, found = doc.TracksInfo[id]
	})

	return record, found
}

// MarkDownloaded flips AlreadyDownloaded to true.
func (s *Store) MarkDownloaded(id string) error {
	return s.mutate(id, func(record *Record) { record.AlreadyDownloaded = true })
}

// MarkNotDownloadable flips Downloadable to false.
func (s *Store) MarkNotDownloadable(id string) error {
	return s.mutate(id, func(record *Record) { record.Downloadable = false })
}

// MarkMirrored flips Mirrored to true.
func (s *Store) MarkMirrored(id string) error {
	return s.mutate(id, func(record *Record) { record.Mirrored = true })
}

func (s *Store) mutate(id string, fn func(record *Record)) error {
	return s.snap.WithLock(func(doc *snapshot.Document) error {
		record := doc.TracksInfo[id]
		fn(&record)
		doc.TracksInfo[id] = record

		return nil
	})
}

// PendingMirrorCount returns how many records are not yet mirrored.
func (s *Store) PendingMirrorCount() int {
	var count int

	s.snap.View(func(doc *snapshot.Document) {
		for _, record := range doc.TracksInfo {
			if !record.Mirrored {
				count++
			}
		}
	})

	return count
}

// ListPendingMirror yields every record not yet mirrored to the cloud store.
func (s *Store) ListPendingMirror() iter.Seq[Record] {
	var snapshotCopy []Record

	s.snap.View(func(doc *snapshot.Document) {
		snapshotCopy = make([]Record, 0, len(doc.TracksInfo))

		for _, record := range doc.TracksInfo {
			if !record.Mirrored {
				snapshotCopy = append(snapshotCopy, record)
			}
		}
	})

	return func(yield func(Record) bool) {
		for _, record := range snapshotCopy {
			if !yield(record) {
				return
			}
		}
	}
}
