// Package available is the set of track IDs for which a download URL has
// already been acquired and a byte transfer is pending.
package available

import "github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"

// Store is a thin, typed view over the shared snapshot document's available_tracks list.
type Store struct {
	snap *snapshot.Store
}

// New wraps a snapshot store as an Available-Tracks Set.
func New(snap *snapshot.Store) *Store {
	return &Store{snap: snap}
}

// Add inserts trackID, unless already present.
func (s *Store) Add(trackID string) error {
	return s.snap.WithLock(func(doc *snapshot.Document) error {
		for _, id := range doc.AvailableTracks {
			if id == trackID {
				return nil
			}
		}

		doc.AvailableTracks = append(doc.AvailableTracks, trackID)

		return nil
	})
}

// Remove deletes trackID. Returns false if it wasn't present.
func (s *Store) Remove(trackID string) (bool, error) {
	var removed bool

	err := s.snap.WithLock(func(doc *snapshot.Document) error {
		for i, id := range doc.AvailableTracks {
			if id == trackID {
				doc.AvailableTracks = append(doc.AvailableTracks[:i], doc.AvailableTracks[i+1:]...)
				removed = true

				return nil
			}
		}

		return nil
	})

	return removed, err
}

// Contains reports whether trackID is currently in the set.
func (s *Store) Contains(trackID string) bool {
	var found bool

	s.snap.View(func(doc *snapshot.Document) {
		for _, id := range doc.AvailableTracks {
			if id == trackID {
				found = true

				return
			}
		}
	})

	return found
}

// List returns every track ID currently in the set, in storage order.
func (s *Store) List() []string {
	var ids []string

	s.snap.View(func(doc *snapshot.Document) {
		ids = make([]string, len(doc.AvailableTracks))
		copy(ids, doc.AvailableTracks)
	})

	return ids
}

// Len reports the number of tracks currently pending byte transfer.
func (s *Store) Len() int {
	var n int

	s.snap.View(func(doc *snapshot.Document) {
		n = len(doc.AvailableTracks)
	})

	return n
}
