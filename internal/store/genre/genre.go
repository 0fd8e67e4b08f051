// Package genre is a thin, typed view over the shared snapshot document's
// genre_tracker map: one watermark per tracked genre, plus its favorite
// artists (metadata only, consumed by UI-level filtering per spec).
package genre

import (
	"strconv"

	"github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"
)

// Tracker is one tracked genre's state.
type Tracker = snapshot.GenreDoc

// Store is a thin, typed view over the shared snapshot document's genre_tracker map.
type Store struct {
	snap *snapshot.Store
}

// New wraps a snapshot store as a Genre Store.
func New(snap *snapshot.Store) *Store {
	return &Store{snap: snap}
}

// Get returns a genre's tracker state, and whether it's being tracked.
func (s *Store) Get(genreID uint32) (Tracker, bool) {
	var (
		tracker Tracker
		found   bool
	)

	s.snap.View(func(doc *snapshot.Document) {
		tracker, found = doc.GenreTracker[key(genreID)]
	})

	return tracker, found
}

// StartTracking begins tracking a genre from lastCheckedDate, if not already tracked.
func (s *Store) StartTracking(genreID uint32, genreName, lastCheckedDate string, createdAt int64) error {
	return s.snap.WithLock(func(doc *snapshot.Document) error {
		if _, ok := doc.GenreTracker[key(genreID)]; ok {
			return nil
		}

		doc.GenreTracker[key(genreID)] = Tracker{
			GenreID:         genreID,
			GenreName:       genreName,
			LastCheckedDate: lastCheckedDate,
			CreatedAt:       createdAt,
		}

		return nil
	})
}

// AdvanceWatermark sets last_checked_date, regardless of whether the caller
// enqueued anything this page — the watermark is date-based, not page-based.
func (s *Store) AdvanceWatermark(genreID uint32, date string) error {
	return s.snap.WithLock(func(doc *snapshot.Document) error {
		tracker, ok := doc.GenreTracker[key(genreID)]
		if !ok {
			return nil
		}

		tracker.LastCheckedDate = date
		doc.GenreTracker[key(genreID)] = tracker

		return nil
	})
}

// AddFavoriteArtist records a favorite artist name under a genre. Metadata
// only; it does not influence the scheduler's own enqueue decisions.
func (s *Store) AddFavoriteArtist(genreID uint32, artist string) error {
	return s.snap.WithLock(func(doc *snapshot.Document) error {
		tracker, ok := doc.GenreTracker[key(genreID)]
		if !ok {
			return nil
		}

		for _, existing := range tracker.FavoriteArtists {
			if existing == artist {
				return nil
			}
		}

		tracker.FavoriteArtists = append(tracker.FavoriteArtists, artist)
		doc.GenreTracker[key(genreID)] = tracker

		return nil
	})
}

func key(genreID uint32) string {
	return strconv.FormatUint(uint64(genreID), 10)
}
