// Package urllist is the durable record of raw URLs ingested via the `url`
// command, kept alongside the queue so a listing URL can be re-walked later
// without the operator needing to retype it.
package urllist

import "github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"

// Store is a thin, typed view over the shared snapshot document's url_list.
type Store struct {
	snap *snapshot.Store
}

// New wraps a snapshot store as a URL List.
func New(snap *snapshot.Store) *Store {
	return &Store{snap: snap}
}

// Add inserts rawURL, unless already present. Returns false when it was already recorded.
func (s *Store) Add(rawURL string) (bool, error) {
	var inserted bool

	err := s.snap.WithLock(func(doc *snapshot.Document) error {
		for _, existing := range doc.URLList {
			if existing == rawURL {
				return nil
			}
		}

		doc.URLList = append(doc.URLList, rawURL)
		inserted = true

		return nil
	})

	return inserted, err
}

// List returns every URL recorded so far, in insertion order.
func (s *Store) List() []string {
	var urls []string

	s.snap.View(func(doc *snapshot.Document) {
		urls = make([]string, len(doc.URLList))
		copy(urls, doc.URLList)
	})

	return urls
}
