// Package queue implements the priority-tiered download queue: enqueue,
// sorted drain, promote-to-top, and the periodic order-key compaction that
// keeps those keys from drifting toward floating-point precision loss after
// many promotions.
package queue

import (
	"sort"

	"github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"
)

// Priority is one of the three download-priority tiers.
type Priority string

// Priority tiers, ordered High < Normal < Low.
const (
	PriorityHigh   Priority = "High"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Low"
)

var tierRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityNormal: 1,
	PriorityLow:    2,
}

// Entry is one queued track and its ordering metadata.
type Entry struct {
	TrackID  string
	Priority Priority
	OrderKey float64
	AddedAt  int64
	Mirrored bool
}

// Store is a thin, typed view over the shared snapshot document's queued_tracks list.
type Store struct {
	snap *snapshot.Store
	// nowMonotonicMS supplies the next order key; overridable in tests.
	nowMonotonicMS func() float64
}

// New wraps a snapshot store as a Queue Store.
func New(snap *snapshot.Store, nowMonotonicMS func() float64) *Store {
	return &Store{snap: snap, nowMonotonicMS: nowMonotonicMS}
}

// Enqueue inserts track_id with the given priority, unless it is already
// present. Returns false when it was already queued.
func (s *Store) Enqueue(trackID string, priority Priority) (bool, error) {
	var inserted bool

	err := s.snap.WithLock(func(doc *snapshot.Document) error {
		for _, entry := range doc.QueuedTracks {
			if entry.TrackID == trackID {
				return nil
			}
		}

		doc.QueuedTracks = append(doc.QueuedTracks, snapshot.QueuedEntryDoc{
			TrackID:  trackID,
			Priority: string(priority),
			OrderKey: s.nowMonotonicMS(),
			AddedAt:  nowUnixSeconds(),
		})
		inserted = true

		return nil
	})

	return inserted, err
}

// DequeueSorted returns every queued entry ordered by (priority, order_key).
// It does not remove anything; callers remove entries explicitly as they're processed.
func (s *Store) DequeueSorted() []Entry {
	var entries []Entry

	s.snap.View(func(doc *snapshot.Document) {
		entries = make([]Entry, len(doc.QueuedTracks))
		for i, e := range doc.QueuedTracks {
			entries[i] = fromDoc(e)
		}
	})

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return tierRank[entries[i].Priority] < tierRank[entries[j].Priority]
		}

		return entries[i].OrderKey < entries[j].OrderKey
	})

	return entries
}

// Len returns the number of currently queued entries.
func (s *Store) Len() int {
	var n int

	s.snap.View(func(doc *snapshot.Document) {
		n = len(doc.QueuedTracks)
	})

	return n
}

// Contains reports whether trackID currently has a queue entry.
func (s *Store) Contains(trackID string) bool {
	var found bool

	s.snap.View(func(doc *snapshot.Document) {
		for _, entry := range doc.QueuedTracks {
			if entry.TrackID == trackID {
				found = true

				return
			}
		}
	})

	return found
}

// Remove deletes a track's queue entry. Returns false if it wasn't present.
func (s *Store) Remove(trackID string) (bool, error) {
	var removed bool

	err := s.snap.WithLock(func(doc *snapshot.Document) error {
		for i, entry := range doc.QueuedTracks {
			if entry.TrackID == trackID {
				doc.QueuedTracks = append(doc.QueuedTracks[:i], doc.QueuedTracks[i+1:]...)
				removed = true

				return nil
			}
		}

		return nil
	})

	return removed, err
}

// MoveToAvailable atomically removes trackID's queue entry, adds it to the
// available-tracks set (unless already present), and upserts its track
// record, all inside a single WithLock call. Doing this as three separate
// store operations would let the persisted snapshot be written between
// them, observing trackID in both queued_tracks and available_tracks (or
// neither) if the process crashed mid-way; folding them into one write
// closes that window. Returns false if trackID had no queue entry.
func (s *Store) MoveToAvailable(trackID string, record snapshot.TrackRecord) (bool, error) {
	var removed bool

	err := s.snap.WithLock(func(doc *snapshot.Document) error {
		for i, entry := range doc.QueuedTracks {
			if entry.TrackID == trackID {
				doc.QueuedTracks = append(doc.QueuedTracks[:i], doc.QueuedTracks[i+1:]...)
				removed = true

				break
			}
		}

		alreadyAvailable := false

		for _, id := range doc.AvailableTracks {
			if id == trackID {
				alreadyAvailable = true

				break
			}
		}

		if !alreadyAvailable {
			doc.AvailableTracks = append(doc.AvailableTracks, trackID)
		}

		doc.TracksInfo[record.ID] = record

		return nil
	})

	return removed, err
}

// PendingMirror returns every queued entry not yet mirrored to the Cloud Mirror.
func (s *Store) PendingMirror() []Entry {
	var entries []Entry

	s.snap.View(func(doc *snapshot.Document) {
		for _, e := range doc.QueuedTracks {
			if !e.Mirrored {
				entries = append(entries, fromDoc(e))
			}
		}
	})

	return entries
}

// MarkMirrored flips a queued entry's Mirrored flag to true. Returns false
// if the track wasn't queued.
func (s *Store) MarkMirrored(trackID string) (bool, error) {
	var marked bool

	err := s.snap.WithLock(func(doc *snapshot.Document) error {
		for i, entry := range doc.QueuedTracks {
			if entry.TrackID == trackID {
				doc.QueuedTracks[i].Mirrored = true
				marked = true

				return nil
			}
		}

		return nil
	})

	return marked, err
}

// UpdatePriority changes a queued track's priority tier in place, leaving its
// order_key untouched. Returns false if the track wasn't queued.
func (s *Store) UpdatePriority(trackID string, priority Priority) (bool, error) {
	var updated bool

	err := s.snap.WithLock(func(doc *snapshot.Document) error {
		for i, entry := range doc.QueuedTracks {
			if entry.TrackID == trackID {
				doc.QueuedTracks[i].Priority = string(priority)
				updated = true

				return nil
			}
		}

		return nil
	})

	return updated, err
}

// PromoteToTop moves the given track IDs ahead of every other entry within
// their own tier, preserving relative order among the promoted IDs and
// retaining each entry's original priority. Entries not currently queued are ignored.
func (s *Store) PromoteToTop(trackIDs []string) error {
	return s.snap.WithLock(func(doc *snapshot.Document) error {
		if len(doc.QueuedTracks) == 0 || len(trackIDs) == 0 {
			return nil
		}

		floor := minOrderKey(doc.QueuedTracks) - 1.0

		index := make(map[string]int, len(doc.QueuedTracks))
		for i, entry := range doc.QueuedTracks {
			index[entry.TrackID] = i
		}

		next := floor - float64(len(trackIDs)-1)

		for _, trackID := range trackIDs {
			i, ok := index[trackID]
			if !ok {
				continue
			}

			doc.QueuedTracks[i].OrderKey = next
			next++
		}

		return nil
	})
}

// CompactOrderKeys re-ranks every queued entry to dense integer order keys,
// preserving the current (priority, order_key) sort order. Run periodically
// so repeated promotions don't erode order_key's floating-point precision.
func (s *Store) CompactOrderKeys() error {
	return s.snap.WithLock(func(doc *snapshot.Document) error {
		entries := make([]Entry, len(doc.QueuedTracks))
		for i, e := range doc.QueuedTracks {
			entries[i] = fromDoc(e)
		}

		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Priority != entries[j].Priority {
				return tierRank[entries[i].Priority] < tierRank[entries[j].Priority]
			}

			return entries[i].OrderKey < entries[j].OrderKey
		})

		byTrackID := make(map[string]float64, len(entries))

		for i, entry := range entries {
			byTrackID[entry.TrackID] = float64(i)
		}

		for i, e := range doc.QueuedTracks {
			doc.QueuedTracks[i].OrderKey = byTrackID[e.TrackID]
		}

		return nil
	})
}

func minOrderKey(entries []snapshot.QueuedEntryDoc) float64 {
	minKey := entries[0].OrderKey
	for _, entry := range entries[1:] {
		if entry.OrderKey < minKey {
			minKey = entry.OrderKey
		}
	}

	return minKey
}

func fromDoc(e snapshot.QueuedEntryDoc) Entry {
	return Entry{
		TrackID:  e.TrackID,
		Priority: Priority(e.Priority),
		OrderKey: e.OrderKey,
		AddedAt:  e.AddedAt,
		Mirrored: e.Mirrored,
	}
}
