// Package snapshot owns the single on-disk document that backs every
// store in this module, and the global lock that serializes mutations
// against it — the same "read latest, apply, write" discipline the
// teacher's config package uses for its own file, generalized to the
// full set of durable stores.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/soundeo-tools/soundeo-grabber/internal/constants"
)

// Filename is the name of the single local snapshot document, placed under the
// configured download path.
const Filename = "soundeo_log.json"

// Document is the full persisted snapshot. Every store's in-memory state is a
// view over one of these fields; Document itself carries no behavior.
type Document struct {
	LastUpdate int64 `json:"last_update"`

	QueuedTracks    []QueuedEntryDoc        `json:"queued_tracks"`
	AvailableTracks []string                `json:"available_tracks"`
	TracksInfo      map[string]TrackRecord  `json:"tracks_info"`
	GenreTracker    map[string]GenreDoc     `json:"genre_tracker"`
	URLList         []string                `json:"url_list"`

	FirebaseMigratedTracks []string `json:"firebase_migrated_tracks"`
	FirebaseMigratedQueues []string `json:"firebase_migrated_queues"`
}

// QueuedEntryDoc is the on-disk shape of a Queue Store entry.
type QueuedEntryDoc struct {
	TrackID  string  `json:"track_id"`
	Priority string  `json:"priority"`
	OrderKey float64 `json:"order_key"`
	AddedAt  int64   `json:"added_at"`
	Mirrored bool    `json:"mirrored"`
}

// TrackRecord is the on-disk shape of a Track Store entry.
type TrackRecord struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	TrackURL          string `json:"track_url"`
	Cover             string `json:"cover"`
	Release           string `json:"release"`
	Label             string `json:"label"`
	Genre             string `json:"genre"`
	Date              string `json:"date"`
	BPM               uint32 `json:"bpm"`
	Key               string `json:"key"`
	SizeBytes         int64  `json:"size_bytes,omitempty"`
	Downloadable      bool   `json:"downloadable"`
	AlreadyDownloaded bool   `json:"already_downloaded"`
	Mirrored          bool   `json:"mirrored"`
}

// GenreDoc is the on-disk shape of a tracked genre watermark.
type GenreDoc struct {
	GenreID          uint32   `json:"genre_id"`
	GenreName        string   `json:"genre_name"`
	LastCheckedDate  string   `json:"last_checked_date"`
	CreatedAt        int64    `json:"created_at"`
	FavoriteArtists  []string `json:"favorite_artists"`
}

// Store owns the document, the on-disk path, and the lock that every
// mutating store operation in this module takes before reading or writing it.
type Store struct {
	mu   sync.Mutex
	path string
	doc  *Document
}

// Open loads the snapshot document from downloadPath, creating an empty one
// in memory (not yet persisted) if none exists yet.
func Open(downloadPath string) (*Store, error) {
	path := filepath.Join(downloadPath, Filename)

	doc, err := load(path)
	if err != nil {
		return nil, err
	}

	return &Store{path: path, doc: doc}, nil
}

func load(path string) (*Document, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is derived from operator-supplied config, not request input.
	if err != nil {
		if os.IsNotExist(err) {
			return newDocument(), nil
		}

		return nil, fmt.Errorf("failed to read snapshot document: %w", err)
	}

	var doc Document
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot document: %w", err)
	}

	normalize(&doc)

	return &doc, nil
}

func newDocument() *Document {
	doc := &Document{
		TracksInfo:   make(map[string]TrackRecord),
		GenreTracker: make(map[string]GenreDoc),
	}
	normalize(doc)

	return doc
}

func normalize(doc *Document) {
	if doc.TracksInfo == nil {
		doc.TracksInfo = make(map[string]TrackRecord)
	}

	if doc.GenreTracker == nil {
		doc.GenreTracker = make(map[string]GenreDoc)
	}
}

// WithLock runs fn against the live document under the store's global lock,
// then atomically persists the (possibly mutated) document to disk. fn
// should not retain the *Document pointer past its own execution.
func (s *Store) WithLock(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.doc); err != nil {
		return err
	}

	return s.persist()
}

// View runs fn against the live document under the store's global lock,
// without writing back to disk. Use for read-only operations.
func (s *Store) View(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.doc)
}

func (s *Store) persist() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot document: %w", err)
	}

	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, ".soundeo_log-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}

	tmpPath := tmp.Name()

	if _, err = tmp.Write(raw); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		os.Remove(tmpPath) //nolint:errcheck

		return fmt.Errorf("failed to write temp snapshot file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck

		return fmt.Errorf("failed to close temp snapshot file: %w", err)
	}

	if err = os.Chmod(tmpPath, constants.DefaultFilePermissions); err != nil {
		os.Remove(tmpPath) //nolint:errcheck

		return fmt.Errorf("failed to set snapshot file permissions: %w", err)
	}

	if err = os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck

		return fmt.Errorf("failed to rename temp snapshot file into place: %w", err)
	}

	return nil
}
