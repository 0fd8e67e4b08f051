// Package pairing caches the mapping from a Spotify track ID to the Catalog
// track ID it was matched against, so a playlist re-pair doesn't re-run the
// same Catalog search every time. Grounded on anyuan-chen-splitter's
// server/db/db.go: a database/sql handle over a local SQLite file, created
// with IF NOT EXISTS so repeated opens are idempotent.
package pairing

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS spotify_pairings (
	spotify_track_id TEXT PRIMARY KEY,
	catalog_track_id TEXT NOT NULL,
	spotify_title    TEXT NOT NULL,
	spotify_artist   TEXT NOT NULL,
	paired_at        INTEGER NOT NULL
);
`

// Store is a SQLite-backed cache of Spotify-to-Catalog track pairings.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the pairing database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pairing database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck,gosec // best-effort cleanup on the failure path.

		return nil, fmt.Errorf("failed to initialize pairing schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns the Catalog track ID previously paired to spotifyTrackID, if any.
func (s *Store) Lookup(spotifyTrackID string) (string, bool, error) {
	var catalogTrackID string

	err := s.db.QueryRow(
		`SELECT catalog_track_id FROM spotify_pairings WHERE spotify_track_id = ?`, spotifyTrackID,
	).Scan(&catalogTrackID)

	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("failed to look up pairing for %s: %w", spotifyTrackID, err)
	default:
		return catalogTrackID, true, nil
	}
}

// Save records a pairing, overwriting any prior pairing for the same Spotify track.
func (s *Store) Save(spotifyTrackID, catalogTrackID, title, artist string, pairedAt int64) error {
	_, err := s.db.Exec(
		`INSERT INTO spotify_pairings (spotify_track_id, catalog_track_id, spotify_title, spotify_artist, paired_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(spotify_track_id) DO UPDATE SET
			catalog_track_id = excluded.catalog_track_id,
			spotify_title    = excluded.spotify_title,
			spotify_artist   = excluded.spotify_artist,
			paired_at        = excluded.paired_at`,
		spotifyTrackID, catalogTrackID, title, artist, pairedAt)
	if err != nil {
		return fmt.Errorf("failed to save pairing for %s: %w", spotifyTrackID, err)
	}

	return nil
}
