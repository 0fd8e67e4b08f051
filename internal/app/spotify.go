package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/soundeo-tools/soundeo-grabber/internal/client/spotify"
	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/pairing"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
)

// pairingDBFilename is the SQLite file holding cached Spotify-to-Catalog pairings.
const pairingDBFilename = "spotify_pairings.db"

// ExecuteSpotifyCommand pairs a Spotify playlist's tracks to Catalog tracks
// via search, caching the result, and enqueues every match.
func ExecuteSpotifyCommand(ctx context.Context, cfg *config.Config, playlistID string) {
	d, err := buildDeps(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize: %v", err)
		return
	}

	spotifyClient, err := spotify.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize Spotify client: %v", err)
		return
	}

	pairings, err := pairing.Open(filepath.Join(cfg.DownloadPath, pairingDBFilename))
	if err != nil {
		logger.Fatalf(ctx, "Failed to open pairing cache: %v", err)
		return
	}
	defer pairings.Close() //nolint:errcheck // best-effort close on process exit.

	tracks, err := spotifyClient.PlaylistTracks(ctx, playlistID)
	if err != nil {
		logger.Fatalf(ctx, "Failed to fetch playlist: %v", err)
		return
	}

	var paired, enqueued, unmatched int

	for _, track := range tracks {
		catalogTrackID, ok, err := pairings.Lookup(track.ID)
		if err != nil {
			logger.Errorf(ctx, "Pairing lookup failed for %s: %v", track.ID, err)

			continue
		}

		if !ok {
			catalogTrackID, ok = matchTrack(ctx, d, track)
			if !ok {
				unmatched++

				continue
			}

			if err := pairings.Save(track.ID, catalogTrackID, track.Title, track.Artist, 0); err != nil {
				logger.Errorf(ctx, "Failed to save pairing for %s: %v", track.ID, err)
			}

			paired++
		}

		added, err := d.queue.Enqueue(catalogTrackID, queue.PriorityNormal)
		if err != nil {
			logger.Errorf(ctx, "Failed to enqueue %s: %v", catalogTrackID, err)

			continue
		}

		if added {
			enqueued++
		}
	}

	logger.Infof(ctx, "Spotify playlist %s: %d track(s), %d newly paired, %d enqueued, %d unmatched",
		playlistID, len(tracks), paired, enqueued, unmatched)
}

// matchTrack searches the Catalog by the track's title and returns the first
// autocomplete hit whose title equals the track's title and whose artist
// contains the track's artist, both compared case-insensitively.
func matchTrack(ctx context.Context, d *deps, track spotify.Track) (string, bool) {
	hits, err := d.catalog.Search(ctx, track.Title)
	if err != nil {
		logger.Errorf(ctx, "Search failed for %q: %v", track.Title, err)

		return "", false
	}

	for _, hit := range hits {
		if strings.EqualFold(hit.Title, track.Title) && strings.Contains(strings.ToLower(hit.Artist), strings.ToLower(track.Artist)) {
			return hit.TrackID, true
		}
	}

	return "", false
}
