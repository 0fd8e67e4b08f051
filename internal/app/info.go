package app

import (
	"context"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

// ExecuteInfoCommand prints a track's current Catalog metadata and its
// locally known download state side by side.
func ExecuteInfoCommand(ctx context.Context, cfg *config.Config, trackIDs []string) {
	d, err := buildDeps(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize: %v", err)
		return
	}

	for _, trackID := range trackIDs {
		metadata, err := d.catalog.GetTrackInfo(ctx, trackID)
		if err != nil {
			logger.Errorf(ctx, "track %s: failed to fetch metadata: %v", trackID, err)

			continue
		}

		local, known := d.tracks.Get(trackID)

		status := "not yet tracked locally"
		if known {
			switch {
			case local.AlreadyDownloaded:
				status = "downloaded"
			case local.Mirrored:
				status = "queued, mirrored to cloud"
			default:
				status = "queued"
			}
		}

		logger.Infof(ctx, "%s: %q by %s (%s, %s) — downloadable=%v restricted=%v broken=%v stem=%v — %s",
			trackID, metadata.Title, metadata.Label, metadata.Release, metadata.Genre,
			metadata.Downloadable, metadata.Restricted, metadata.Broken, metadata.StemVariant, status)
	}
}
