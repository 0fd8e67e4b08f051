package app

import (
	"context"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/queue"
)

// ExecuteURLCommand resolves each listing URL into its constituent track
// IDs, enqueues the ones not already tracked, and records the raw URL so a
// listing can be re-walked later without retyping it.
func ExecuteURLCommand(ctx context.Context, cfg *config.Config, urls []string) {
	d, err := buildDeps(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize: %v", err)
		return
	}

	for _, rawURL := range urls {
		if _, err := d.urls.Add(rawURL); err != nil {
			logger.Errorf(ctx, "Failed to record URL %s: %v", rawURL, err)
		}

		trackIDs, err := d.catalog.FetchListing(ctx, rawURL)
		if err != nil {
			logger.Errorf(ctx, "Failed to resolve listing %s: %v", rawURL, err)

			continue
		}

		var enqueued int

		for trackID := range trackIDs {
			added, err := d.queue.Enqueue(trackID, queue.PriorityNormal)
			if err != nil {
				logger.Errorf(ctx, "Failed to enqueue %s: %v", trackID, err)

				continue
			}

			if added {
				enqueued++
			}
		}

		logger.Infof(ctx, "%s: resolved %d track(s), enqueued %d new", rawURL, len(trackIDs), enqueued)
	}
}
