package app

import (
	"context"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

// MigrateOptions are the migrate command's flags.
type MigrateOptions struct {
	// IndividualTracks mirrors the track store to the Cloud Mirror's tracks collection.
	IndividualTracks bool
	// Queue mirrors the download queue to the Cloud Mirror's queue subcollection.
	Queue bool

	// LightOnly, QueuedTracks, Soundeo, and Remaining are accepted for
	// compatibility with the original nested-document migration flags but
	// are no-ops here: this rewrite's canonical storage is already the
	// per-document subcollection shape those flags used to migrate toward.
	LightOnly    bool
	QueuedTracks bool
	Soundeo      bool
	Remaining    bool
}

// ExecuteMigrateCommand pushes locally tracked tracks and/or the download
// queue to the Cloud Mirror. With neither --individual-tracks nor --queue
// set, it runs both.
func ExecuteMigrateCommand(ctx context.Context, cfg *config.Config, opts MigrateOptions) {
	warnDeprecatedMigrateFlags(ctx, opts)

	d, err := buildDeps(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize: %v", err)
		return
	}

	mirror, err := buildCloudMirror(cfg, d)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize cloud mirror: %v", err)
		return
	}

	runBoth := !opts.IndividualTracks && !opts.Queue

	if opts.IndividualTracks || runBoth {
		result, err := mirror.MirrorTracks(ctx)
		if err != nil {
			logger.Errorf(ctx, "Track migration failed: %v", err)
		} else {
			logger.Infof(ctx, "Tracks migrated: %d written, %d already mirrored", result.Written, result.AlreadyMirrored)
		}
	}

	if opts.Queue || runBoth {
		result, err := mirror.MigrateQueue(ctx)
		if err != nil {
			logger.Errorf(ctx, "Queue migration failed: %v", err)
		} else {
			logger.Info(ctx, result.String())
		}
	}
}

func warnDeprecatedMigrateFlags(ctx context.Context, opts MigrateOptions) {
	if opts.LightOnly || opts.QueuedTracks || opts.Soundeo || opts.Remaining {
		logger.Warn(ctx, "--light-only, --queued-tracks, --soundeo, and --remaining are deprecated "+
			"no-ops: this migration already writes directly to per-document subcollections")
	}
}
