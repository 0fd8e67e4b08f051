package app

import (
	"context"
	"net/http"
	"time"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
	"github.com/soundeo-tools/soundeo-grabber/internal/metrics"
	"github.com/soundeo-tools/soundeo-grabber/internal/orchestrator"
)

// metricsReadHeaderTimeout guards the /metrics endpoint against a slow-loris client.
const metricsReadHeaderTimeout = 5 * time.Second

// QueueOptions are the queue command's flags.
type QueueOptions struct {
	// ResumeQueue skips the up-front login-handshake rate-budget refresh, for
	// resuming a run interrupted mid-way. The budget is not persisted, so it
	// starts at zero and Phase 1 refreshes it from the Catalog when it first
	// finds none left.
	ResumeQueue bool
	// ServeMetrics starts the Prometheus /metrics endpoint alongside the run.
	ServeMetrics bool
	// GenreFilter, when non-empty, restricts the run to one genre.
	GenreFilter string
}

// ExecuteQueueCommand drives the two-phase download pipeline over the
// current queue, until it drains or the context is cancelled.
func ExecuteQueueCommand(ctx context.Context, cfg *config.Config, opts QueueOptions) {
	d, err := buildDeps(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize: %v", err)
		return
	}

	if !opts.ResumeQueue {
		if err := d.budget.RefreshFromClient(ctx, d.catalog); err != nil {
			logger.Fatalf(ctx, "Failed to refresh rate budget: %v", err)
			return
		}

		logger.Infof(ctx, "Rate budget: %d remaining, resets in %s", d.budget.Remaining(), d.budget.ResetETA())
	}

	if opts.ServeMetrics {
		startMetricsServer(ctx, cfg, d)
	}

	orch := orchestrator.New(orchestrator.Deps{
		Catalog:      d.catalog,
		Tracks:       d.tracks,
		Queue:        d.queue,
		Available:    d.available,
		Budget:       d.budget,
		DownloadPath: cfg.DownloadPath,
		WorkerCount:  int(cfg.MaxConcurrentDownloads),
	})

	stats, err := orch.Run(ctx, opts.GenreFilter)
	if err != nil && ctx.Err() == nil {
		logger.Errorf(ctx, "Queue run ended with an error: %v", err)
	}

	if stats != nil {
		snapshot := stats.Snapshot()
		logger.Info(ctx, snapshot.String())

		for _, failure := range stats.Failures() {
			logger.Errorf(ctx, "track %s: %v", failure.TrackID, failure.Err)
		}
	}
}

// startMetricsServer binds the Prometheus endpoint in the background. A
// listen failure is logged, not fatal: metrics are observability, not a
// dependency the download run needs to make progress.
func startMetricsServer(ctx context.Context, cfg *config.Config, d *deps) {
	registry := metrics.New(d.queue, d.available, d.budget, metrics.NewCombinedMirrorBacklog(d.tracks.PendingMirrorCount))

	server := &http.Server{
		Addr:              cfg.MetricsListenAddr,
		Handler:           registry.Handler(),
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		logger.Infof(ctx, "Serving metrics on %s", cfg.MetricsListenAddr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf(ctx, "Metrics server stopped: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = server.Close() //nolint:errcheck // best-effort shutdown alongside the run it was serving.
	}()
}
