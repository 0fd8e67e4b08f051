package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soundeo-tools/soundeo-grabber/internal/blobsink"
	"github.com/soundeo-tools/soundeo-grabber/internal/blobsink/ipfs"
	"github.com/soundeo-tools/soundeo-grabber/internal/blobsink/noop"
	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
	"github.com/soundeo-tools/soundeo-grabber/internal/store/snapshot"
)

// selectBlobSink picks the IPFS sink when an IPFS endpoint (ipfs_base_url)
// is configured, falling back to the noop sink otherwise — backup upload has
// no required default collaborator.
func selectBlobSink(cfg *config.Config) blobsink.Sink {
	if cfg.IPFSBaseURL == "" {
		return noop.New()
	}

	return ipfs.New(cfg.IPFSBaseURL, cfg.IPFSAPIKey, cfg.IPFSAPIKeySecret)
}

// ExecuteBackupCommand uploads the local snapshot document through the
// configured blob sink, using the noop sink when no backup endpoint is set.
func ExecuteBackupCommand(ctx context.Context, cfg *config.Config) {
	uploadSnapshot(ctx, cfg, selectBlobSink(cfg))
}

func uploadSnapshot(ctx context.Context, cfg *config.Config, sink blobsink.Sink) {
	path := filepath.Join(cfg.DownloadPath, snapshot.Filename)

	file, err := os.Open(path)
	if err != nil {
		logger.Fatalf(ctx, "Failed to open snapshot %s: %v", path, err)
		return
	}
	defer file.Close() //nolint:errcheck // read-only handle.

	hash, err := sink.Upload(ctx, snapshot.Filename, file)
	if err != nil {
		logger.Fatalf(ctx, "Backup upload failed: %v", err)
		return
	}

	if hash == "" {
		logger.Info(ctx, "Backup uploaded (no content identifier returned by the configured sink)")

		return
	}

	logger.Info(ctx, fmt.Sprintf("Backup uploaded: %s", hash))
}
