package app

import (
	"context"

	"github.com/soundeo-tools/soundeo-grabber/internal/blobsink/ipfs"
	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

// ExecuteIPFSCommand forces an upload through the IPFS sink, regardless of
// what backup sink the engine would otherwise default to. Unlike backup,
// it fails outright when no pinning endpoint is configured, since the
// operator explicitly asked for IPFS.
func ExecuteIPFSCommand(ctx context.Context, cfg *config.Config) {
	if cfg.IPFSBaseURL == "" {
		logger.Fatalf(ctx, "ipfs_base_url is not configured")
		return
	}

	uploadSnapshot(ctx, cfg, ipfs.New(cfg.IPFSBaseURL, cfg.IPFSAPIKey, cfg.IPFSAPIKeySecret))
}
