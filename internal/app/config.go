package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

// ExecuteConfigCommand prints the currently effective configuration (after
// defaults and environment fallbacks are applied) as indented JSON, so an
// operator can confirm what a command will actually run with.
func ExecuteConfigCommand(ctx context.Context, cfg *config.Config) {
	// SessionCookie is withheld: it's a bearer credential and config dumps
	// are the kind of thing that ends up pasted into a bug report.
	dump := struct {
		User                   string `json:"user"`
		DownloadPath           string `json:"download_path"`
		CatalogBaseURL         string `json:"catalog_base_url"`
		MaxConcurrentDownloads int64  `json:"max_concurrent_downloads"`
		MigrationConcurrency   int64  `json:"migration_concurrency"`
		RetryAttemptsCount     int64  `json:"retry_attempts_count"`
		MinRetryPause          string `json:"min_retry_pause"`
		MaxRetryPause          string `json:"max_retry_pause"`
		LogLevel               string `json:"log_level"`
		CloudProjectID         string `json:"cloud_project_id"`
		GoogleClientSecretEnv  string `json:"google_client_secret_env"`
		FirebaseBatchChunkSize int64  `json:"firebase_batch_chunk_size"`
		MetricsListenAddr      string `json:"metrics_listen_addr"`
		IPFSBaseURL            string `json:"ipfs_base_url"`
		SpotifyClientIDSet     bool   `json:"spotify_client_id_set"`
	}{
		User:                   cfg.User,
		DownloadPath:           cfg.DownloadPath,
		CatalogBaseURL:         cfg.CatalogBaseURL,
		MaxConcurrentDownloads: cfg.MaxConcurrentDownloads,
		MigrationConcurrency:   cfg.MigrationConcurrency,
		RetryAttemptsCount:     cfg.RetryAttemptsCount,
		MinRetryPause:          cfg.MinRetryPause,
		MaxRetryPause:          cfg.MaxRetryPause,
		LogLevel:               cfg.LogLevel,
		CloudProjectID:         cfg.CloudProjectID,
		GoogleClientSecretEnv:  cfg.GoogleClientSecretEnv,
		FirebaseBatchChunkSize: cfg.FirebaseBatchChunkSize,
		MetricsListenAddr:      cfg.MetricsListenAddr,
		IPFSBaseURL:            cfg.IPFSBaseURL,
		SpotifyClientIDSet:     cfg.SpotifyClientID != "",
	}

	jsonData, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		logger.Fatalf(ctx, "Failed to marshal configuration: %v", err)
		return
	}

	fmt.Println(string(jsonData))
}
