package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		User:                   "dj_test",
		SessionCookie:          "snda=abc123",
		DownloadPath:           "/tmp/soundeo-grabber",
		MaxConcurrentDownloads: 4,
		MigrationConcurrency:   3,
		RetryAttemptsCount:     3,
		MinRetryPause:          "1s",
		MaxRetryPause:          "3s",
		LogLevel:               "info",
		FirebaseBatchChunkSize: 20,
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, DefaultGoogleClientSecretEnv, cfg.GoogleClientSecretEnv)
}

func TestValidateConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty user",
			mutate:  func(c *Config) { c.User = "  " },
			wantErr: ErrEmptyUser,
		},
		{
			name:    "empty download path",
			mutate:  func(c *Config) { c.DownloadPath = "" },
			wantErr: ErrEmptyDownloadPath,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrUnknownLogLevel,
		},
		{
			name:    "zero retry attempts",
			mutate:  func(c *Config) { c.RetryAttemptsCount = 0 },
			wantErr: ErrInvalidRetryAttempts,
		},
		{
			name:    "zero concurrent downloads",
			mutate:  func(c *Config) { c.MaxConcurrentDownloads = 0 },
			wantErr: ErrInvalidConcurrentDownloads,
		},
		{
			name:    "zero migration concurrency",
			mutate:  func(c *Config) { c.MigrationConcurrency = 0 },
			wantErr: ErrInvalidMigrationConcurrency,
		},
		{
			name:    "batch chunk exceeds limit",
			mutate:  func(c *Config) { c.FirebaseBatchChunkSize = 1000 },
			wantErr: ErrBatchChunkExceedsLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateConfig_ParsesDurations(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.MinRetryPause = "2s"
	cfg.MaxRetryPause = "10s"

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "2s", cfg.ParsedMinRetryPause.String())
	assert.Equal(t, "10s", cfg.ParsedMaxRetryPause.String())
}

func TestValidateConfig_FillsCatalogAndMetricsDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CatalogBaseURL = ""
	cfg.MetricsListenAddr = "  "

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, DefaultCatalogBaseURL, cfg.CatalogBaseURL)
	assert.Equal(t, DefaultMetricsListenAddr, cfg.MetricsListenAddr)
}

func TestValidateConfig_LeavesExplicitCatalogAndMetricsValues(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CatalogBaseURL = "https://example.invalid"
	cfg.MetricsListenAddr = "127.0.0.1:9999"

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "https://example.invalid", cfg.CatalogBaseURL)
	assert.Equal(t, "127.0.0.1:9999", cfg.MetricsListenAddr)
}

func TestValidateConfig_IPFSFieldsPassThroughUnvalidated(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.IPFSBaseURL = "https://ipfs.example.invalid"
	cfg.IPFSAPIKey = "key"
	cfg.IPFSAPIKeySecret = "secret"

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "https://ipfs.example.invalid", cfg.IPFSBaseURL)
	assert.Equal(t, "key", cfg.IPFSAPIKey)
	assert.Equal(t, "secret", cfg.IPFSAPIKeySecret)
}

func TestValidateConfig_SpotifyCredentialsFallBackToEnv(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")

	cfg := validConfig()
	cfg.SpotifyClientID = ""
	cfg.SpotifyClientSecret = ""

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "env-id", cfg.SpotifyClientID)
	assert.Equal(t, "env-secret", cfg.SpotifyClientSecret)
}

func TestValidateConfig_SpotifyCredentialsPreferExplicitValue(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")

	cfg := validConfig()
	cfg.SpotifyClientID = "explicit-id"
	cfg.SpotifyClientSecret = "explicit-secret"

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "explicit-id", cfg.SpotifyClientID)
	assert.Equal(t, "explicit-secret", cfg.SpotifyClientSecret)
}
