package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
)

const testBaseConfigContent = `
user: "config_user"
session_cookie: "config_cookie"
download_path: "/config/downloads"
log_level: "info"
retry_attempts_count: 3
min_retry_pause: "1s"
max_retry_pause: "3s"
max_concurrent_downloads: 1
migration_concurrency: 1
firebase_batch_chunk_size: 20
`

// TestInitConfig_LoadsAndValidatesFromFile exercises the same
// load-then-validate path PersistentPreRun runs on every invocation.
func TestInitConfig_LoadsAndValidatesFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testBaseConfigContent), 0o644))

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	require.NoError(t, config.ValidateConfig(cfg))

	assert.Equal(t, "config_user", cfg.User)
	assert.Equal(t, "config_cookie", cfg.SessionCookie)
	assert.Equal(t, "/config/downloads", cfg.DownloadPath)
	assert.Equal(t, config.DefaultMetricsListenAddr, cfg.MetricsListenAddr)
	assert.Equal(t, config.DefaultCatalogBaseURL, cfg.CatalogBaseURL)
}

// TestInitConfig_RejectsMissingUser mirrors the validation failure path
// initConfig's call to config.ValidateConfig triggers.
func TestInitConfig_RejectsMissingUser(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
download_path: "/config/downloads"
log_level: "info"
retry_attempts_count: 3
min_retry_pause: "1s"
max_retry_pause: "3s"
max_concurrent_downloads: 1
migration_concurrency: 1
firebase_batch_chunk_size: 20
`), 0o644))

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	err = config.ValidateConfig(cfg)
	require.ErrorIs(t, err, config.ErrEmptyUser)
}

// TestRootCmd_HasExpectedSubcommands guards against a subcommand silently
// falling out of the tree during a future refactor.
func TestRootCmd_HasExpectedSubcommands(t *testing.T) {
	want := []string{"login", "config", "queue", "url", "clean", "info", "spotify", "backup", "ipfs", "migrate", "version"}

	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}

	for _, name := range want {
		assert.Contains(t, got, name)
	}
}
