package cmd_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ConfigDump mirrors the reduced view dumpConfig writes to stdout.
type ConfigDump struct {
	User                   string `json:"user"`
	DownloadPath           string `json:"download_path"`
	CatalogBaseURL         string `json:"catalog_base_url"`
	MaxConcurrentDownloads int64  `json:"max_concurrent_downloads"`
	LogLevel               string `json:"log_level"`
}

const (
	// testBinaryName is the name of the test binary for E2E tests.
	testBinaryName = "soundeo-grabber-test"
)

var (
	// testBinaryPath is the absolute path to the test binary.
	testBinaryPath string
	// testBuildOnce ensures the binary is built only once.
	testBuildOnce sync.Once
	// testBuildErr stores any error that occurred during build.
	testBuildErr error //nolint:errname // This is a test error, not intended to be used in production.
)

// getTestBinaryName returns the test binary name with the correct extension for the platform.
func getTestBinaryName() string {
	if runtime.GOOS == "windows" {
		return testBinaryName + ".exe"
	}

	return testBinaryName
}

// ensureTestBinary ensures the test binary exists and is built.
func ensureTestBinary() error {
	testBuildOnce.Do(func() {
		if _, err := os.Stat(testBinaryPath); err == nil {
			testBuildErr = nil

			return
		}

		buildCmd := exec.Command("go", "build", "-o", testBinaryPath, "..")
		testBuildErr = buildCmd.Run()
	})

	return testBuildErr
}

// execTestBinary executes the test binary with the given arguments.
func execTestBinary(args ...string) *exec.Cmd {
	return exec.Command(testBinaryPath, args...)
}

// TestMain builds the binary before running E2E tests.
func TestMain(m *testing.M) {
	wd, err := os.Getwd()
	if err != nil {
		os.Exit(1)
	}

	testBinaryPath = filepath.Join(wd, getTestBinaryName())

	if err = ensureTestBinary(); err != nil {
		os.Exit(1)
	}

	code := m.Run()

	_ = os.Remove(testBinaryPath)

	os.Exit(code)
}

const baseE2EConfig = `
user: "test_user"
session_cookie: "test_cookie"
download_path: "/tmp/test-output"
log_level: "info"
retry_attempts_count: 3
min_retry_pause: "1s"
max_retry_pause: "3s"
max_concurrent_downloads: 1
migration_concurrency: 1
firebase_batch_chunk_size: 20
`

// runWithConfigDump runs `config` with SOUNDEO_GRABBER_DUMP_CONFIG set, which
// makes PersistentPreRun dump config as JSON and exit before the subcommand body runs.
func runWithConfigDump(t *testing.T, configPath string) *ConfigDump {
	t.Helper()

	require.NoError(t, ensureTestBinary())

	cmd := execTestBinary("--config", configPath, "config")
	cmd.Env = append(os.Environ(), "SOUNDEO_GRABBER_DUMP_CONFIG=1")

	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %v, output: %s", err, string(output))
		return nil
	}

	var dump ConfigDump
	if err = json.Unmarshal(output, &dump); err != nil {
		t.Logf("Failed to parse config dump: %v, output: %s", err, string(output))
		return nil
	}

	return &dump
}

// TestE2E_ConfigDump_ReflectsFileValues confirms the loaded config round-trips
// through the JSON dump hook used by this suite to introspect process state.
func TestE2E_ConfigDump_ReflectsFileValues(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(baseE2EConfig), 0o644))

	dump := runWithConfigDump(t, configPath)
	require.NotNil(t, dump, "Failed to get config dump")

	assert.Equal(t, "test_user", dump.User)
	assert.Equal(t, "/tmp/test-output", dump.DownloadPath)
	assert.Equal(t, "info", dump.LogLevel)
	assert.Equal(t, int64(1), dump.MaxConcurrentDownloads)
}

// TestE2E_MissingConfig_FailsFast confirms a missing config file aborts before
// any subcommand body runs.
func TestE2E_MissingConfig_FailsFast(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	missingPath := filepath.Join(tempDir, "does-not-exist.yaml")

	require.NoError(t, ensureTestBinary())

	cmd := execTestBinary("--config", missingPath, "config")

	output, err := cmd.CombinedOutput()
	require.Error(t, err, "expected failure for missing config, got output: %s", output)
}

// TestE2E_InvalidUser_FailsValidation confirms an empty `user` field is
// rejected by config.ValidateConfig before any subcommand runs.
func TestE2E_InvalidUser_FailsValidation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
download_path: "/tmp/test-output"
log_level: "info"
retry_attempts_count: 3
min_retry_pause: "1s"
max_retry_pause: "3s"
max_concurrent_downloads: 1
migration_concurrency: 1
firebase_batch_chunk_size: 20
`), 0o644))

	require.NoError(t, ensureTestBinary())

	cmd := execTestBinary("--config", configPath, "config")

	output, err := cmd.CombinedOutput()
	require.Error(t, err)
	assert.Contains(t, string(output), "user cannot be empty")
}
