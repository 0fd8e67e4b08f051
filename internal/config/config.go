package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/soundeo-tools/soundeo-grabber/internal/constants"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

// Config holds all configuration settings for the download orchestration engine.
type Config struct {
	// User is the Catalog username, used as the per-user budget/queue namespace.
	User string `mapstructure:"user"`
	// SessionCookie is the opaque bearer cookie obtained from the Session Provider collaborator.
	SessionCookie string `mapstructure:"session_cookie"`
	// DownloadPath is the directory where downloaded files and the local snapshot document live.
	DownloadPath string `mapstructure:"download_path"`
	// CatalogBaseURL is the catalog site's origin. Defaults to the production site.
	CatalogBaseURL string `mapstructure:"catalog_base_url"`
	// MaxConcurrentDownloads is the size of the download worker pool (Phase 1 and Phase 2).
	MaxConcurrentDownloads int64 `mapstructure:"max_concurrent_downloads"`
	// MigrationConcurrency is the size of the cloud migration worker pool.
	MigrationConcurrency int64 `mapstructure:"migration_concurrency"`
	// RateBudgetMainOverride is loaded with the rest of the configuration; no
	// component reads it, so the main counter reported by the Catalog is used unchanged.
	RateBudgetMainOverride uint32 `mapstructure:"rate_budget_main_override"`
	// RateBudgetBonusOverride is loaded with the rest of the configuration; no
	// component reads it, so the bonus counter reported by the Catalog is used unchanged.
	RateBudgetBonusOverride uint32 `mapstructure:"rate_budget_bonus_override"`
	// RetryAttemptsCount is a retry count that must be positive; no HTTP call or
	// batch write reads it (Cloud Mirror batch writes use a fixed attempt count).
	RetryAttemptsCount int64 `mapstructure:"retry_attempts_count"`
	// MinRetryPause is a minimum retry pause (e.g. "1s"); it is parsed and
	// validated, and no retry loop reads it.
	MinRetryPause string `mapstructure:"min_retry_pause"`
	// MaxRetryPause is a maximum retry pause (e.g. "3s"); it is parsed and
	// validated, and no retry loop reads it.
	MaxRetryPause string `mapstructure:"max_retry_pause"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// CloudProjectID is the cloud document store's project ID.
	CloudProjectID string `mapstructure:"cloud_project_id"`
	// GoogleClientSecretEnv names the environment variable holding the cloud auth client secret.
	GoogleClientSecretEnv string `mapstructure:"google_client_secret_env"`
	// FirebaseBatchChunkSize is the practical batch size used for bulk document writes.
	FirebaseBatchChunkSize int64 `mapstructure:"firebase_batch_chunk_size"`
	// MetricsListenAddr is the address the Prometheus endpoint binds to when enabled.
	MetricsListenAddr string `mapstructure:"metrics_listen_addr"`

	// IPFSBaseURL is the IPFS pinning endpoint's origin. Empty disables the IPFS blob sink
	// (the noop sink is used instead).
	IPFSBaseURL string `mapstructure:"ipfs_base_url"`
	// IPFSAPIKey/IPFSAPIKeySecret are the pinning endpoint's basic-auth credentials.
	IPFSAPIKey       string `mapstructure:"ipfs_api_key"`
	IPFSAPIKeySecret string `mapstructure:"ipfs_api_key_secret"`

	// SpotifyClientID/SpotifyClientSecret are the client-credentials pair used to pair a
	// Spotify playlist's tracks to Catalog tracks (§4.A Search). Read from
	// SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET if unset here.
	SpotifyClientID     string `mapstructure:"spotify_client_id"`
	SpotifyClientSecret string `mapstructure:"spotify_client_secret"`

	// ParsedMinRetryPause is the parsed minimum retry pause duration.
	ParsedMinRetryPause time.Duration
	// ParsedMaxRetryPause is the parsed maximum retry pause duration.
	ParsedMaxRetryPause time.Duration
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".soundeo-grabber.yaml"

	// DefaultMaxConcurrentDownloads is the default size of the download worker pool.
	DefaultMaxConcurrentDownloads = 4

	// DefaultMigrationConcurrency is the default size of the cloud migration worker pool.
	DefaultMigrationConcurrency = 3

	// DefaultFirebaseBatchChunkSize is the practical chunk size used for batch writes.
	DefaultFirebaseBatchChunkSize = 20

	// FirestoreBatchWriteLimit is the hard cap on operations in a single batchWrite request.
	FirestoreBatchWriteLimit = 500

	// DefaultMaxLogLength is the default maximum size (in bytes) of a single logged HTTP dump.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// DefaultGoogleClientSecretEnv is the default environment variable name for the cloud auth secret.
	DefaultGoogleClientSecretEnv = "GOOGLE_CLIENT_SECRET"

	// DefaultCatalogBaseURL is the catalog site's production origin.
	DefaultCatalogBaseURL = "https://soundeo.com"

	// DefaultMetricsListenAddr is the default bind address for the optional Prometheus endpoint.
	DefaultMetricsListenAddr = ":9090"
)

// Static error definitions for better error handling.
var (
	// ErrEmptyUser indicates that the Catalog username is missing.
	ErrEmptyUser = errors.New("user cannot be empty")
	// ErrEmptyDownloadPath indicates that the download path is missing.
	ErrEmptyDownloadPath = errors.New("download_path cannot be empty")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidRetryAttempts indicates that the retry attempts count is invalid.
	ErrInvalidRetryAttempts = errors.New("retry_attempts_count must be a positive integer")
	// ErrInvalidMinRetryPause indicates that the min retry pause duration is invalid.
	ErrInvalidMinRetryPause = errors.New("min_retry_pause must be positive")
	// ErrInvalidMaxRetryPause indicates that the max retry pause duration is invalid.
	ErrInvalidMaxRetryPause = errors.New("max_retry_pause must be positive")
	// ErrInvalidConcurrentDownloads indicates that the concurrent downloads count is invalid.
	ErrInvalidConcurrentDownloads = errors.New("max_concurrent_downloads must be a positive integer")
	// ErrInvalidMigrationConcurrency indicates that the migration concurrency is invalid.
	ErrInvalidMigrationConcurrency = errors.New("migration_concurrency must be a positive integer")
	// ErrBatchChunkExceedsLimit indicates that firebase_batch_chunk_size exceeds Firestore's hard cap.
	ErrBatchChunkExceedsLimit = errors.New("firebase_batch_chunk_size exceeds the Firestore batch write limit")
)

// LoadConfig loads configuration settings from a YAML file, applying defaults for anything unset.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	viper.SetDefault("max_concurrent_downloads", DefaultMaxConcurrentDownloads)
	viper.SetDefault("migration_concurrency", DefaultMigrationConcurrency)
	viper.SetDefault("firebase_batch_chunk_size", DefaultFirebaseBatchChunkSize)
	viper.SetDefault("retry_attempts_count", 3)
	viper.SetDefault("min_retry_pause", "1s")
	viper.SetDefault("max_retry_pause", "3s")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("google_client_secret_env", DefaultGoogleClientSecretEnv)
	viper.SetDefault("catalog_base_url", DefaultCatalogBaseURL)
	viper.SetDefault("metrics_listen_addr", DefaultMetricsListenAddr)

	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
func ValidateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.User) == "" {
		return ErrEmptyUser
	}

	if strings.TrimSpace(cfg.DownloadPath) == "" {
		return ErrEmptyDownloadPath
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if cfg.RetryAttemptsCount <= 0 {
		return ErrInvalidRetryAttempts
	}

	var err error

	cfg.ParsedMinRetryPause, err = time.ParseDuration(cfg.MinRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse min retry pause: %w", err)
	}

	if cfg.ParsedMinRetryPause <= 0 {
		return ErrInvalidMinRetryPause
	}

	cfg.ParsedMaxRetryPause, err = time.ParseDuration(cfg.MaxRetryPause)
	if err != nil {
		return fmt.Errorf("failed to parse max retry pause: %w", err)
	}

	if cfg.ParsedMaxRetryPause <= 0 {
		return ErrInvalidMaxRetryPause
	}

	if cfg.MaxConcurrentDownloads <= 0 {
		return ErrInvalidConcurrentDownloads
	}

	if cfg.MigrationConcurrency <= 0 {
		return ErrInvalidMigrationConcurrency
	}

	if cfg.FirebaseBatchChunkSize <= 0 || cfg.FirebaseBatchChunkSize > FirestoreBatchWriteLimit {
		return fmt.Errorf("%w: must be between 1 and %d", ErrBatchChunkExceedsLimit, FirestoreBatchWriteLimit)
	}

	if cfg.GoogleClientSecretEnv == "" {
		cfg.GoogleClientSecretEnv = DefaultGoogleClientSecretEnv
	}

	if strings.TrimSpace(cfg.CatalogBaseURL) == "" {
		cfg.CatalogBaseURL = DefaultCatalogBaseURL
	}

	if strings.TrimSpace(cfg.MetricsListenAddr) == "" {
		cfg.MetricsListenAddr = DefaultMetricsListenAddr
	}

	if cfg.SpotifyClientID == "" {
		cfg.SpotifyClientID = os.Getenv("SPOTIFY_CLIENT_ID")
	}

	if cfg.SpotifyClientSecret == "" {
		cfg.SpotifyClientSecret = os.Getenv("SPOTIFY_CLIENT_SECRET")
	}

	return nil
}

// SaveConfig saves the configuration to the file while preserving the original format and order.
func SaveConfig(cfg *Config) error {
	configFile := getConfigFilePath()

	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, cfg, err)
	}

	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	updateSessionCookieInNode(&node, cfg.SessionCookie)

	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

func handleMissingConfigFile(configFile string, cfg *Config, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	viper.Set("user", cfg.User)
	viper.Set("session_cookie", cfg.SessionCookie)
	viper.Set("download_path", cfg.DownloadPath)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// updateSessionCookieInNode updates the session_cookie value in the YAML node tree,
// preserving key order and quoting style the way the original file had it.
func updateSessionCookieInNode(node *yaml.Node, sessionCookie string) {
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	for i := 0; i < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		if keyNode.Value == "session_cookie" {
			valueNode.Value = sessionCookie

			if valueNode.Style == 0 {
				valueNode.Style = yaml.DoubleQuotedStyle
			}

			break
		}
	}
}
