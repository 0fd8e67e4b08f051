package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
	"github.com/soundeo-tools/soundeo-grabber/internal/version"
)

var (
	// configFilenameFromFlag stores the config filename provided via command-line flag.
	//
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	// appConfig stores the application configuration loaded from file and flags.
	//
	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	// rootCmd is the main Cobra command for the application.
	//
	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "soundeo-grabber",
		Short: "Download orchestration engine for a music catalog site's per-user rate budget.",
		Long: `Soundeo Grabber runs the two-phase download pipeline (URL acquisition, then
byte transfer) against a catalog site's per-user rate budget, tracking queue
state, available tracks, and genre watermarks in a local snapshot document
that can optionally be mirrored to a cloud document store.`,
		PersistentPreRun: initConfig,
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync() //nolint:errcheck // No need to check the error here, application will exit anyway.
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	version.AttachCobraVersionCommand(rootCmd)

	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmd.AddCommand(
		loginCmd,
		configCmd,
		queueCmd,
		urlCmd,
		cleanCmd,
		infoCmd,
		spotifyCmd,
		backupCmd,
		ipfsCmd,
		migrateCmd,
	)
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = config.ValidateConfig(appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Invalid configuration: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)

	// If SOUNDEO_GRABBER_DUMP_CONFIG is set, dump config as JSON and exit (for E2E tests).
	if os.Getenv("SOUNDEO_GRABBER_DUMP_CONFIG") == "1" {
		dumpConfig(appConfig)
		os.Exit(0)
	}
}

// dumpConfig dumps a reduced view of the configuration as JSON for E2E testing.
func dumpConfig(cfg *config.Config) {
	type ConfigDump struct {
		User                   string `json:"user"`
		DownloadPath           string `json:"download_path"`
		CatalogBaseURL         string `json:"catalog_base_url"`
		MaxConcurrentDownloads int64  `json:"max_concurrent_downloads"`
		LogLevel               string `json:"log_level"`
	}

	dump := ConfigDump{
		User:                   cfg.User,
		DownloadPath:           cfg.DownloadPath,
		CatalogBaseURL:         cfg.CatalogBaseURL,
		MaxConcurrentDownloads: cfg.MaxConcurrentDownloads,
		LogLevel:               cfg.LogLevel,
	}

	jsonData, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		// We need to use os.Stderr here because rootCmd.ErrOrStderr() is not available in the test environment.
		fmt.Fprintf(os.Stderr, "Failed to marshal config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(jsonData))
}
