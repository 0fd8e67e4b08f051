package app

import (
	"context"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
	"github.com/soundeo-tools/soundeo-grabber/internal/service/auth"
)

// ExecuteLoginCommand opens a browser, waits for the user to log in to the
// Catalog site, and saves the resulting session cookie to the configuration
// file. The download pipeline itself never touches a browser; this command
// is the one place that acquires the session cookie it depends on.
func ExecuteLoginCommand(ctx context.Context, cfg *config.Config) {
	logger.Info(ctx, "Starting authentication process")

	authService, err := auth.NewService(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize authentication service: %v", err)
		return
	}

	sessionCookie, err := authService.LoginAndExtractToken(ctx)
	if err != nil {
		logger.Fatalf(ctx, "Authentication failed: %v", err)
		return
	}

	cfg.SessionCookie = sessionCookie

	if err = config.SaveConfig(cfg); err != nil {
		logger.Fatalf(ctx, "Failed to save configuration: %v", err)
		return
	}

	logger.Info(ctx, "Configuration updated successfully!")
	logger.Info(ctx, "Authentication complete! You can now run 'soundeo-grabber queue' to start downloading.")
}
