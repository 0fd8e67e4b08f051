package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var urlCmd = &cobra.Command{
	Use:   "url {urls...}",
	Short: "Resolve one or more listing URLs into track IDs and enqueue them.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, urls []string) {
		app.ExecuteURLCommand(cmd.Context(), appConfig, urls)
	},
}
