package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var infoCmd = &cobra.Command{
	Use:   "info {track-ids...}",
	Short: "Display Catalog metadata and local download state for one or more tracks.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, trackIDs []string) {
		app.ExecuteInfoCommand(cmd.Context(), appConfig, trackIDs)
	},
}
