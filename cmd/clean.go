package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove byte-identical duplicate files under the download path.",
	Run: func(cmd *cobra.Command, _ []string) {
		app.ExecuteCleanCommand(cmd.Context(), appConfig)
	},
}
