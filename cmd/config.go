package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration (after defaults and environment fallbacks).",
	Run: func(cmd *cobra.Command, _ []string) {
		app.ExecuteConfigCommand(cmd.Context(), appConfig)
	},
}
