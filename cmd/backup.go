package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload the local snapshot document through the configured blob sink.",
	Run: func(cmd *cobra.Command, _ []string) {
		app.ExecuteBackupCommand(cmd.Context(), appConfig)
	},
}
