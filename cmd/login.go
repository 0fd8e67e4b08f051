package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the Catalog site and save the resulting session cookie.",
	Run: func(cmd *cobra.Command, _ []string) {
		app.ExecuteLoginCommand(cmd.Context(), appConfig)
	},
}
