package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var ipfsCmd = &cobra.Command{
	Use:   "ipfs",
	Short: "Upload the local snapshot document to IPFS, regardless of the configured default sink.",
	Run: func(cmd *cobra.Command, _ []string) {
		app.ExecuteIPFSCommand(cmd.Context(), appConfig)
	},
}
