package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var spotifyCmd = &cobra.Command{
	Use:   "spotify {playlist-id}",
	Short: "Pair a Spotify playlist's tracks to Catalog tracks and enqueue the matches.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app.ExecuteSpotifyCommand(cmd.Context(), appConfig, args[0])
	},
}
