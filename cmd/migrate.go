package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Push locally tracked tracks and/or the download queue to the Cloud Mirror.",
	Run: func(cmd *cobra.Command, _ []string) {
		flags := cmd.Flags()

		individualTracks, _ := flags.GetBool("individual-tracks")
		queue, _ := flags.GetBool("queue")
		lightOnly, _ := flags.GetBool("light-only")
		queuedTracks, _ := flags.GetBool("queued-tracks")
		soundeo, _ := flags.GetBool("soundeo")
		remaining, _ := flags.GetBool("remaining")

		app.ExecuteMigrateCommand(cmd.Context(), appConfig, app.MigrateOptions{
			IndividualTracks: individualTracks,
			Queue:            queue,
			LightOnly:        lightOnly,
			QueuedTracks:     queuedTracks,
			Soundeo:          soundeo,
			Remaining:        remaining,
		})
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	migrateCmd.Flags().Bool("individual-tracks", false, "mirror the track store to the Cloud Mirror's tracks collection.")
	migrateCmd.Flags().Bool("queue", false, "mirror the download queue to the Cloud Mirror's queue subcollection.")

	migrateCmd.Flags().Bool("light-only", false, "deprecated, no-op (kept for CLI compatibility).")
	migrateCmd.Flags().Bool("queued-tracks", false, "deprecated, no-op (kept for CLI compatibility).")
	migrateCmd.Flags().Bool("soundeo", false, "deprecated, no-op (kept for CLI compatibility).")
	migrateCmd.Flags().Bool("remaining", false, "deprecated, no-op (kept for CLI compatibility).")

	_ = migrateCmd.Flags().MarkHidden("light-only")
	_ = migrateCmd.Flags().MarkHidden("queued-tracks")
	_ = migrateCmd.Flags().MarkHidden("soundeo")
	_ = migrateCmd.Flags().MarkHidden("remaining")
}
