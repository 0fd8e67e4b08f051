package cmd

import (
	"github.com/spf13/cobra"

	"github.com/soundeo-tools/soundeo-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Run the two-phase download pipeline over the current queue.",
	Run: func(cmd *cobra.Command, _ []string) {
		resumeQueue, _ := cmd.Flags().GetBool("resume-queue")
		serveMetrics, _ := cmd.Flags().GetBool("serve-metrics")
		genreFilter, _ := cmd.Flags().GetString("genre")

		app.ExecuteQueueCommand(cmd.Context(), appConfig, app.QueueOptions{
			ResumeQueue:  resumeQueue,
			ServeMetrics: serveMetrics,
			GenreFilter:  genreFilter,
		})
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	queueCmd.Flags().Bool("resume-queue", false,
		"skip the up-front rate-budget handshake refresh; Phase 1 refreshes the budget when it first finds none left.")
	queueCmd.Flags().Bool("serve-metrics", false,
		"serve a Prometheus /metrics endpoint alongside the run.")
	queueCmd.Flags().String("genre", "",
		"restrict the run to queue entries whose track genre matches exactly.")
}
