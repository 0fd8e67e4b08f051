// Package version carries build-time identification, injected via linker flags.
package version

import "github.com/spf13/cobra"

// These are overridden at build time with -ldflags "-X ...".
//
//nolint:gochecknoglobals // build-time injected version metadata.
var (
	// Version is the semantic version of this build.
	Version = "0.1.0"
	// Commit is the VCS commit hash this build was produced from.
	Commit = "none"
	// BuildTime is when this build was produced.
	BuildTime = "unknown"
)

// Short returns the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable description of version, commit, and build time.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}

// AttachCobraVersionCommand registers a "version" subcommand on the given root command.
func AttachCobraVersionCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(Full())
		},
	})
}
