// Package app wires the download orchestration engine's collaborators
// (Catalog client, durable stores, Cloud Mirror, metrics, blob sink) into
// the operations exposed by the CLI (cmd/). Each Execute*Command function
// is the entry point one cobra.Command.Run delegates to.
package app
