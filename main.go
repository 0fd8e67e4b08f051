// Command soundeo-grabber drives the download orchestration engine: it
// discovers tracks on the catalog, maintains the durable priority queue,
// harvests files within the per-user rate budget, and mirrors state to
// the cloud document store.
package main

import "github.com/soundeo-tools/soundeo-grabber/cmd"

func main() {
	cmd.Execute()
}
