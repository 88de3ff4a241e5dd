// Command recall is the local-first sync CLI: it manages the
// content-addressed blob store and flushes queued record changes to the
// remote Postgres store.
package main

import (
	"os"

	"github.com/deeprecall/recall/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
