// Package main implements the prefq daemon (prefqd), the rendezvous server
// that hands video pairs to human raters and collects their preferences for
// the producer that submitted them.
package main

import (
	"os"

	"github.com/concave-dev/prefq/cmd/prefqd/commands"
)

func main() {
	commands.SetupCommands()

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
