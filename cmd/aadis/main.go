// Command aadis is the entry point for the AADIS document QA system.
// It answers natural language questions over ingested documents via a CLI
// (through Cobra) and an optional HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/srinivastls/AADIS/cmd/aadis/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
