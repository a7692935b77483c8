// Command doctorai is the entry point for the Doctor AI medical chatbot.
// It provides a CLI interface (via Cobra) and an HTTP server with a web UI
// for interactive use.
package main

import (
	"fmt"
	"os"

	"github.com/caresense/doctorai/cmd/doctorai/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
