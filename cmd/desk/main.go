package main

import (
	"os"

	"github.com/signaldesk/signaldesk/cmd/desk/commands"
)

// main is the entry point for the SignalDesk CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
