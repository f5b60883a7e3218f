package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "desk",
	Short: "SignalDesk - trading signal combination and enrichment engine",
	Long: `SignalDesk Unified CLI

Combines the swing model report and the microcap scanner output into a
single enriched desk report: market-cap bands, sector tags and the
freshest in-window headline per ticker.

Usage:
  go run ./cmd/desk [command]

Examples:
  go run ./cmd/desk run
  go run ./cmd/desk show
  go run ./cmd/desk serve
  go run ./cmd/desk scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
