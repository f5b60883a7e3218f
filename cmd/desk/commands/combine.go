package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/pipeline"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// combineCmd represents the combine command
var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Rebuild the combined report from local artifacts",
	Long: `Runs the offline stages only: normalize, combine and enrich
from whatever artifacts are already on disk. No collaborator is called;
cap and news lookups are used as-is, stale or not.

Useful after dropping a fresh swing report or scanner file without
waiting for the scheduled run.

Example:
  go run ./cmd/desk combine`,
	RunE: runCombine,
}

func init() {
	rootCmd.AddCommand(combineCmd)
}

func runCombine(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	// No fetchers attached: the fetch stages report degraded and the
	// offline stages run on the existing caches.
	summary, err := pipeline.New(cfg, log).Run(context.Background())
	if summary != nil {
		printSummary(summary)
	}
	return err
}
