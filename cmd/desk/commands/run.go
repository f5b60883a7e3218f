package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/pkg/logger"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline once",
	Long: `Runs every pipeline stage in order:

  S0  resolve the ticker universe
  X   refresh cap and news lookups (configured collaborators only)
  S1  normalize swing and microcap reports
  S2  combine into the single report
  S3  enrich with cap bands and headlines
  S4  persist the combined artifacts

A run with missing inputs completes degraded; the exit code is non-zero
only when a stage failed to produce its artifact.

Example:
  go run ./cmd/desk run`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	summary, err := buildPipeline(cfg, log).Run(context.Background())
	if summary != nil {
		printSummary(summary)
	}
	return err
}
