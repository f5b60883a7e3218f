package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/contracts"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last run summary",
	Long: `Prints the persisted summary of the most recent pipeline run:
per-stage status, counts and durations.

Example:
  go run ./cmd/desk status`,
	RunE: showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := os.ReadFile(cfg.SummaryFile())
	if err != nil {
		return fmt.Errorf("no run summary yet: %w", err)
	}

	var summary contracts.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return fmt.Errorf("decode run summary: %w", err)
	}
	printSummary(&summary)
	return nil
}

func printSummary(summary *contracts.RunSummary) {
	fmt.Printf("Run %s started %s (%dms)\n",
		summary.RunID, summary.StartedAt.Format("2006-01-02 15:04:05 MST"), summary.Duration)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tSTATUS\tIN\tOUT\tMS\tREASON")
	for _, r := range summary.Stages {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Stage, r.Status, r.InputCount, r.OutputCount, r.Duration, r.Reason)
	}
	tw.Flush()

	switch {
	case summary.Failed():
		fmt.Println("Result: FAILED")
	case summary.Degraded():
		fmt.Println("Result: DEGRADED")
	default:
		fmt.Println("Result: OK")
	}
}
