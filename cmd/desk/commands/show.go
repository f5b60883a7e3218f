package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/s4_report"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the combined report",
	Long: `Renders the combined report to the terminal: the swing section
sorted by probability, the microcap section by expected move.

Rendering is read-only and fails only when no combined artifact exists
yet; run the pipeline first.

Example:
  go run ./cmd/desk run
  go run ./cmd/desk show`,
	RunE: showReport,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func showReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	return s4_report.NewEmitter(cfg, log).Emit(os.Stdout)
}
