package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/external/capsapi"
	"github.com/signaldesk/signaldesk/internal/s0_universe"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// capsCmd represents the caps command
var capsCmd = &cobra.Command{
	Use:   "caps",
	Short: "Refresh the market-cap cache",
	Long: `Runs the market-cap collaborator for the resolved universe and
merges fresh records into the cap cache. Tickers the fetch missed keep
their previous values.

Example:
  go run ./cmd/desk caps`,
	RunE: fetchCaps,
}

func init() {
	rootCmd.AddCommand(capsCmd)
}

func resolveTickers(cfg *config.Config, log *logger.Logger) ([]string, error) {
	tickers, _, err := s0_universe.NewResolver(cfg, log).Resolve()
	return tickers, err
}

func fetchCaps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	f := capsapi.New(cfg, log)
	if !f.Enabled() {
		return fmt.Errorf("no cap source configured (CAPS_API_BASE_URL)")
	}

	tickers, err := resolveTickers(cfg, log)
	if err != nil {
		return err
	}
	n, err := f.Fetch(context.Background(), tickers)
	if err != nil {
		return err
	}
	fmt.Printf("Refreshed caps for %d of %d tickers\n", n, len(tickers))
	return nil
}
