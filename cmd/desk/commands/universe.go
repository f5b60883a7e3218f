package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/s0_universe"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Resolve and print the ticker universe",
	Long: `Resolves the tradable-ticker universe through the priority chain:

  1. validated universe artifact
  2. raw seed list
  3. symbols recovered from price-cache filenames
  4. empty universe

and prints the result with its source.

Example:
  go run ./cmd/desk universe`,
	RunE: resolveUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func resolveUniverse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	tickers, src, err := s0_universe.NewResolver(cfg, log).Resolve()
	if err != nil {
		return err
	}

	fmt.Printf("Universe (%d tickers, source: %s)\n", len(tickers), src)
	for _, tk := range tickers {
		fmt.Println(tk)
	}
	return nil
}
