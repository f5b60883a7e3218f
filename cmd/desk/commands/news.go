package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/external/newsapi"
	"github.com/signaldesk/signaldesk/internal/external/rss"
	"github.com/signaldesk/signaldesk/internal/s3_enrich"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// newsCmd represents the news command
var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Refresh the news event log",
	Long: `Runs the configured news collaborators (JSON API, RSS feeds)
for the resolved universe, then rebuilds the merged event log with API
events ahead of RSS events.

Example:
  go run ./cmd/desk news`,
	RunE: fetchNews,
}

func init() {
	rootCmd.AddCommand(newsCmd)
}

func fetchNews(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	tickers, err := resolveTickers(cfg, log)
	if err != nil {
		return err
	}

	fetched := 0
	if api := newsapi.New(cfg, log); api.Enabled() {
		n, err := api.Fetch(context.Background(), tickers)
		if err != nil {
			log.WithError(err).Warn("News API fetch failed")
		}
		fetched += n
	}
	if feeds := rss.New(cfg, log); feeds.Enabled() {
		n, err := feeds.Fetch(context.Background(), tickers)
		if err != nil {
			log.WithError(err).Warn("RSS fetch failed")
		}
		fetched += n
	}

	total, err := s3_enrich.NewNewsEnricher(cfg, log).MergeSources()
	if err != nil {
		return err
	}
	fmt.Printf("Fetched %d fresh events, %d in merged log\n", fetched, total)
	return nil
}
