// Package newsapi pulls per-ticker headlines from the JSON news API and
// drops them into the API event file for the merge step.
package newsapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/httputil"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// perTickerLimit caps headlines requested per symbol per run.
const perTickerLimit = 10

type newsItem struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Fetcher collects headlines from the JSON news API.
type Fetcher struct {
	cfg    *config.Config
	logger *logger.Logger
	client *httputil.Client

	// baseURL is split out so tests can point at a local server.
	baseURL string
}

// New creates a news API fetcher.
func New(cfg *config.Config, log *logger.Logger) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		logger:  log,
		client:  httputil.New(log).WithRateLimit(5, 2),
		baseURL: cfg.NewsAPIBaseURL,
	}
}

// Enabled reports whether the API is configured. Without a key the
// fetcher is skipped, which degrades the run instead of failing it.
func (f *Fetcher) Enabled() bool {
	return f.cfg.NewsAPIKey != ""
}

// Fetch pulls recent headlines for each ticker and writes the API event
// file. Per-ticker failures are logged and skipped; the run only fails
// when the output file cannot be written.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string) (int, error) {
	var events []contracts.NewsEvent
	for _, tk := range tickers {
		items, err := f.fetchTicker(ctx, tk)
		if err != nil {
			f.logger.WithError(err).WithField("ticker", tk).Warn("News API fetch failed, skipping ticker")
			continue
		}
		for _, item := range items {
			ts, err := time.Parse(time.RFC3339, item.Date)
			if err != nil || item.Title == "" {
				continue
			}
			events = append(events, contracts.NewsEvent{
				Ticker:   tk,
				Headline: item.Title,
				Source:   "newsapi",
				TS:       ts.UTC(),
			})
		}
	}

	if err := store.WriteEvents(f.cfg.EventsAPIFile(), events); err != nil {
		return 0, fmt.Errorf("write api events: %w", err)
	}
	f.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"events":  len(events),
	}).Info("News API events fetched")
	return len(events), nil
}

func (f *Fetcher) fetchTicker(ctx context.Context, tk string) ([]newsItem, error) {
	u := fmt.Sprintf("%s/news?s=%s.AU&limit=%d&fmt=json&api_token=%s",
		f.baseURL, url.QueryEscape(tk), perTickerLimit, url.QueryEscape(f.cfg.NewsAPIKey))

	var items []newsItem
	if err := f.client.GetJSON(ctx, u, &items); err != nil {
		return nil, err
	}
	return items, nil
}
