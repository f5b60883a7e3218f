// Package rss collects headlines from configured RSS feeds and matches
// them to universe tickers by symbol token or configured alias.
package rss

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/internal/ticker"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// minAliasLen filters out aliases too short to match reliably; "BHP
// Group" matches, a two-letter abbreviation does not.
const minAliasLen = 3

// Fetcher collects and matches RSS headlines.
type Fetcher struct {
	cfg    *config.Config
	logger *logger.Logger
	parser *gofeed.Parser
}

// New creates an RSS fetcher.
func New(cfg *config.Config, log *logger.Logger) *Fetcher {
	return &Fetcher{cfg: cfg, logger: log, parser: gofeed.NewParser()}
}

// Enabled reports whether a feed source list is configured.
func (f *Fetcher) Enabled() bool {
	return f.cfg.RSSSourcesFile != ""
}

// Fetch parses every configured feed, keeps in-window items matched to a
// universe ticker, and writes the RSS event file. Individual feed
// failures are skipped; the run only fails when no source list exists
// or the output cannot be written.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string) (int, error) {
	feeds, err := f.loadSources()
	if err != nil {
		return 0, err
	}
	matcher := f.newMatcher(tickers)
	cutoff := time.Now().UTC().Add(-time.Duration(f.cfg.NewsWindowHours) * time.Hour)

	var events []contracts.NewsEvent
	for _, feedURL := range feeds {
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			f.logger.WithError(err).WithField("feed", feedURL).Warn("Feed parse failed, skipping")
			continue
		}
		source := feedDomain(feedURL, feed.Link)
		for _, item := range feed.Items {
			if item.PublishedParsed == nil || item.PublishedParsed.UTC().Before(cutoff) {
				continue
			}
			for _, tk := range matcher.match(item.Title) {
				events = append(events, contracts.NewsEvent{
					Ticker:   tk,
					Headline: item.Title,
					Source:   source,
					TS:       item.PublishedParsed.UTC(),
				})
			}
		}
	}

	if err := store.WriteEvents(f.cfg.EventsRSSFile(), events); err != nil {
		return 0, fmt.Errorf("write rss events: %w", err)
	}
	f.logger.WithFields(map[string]interface{}{
		"feeds":  len(feeds),
		"events": len(events),
	}).Info("RSS events fetched")
	return len(events), nil
}

// loadSources reads feed URLs, one per line, # comments skipped.
func (f *Fetcher) loadSources() ([]string, error) {
	file, err := os.Open(f.cfg.RSSSourcesFile)
	if err != nil {
		return nil, fmt.Errorf("open rss sources: %w", err)
	}
	defer file.Close()

	var feeds []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		feeds = append(feeds, line)
	}
	return feeds, scanner.Err()
}

// matcher maps headline text to universe tickers.
type matcher struct {
	// symbol token -> ticker
	symbols map[string]string
	// uppercased alias substring -> ticker
	aliases map[string]string
}

// newMatcher indexes universe symbols plus the optional alias file,
// rows of `ticker,alias[,alias...]`.
func (f *Fetcher) newMatcher(tickers []string) *matcher {
	m := &matcher{
		symbols: make(map[string]string, len(tickers)),
		aliases: make(map[string]string),
	}
	for _, tk := range tickers {
		if len(tk) >= minAliasLen {
			m.symbols[tk] = tk
		}
	}

	if f.cfg.TickerAliasFile == "" {
		return m
	}
	t, err := store.Read(f.cfg.TickerAliasFile)
	if err != nil {
		f.logger.WithError(err).Warn("Alias file unreadable, matching on symbols only")
		return m
	}
	for i := range t.Rows {
		tk := ticker.Normalize(t.Cell(i, 0))
		if tk == "" {
			continue
		}
		for col := 1; col < len(t.Rows[i]); col++ {
			alias := strings.ToUpper(strings.TrimSpace(t.Rows[i][col]))
			if len(alias) >= minAliasLen {
				m.aliases[alias] = tk
			}
		}
	}
	return m
}

// match returns the tickers a headline mentions: exact symbol token or
// alias substring, each ticker at most once.
func (m *matcher) match(title string) []string {
	upper := strings.ToUpper(title)
	tokens := strings.FieldsFunc(upper, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})

	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokens {
		if tk, ok := m.symbols[tok]; ok && !seen[tk] {
			seen[tk] = true
			out = append(out, tk)
		}
	}
	// Sorted alias walk keeps output order deterministic.
	keys := make([]string, 0, len(m.aliases))
	for alias := range m.aliases {
		keys = append(keys, alias)
	}
	sort.Strings(keys)
	for _, alias := range keys {
		tk := m.aliases[alias]
		if !seen[tk] && strings.Contains(upper, alias) {
			seen[tk] = true
			out = append(out, tk)
		}
	}
	return out
}

func feedDomain(feedURL, siteLink string) string {
	for _, candidate := range []string{siteLink, feedURL} {
		if u, err := url.Parse(candidate); err == nil && u.Host != "" {
			return strings.TrimPrefix(u.Host, "www.")
		}
	}
	return "rss"
}
