// Package capsapi refreshes the market-cap lookup cache. Two modes:
// per-ticker JSON fundamentals when an API key is configured, otherwise
// a scrape of the HTML market table at the configured base URL. Either
// way the fresh records overlay the existing cache; tickers the fetch
// missed keep their stale values.
package capsapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/internal/ticker"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/httputil"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

type fundamentals struct {
	General struct {
		Sector string `json:"Sector"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization *float64 `json:"MarketCapitalization"`
	} `json:"Highlights"`
}

// Fetcher refreshes the cap cache.
type Fetcher struct {
	cfg    *config.Config
	logger *logger.Logger
	client *httputil.Client

	baseURL string
}

// New creates a caps fetcher.
func New(cfg *config.Config, log *logger.Logger) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		logger:  log,
		client:  httputil.New(log).WithRateLimit(5, 2),
		baseURL: cfg.CapsAPIBaseURL,
	}
}

// Enabled reports whether any cap source is configured.
func (f *Fetcher) Enabled() bool {
	return f.baseURL != ""
}

// Fetch refreshes caps for the given tickers and rewrites the cache,
// fresh records overlaying stale ones. Per-ticker failures are skipped;
// only an unwritable cache fails the fetch.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string) (int, error) {
	var fresh []contracts.CapRecord
	if f.cfg.CapsAPIKey != "" {
		fresh = f.fetchJSON(ctx, tickers)
	} else {
		fresh = f.scrapeTable(ctx, tickers)
	}

	existing, err := store.ReadCapsCanonical(f.cfg.CapsFile())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.WithError(err).Warn("Existing cap cache unreadable, rebuilding from fresh records")
	}

	merged := store.MergeCaps(existing, fresh)
	if err := store.WriteCaps(f.cfg.CapsFile(), merged); err != nil {
		return 0, fmt.Errorf("write cap cache: %w", err)
	}

	f.logger.WithFields(map[string]interface{}{
		"fresh":  len(fresh),
		"cached": len(merged),
	}).Info("Cap cache refreshed")
	return len(fresh), nil
}

// fetchJSON pulls fundamentals per ticker over a bounded worker pool.
// Source values are raw currency units; records are stored in millions.
func (f *Fetcher) fetchJSON(ctx context.Context, tickers []string) []contracts.CapRecord {
	type result struct {
		idx int
		rec contracts.CapRecord
		ok  bool
	}

	jobs := make(chan int)
	results := make(chan result)

	var wg sync.WaitGroup
	for w := 0; w < f.cfg.FetchWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				tk := tickers[idx]
				rec, err := f.fetchOne(ctx, tk)
				if err != nil {
					f.logger.WithError(err).WithField("ticker", tk).Warn("Cap fetch failed, skipping ticker")
					results <- result{idx: idx}
					continue
				}
				results <- result{idx: idx, rec: rec, ok: true}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range tickers {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect then reorder: worker completion order is not input order.
	byIdx := make(map[int]contracts.CapRecord, len(tickers))
	for r := range results {
		if r.ok {
			byIdx[r.idx] = r.rec
		}
	}
	idxs := make([]int, 0, len(byIdx))
	for i := range byIdx {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	out := make([]contracts.CapRecord, 0, len(byIdx))
	for _, i := range idxs {
		out = append(out, byIdx[i])
	}
	return out
}

func (f *Fetcher) fetchOne(ctx context.Context, tk string) (contracts.CapRecord, error) {
	u := fmt.Sprintf("%s/fundamentals/%s.AU?fmt=json&api_token=%s",
		f.baseURL, url.PathEscape(tk), url.QueryEscape(f.cfg.CapsAPIKey))

	var fund fundamentals
	if err := f.client.GetJSON(ctx, u, &fund); err != nil {
		return contracts.CapRecord{}, err
	}

	rec := contracts.CapRecord{Ticker: tk, Sector: fund.General.Sector}
	if raw := fund.Highlights.MarketCapitalization; raw != nil {
		capM := *raw / 1e6
		rec.MarketCapM = &capM
	}
	return rec, nil
}

// scrapeTable parses the HTML market table at the base URL. Expected
// shape: table rows whose first three cells are symbol, market cap and
// sector. Only universe tickers are kept.
func (f *Fetcher) scrapeTable(ctx context.Context, tickers []string) []contracts.CapRecord {
	resp, err := f.client.Get(ctx, f.baseURL)
	if err != nil {
		f.logger.WithError(err).Warn("Market table fetch failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		f.logger.WithField("status", resp.StatusCode).Warn("Market table fetch failed")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		f.logger.WithError(err).Warn("Market table parse failed")
		return nil
	}

	wanted := make(map[string]bool, len(tickers))
	for _, tk := range tickers {
		wanted[tk] = true
	}

	var records []contracts.CapRecord
	seen := make(map[string]bool)
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		tk := ticker.Normalize(cells.Eq(0).Text())
		if tk == "" || !wanted[tk] || seen[tk] {
			return
		}
		seen[tk] = true

		rec := contracts.CapRecord{Ticker: tk}
		if capM := parseTableCap(cells.Eq(1).Text()); capM != nil {
			rec.MarketCapM = capM
		}
		if cells.Length() > 2 {
			rec.Sector = strings.TrimSpace(cells.Eq(2).Text())
		}
		records = append(records, rec)
	})
	return records
}

// parseTableCap reads a market-cap cell. Listing pages publish values in
// millions, with optional currency symbol and thousands separators.
func parseTableCap(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSuffix(cleaned, "M")
	return store.ParseFloat(cleaned)
}
