package capsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/httputil"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Env:          "development",
		DataDir:      filepath.Join(root, "data"),
		FetchWorkers: 4,
		LogLevel:     "error",
		LogFormat:    "json",
	}
}

func newTestFetcher(cfg *config.Config, baseURL string) *Fetcher {
	log := logger.New(cfg)
	f := New(cfg, log)
	f.baseURL = baseURL
	f.client = httputil.New(log).DisableRetry()
	return f
}

func TestFetch_JSONFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/fundamentals/CBA.AU"):
			fmt.Fprint(w, `{"General":{"Sector":"Financials"},"Highlights":{"MarketCapitalization":180000000000}}`)
		case strings.HasPrefix(r.URL.Path, "/fundamentals/BHP.AU"):
			fmt.Fprint(w, `{"General":{"Sector":"Materials"},"Highlights":{"MarketCapitalization":null}}`)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.CapsAPIKey = "k"
	f := newTestFetcher(cfg, srv.URL)

	count, err := f.Fetch(context.Background(), []string{"CBA", "BHP", "BAD"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := store.ReadCapsCanonical(cfg.CapsFile())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Input order preserved, raw units converted to millions.
	assert.Equal(t, "CBA", records[0].Ticker)
	require.NotNil(t, records[0].MarketCapM)
	assert.InDelta(t, 180000, *records[0].MarketCapM, 1e-6)
	assert.Equal(t, "Financials", records[0].Sector)
	assert.Equal(t, "BHP", records[1].Ticker)
	assert.Nil(t, records[1].MarketCapM)
}

func TestFetch_OverlaysExistingCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/fundamentals/CBA.AU") {
			fmt.Fprint(w, `{"General":{"Sector":"Financials"},"Highlights":{"MarketCapitalization":200000000000}}`)
			return
		}
		http.Error(w, "down", http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.CapsAPIKey = "k"
	require.NoError(t, store.WriteCaps(cfg.CapsFile(), []contracts.CapRecord{
		{Ticker: "CBA", MarketCapM: store.Float(180000), Sector: "Financials"},
		{Ticker: "WES", MarketCapM: store.Float(70000), Sector: "Consumer"},
	}))

	f := newTestFetcher(cfg, srv.URL)
	_, err := f.Fetch(context.Background(), []string{"CBA", "WES"})
	require.NoError(t, err)

	records, err := store.ReadCapsCanonical(cfg.CapsFile())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Fresh CBA first, stale WES retained.
	assert.Equal(t, "CBA", records[0].Ticker)
	assert.InDelta(t, 200000, *records[0].MarketCapM, 1e-6)
	assert.Equal(t, "WES", records[1].Ticker)
	assert.InDelta(t, 70000, *records[1].MarketCapM, 1e-6)
}

func TestFetch_ScrapeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table><tbody>
			<tr><td>CBA.AX</td><td>$180,000M</td><td>Financials</td></tr>
			<tr><td>ZZZ</td><td>50</td><td>Other</td></tr>
			<tr><td>ABC</td><td>n/a</td><td>Materials</td></tr>
		</tbody></table></body></html>`)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.CapsAPIKey = "" // no key, scrape mode
	f := newTestFetcher(cfg, srv.URL)

	count, err := f.Fetch(context.Background(), []string{"CBA", "ABC"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := store.ReadCapsCanonical(cfg.CapsFile())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CBA", records[0].Ticker)
	assert.InDelta(t, 180000, *records[0].MarketCapM, 1e-6)
	assert.Equal(t, "ABC", records[1].Ticker)
	assert.Nil(t, records[1].MarketCapM)
	assert.Equal(t, "Materials", records[1].Sector)
}
