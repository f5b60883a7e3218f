package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Env:             "development",
		DataDir:         filepath.Join(root, "data"),
		NewsWindowHours: 96,
		LogLevel:        "error",
		LogFormat:       "json",
	}
}

func rssXML(items string) string {
	return `<?xml version="1.0"?><rss version="2.0"><channel>` +
		`<title>Markets</title><link>https://www.afr.com</link>` + items + `</channel></rss>`
}

func item(title string, ts time.Time) string {
	return fmt.Sprintf(`<item><title>%s</title><pubDate>%s</pubDate></item>`,
		title, ts.Format(time.RFC1123Z))
}

func TestFetch_MatchesAndWrites(t *testing.T) {
	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssXML(
			item("BHP flags output upgrade", now.Add(-2*time.Hour))+
				item("Commonwealth Bank lifts rates", now.Add(-3*time.Hour))+
				item("Stale BHP story", now.Add(-200*time.Hour))+
				item("Nothing relevant here", now.Add(-1*time.Hour)),
		))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))

	cfg.RSSSourcesFile = filepath.Join(cfg.DataDir, "rss_sources.txt")
	require.NoError(t, os.WriteFile(cfg.RSSSourcesFile,
		[]byte("# feeds\n"+srv.URL+"\n"), 0o644))

	cfg.TickerAliasFile = filepath.Join(cfg.DataDir, "ticker_aliases.csv")
	require.NoError(t, os.WriteFile(cfg.TickerAliasFile,
		[]byte("ticker,alias\nCBA,Commonwealth Bank\n"), 0o644))

	count, err := New(cfg, logger.New(cfg)).Fetch(context.Background(), []string{"BHP", "CBA"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	tbl, err := store.Read(cfg.EventsRSSFile())
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "BHP", tbl.Cell(0, 0))
	assert.Equal(t, "afr.com", tbl.Cell(0, 2))
	assert.Equal(t, "CBA", tbl.Cell(1, 0))
	assert.Equal(t, "Commonwealth Bank lifts rates", tbl.Cell(1, 1))
}

func TestFetch_MissingSourcesFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.RSSSourcesFile = filepath.Join(cfg.DataDir, "absent.txt")

	_, err := New(cfg, logger.New(cfg)).Fetch(context.Background(), []string{"BHP"})
	require.Error(t, err)
}

func TestMatcher_TokenNotSubstring(t *testing.T) {
	cfg := testConfig(t)
	f := New(cfg, logger.New(cfg))
	m := f.newMatcher([]string{"BHP", "WES"})

	// Symbol must appear as a standalone token.
	assert.Empty(t, m.match("WESTPAC results due"))
	assert.Equal(t, []string{"WES"}, m.match("WES lifts dividend"))
	assert.Equal(t, []string{"BHP"}, m.match("Iron ore: BHP's quarter"))
}
