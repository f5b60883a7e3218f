package newsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/httputil"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Env:             "development",
		DataDir:         filepath.Join(root, "data"),
		NewsWindowHours: 96,
		FetchWorkers:    2,
		NewsAPIKey:      "test-key",
		LogLevel:        "error",
		LogFormat:       "json",
	}
}

func TestFetch_WritesAPIEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/news", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		switch r.URL.Query().Get("s") {
		case "CBA.AU":
			fmt.Fprint(w, `[
				{"date":"2026-08-24T09:00:00Z","title":"CBA beats guidance","link":"https://afr.com/x"},
				{"date":"not-a-date","title":"dropped"},
				{"date":"2026-08-24T10:00:00Z","title":""}
			]`)
		default:
			http.Error(w, "unknown symbol", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := testConfig(t)
	log := logger.New(cfg)
	f := New(cfg, log)
	f.baseURL = srv.URL
	f.client = httputil.New(log).DisableRetry()

	count, err := f.Fetch(context.Background(), []string{"CBA", "BAD"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tbl, err := store.Read(cfg.EventsAPIFile())
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "CBA", tbl.Cell(0, 0))
	assert.Equal(t, "CBA beats guidance", tbl.Cell(0, 1))
	assert.Equal(t, "newsapi", tbl.Cell(0, 2))
	assert.Equal(t, "2026-08-24T09:00:00Z", tbl.Cell(0, 3))
}

func TestFetch_EnabledRequiresKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.NewsAPIKey = ""
	assert.False(t, New(cfg, logger.New(cfg)).Enabled())

	cfg.NewsAPIKey = "k"
	assert.True(t, New(cfg, logger.New(cfg)).Enabled())
}
