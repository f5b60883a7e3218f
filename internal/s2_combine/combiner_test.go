package s2_combine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Env:          "development",
		DataDir:      filepath.Join(root, "data"),
		ArtifactsDir: filepath.Join(root, "artifacts"),
		LogLevel:     "error",
		LogFormat:    "json",
	}
}

func TestCombine_OrderPreservedNoDedup(t *testing.T) {
	cfg := testConfig(t)
	swing := []contracts.SignalRow{
		{Group: contracts.GroupSwing, Ticker: "CBA", Source: contracts.SourceSwingModel},
		{Group: contracts.GroupSwing, Ticker: "BHP", Source: contracts.SourceSwingModel},
	}
	micro := []contracts.SignalRow{
		{Group: contracts.GroupMicro, Ticker: "BHP", Source: contracts.SourceMicroScanner},
		{Group: contracts.GroupMicro, Ticker: "XYZ", Source: contracts.SourceMicroScanner},
	}

	combined, err := NewCombiner(cfg, logger.New(cfg)).Combine(swing, micro)
	require.NoError(t, err)
	require.Len(t, combined, 4)

	// Swing block first, micro block second, internal order untouched.
	assert.Equal(t, "CBA", combined[0].Ticker)
	assert.Equal(t, "BHP", combined[1].Ticker)
	assert.Equal(t, "BHP", combined[2].Ticker)
	assert.Equal(t, "XYZ", combined[3].Ticker)

	persisted, err := store.ReadCombined(cfg.CombinedFile())
	require.NoError(t, err)
	require.Len(t, persisted, 4)
	assert.Equal(t, contracts.GroupMicro, persisted[2].Group)

	// Sidecar dedupes, first occurrence wins.
	tickers, err := store.ReadUniverse(cfg.CombinedTickersFile())
	require.NoError(t, err)
	assert.Equal(t, []string{"CBA", "BHP", "XYZ"}, tickers)
}

func TestCombine_EmptyInputsStillWriteArtifacts(t *testing.T) {
	cfg := testConfig(t)

	combined, err := NewCombiner(cfg, logger.New(cfg)).Combine(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, combined)

	persisted, err := store.ReadCombined(cfg.CombinedFile())
	require.NoError(t, err)
	assert.Empty(t, persisted)

	tickers, err := store.ReadUniverse(cfg.CombinedTickersFile())
	require.NoError(t, err)
	assert.Empty(t, tickers)
}
