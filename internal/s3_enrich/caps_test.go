package s3_enrich

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
		Env:             "development",
		DataDir:         filepath.Join(root, "data"),
		ArtifactsDir:    filepath.Join(root, "artifacts"),
		NewsWindowHours: 96,
		LogLevel:        "error",
		LogFormat:       "json",
	}
}

func writeCapsTable(t *testing.T, cfg *config.Config, tbl *store.Table) {
	t.Helper()
	require.NoError(t, tbl.Write(cfg.CapsFile()))
}

func TestCapEnrich_JoinAndBand(t *testing.T) {
	cfg := testConfig(t)
	tbl := store.New("ticker", "market_cap_m", "sector")
	tbl.Append("CBA", "180000", "Financials")
	tbl.Append("BHP", "750", "Materials")
	tbl.Append("ABC", "120", "Materials")
	tbl.Append("NOCAP", "", "Energy")
	writeCapsTable(t, cfg, tbl)

	rows := []contracts.SignalRow{
		{Ticker: "CBA"}, {Ticker: "BHP"}, {Ticker: "ABC"}, {Ticker: "NOCAP"}, {Ticker: "MISSING"},
	}
	matched, degraded := NewCapEnricher(cfg, logger.New(cfg)).Enrich(rows)
	assert.False(t, degraded)
	assert.Equal(t, 4, matched)

	assert.Equal(t, contracts.BandLarge, rows[0].CapBand)
	assert.Equal(t, "Financials", rows[0].Sector)
	assert.Equal(t, contracts.BandMid, rows[1].CapBand)
	assert.Equal(t, contracts.BandMicro, rows[2].CapBand)
	assert.Equal(t, contracts.BandUnclassified, rows[3].CapBand)
	assert.Nil(t, rows[3].MarketCapM)
	assert.Equal(t, contracts.BandUnclassified, rows[4].CapBand)
}

func TestCapEnrich_BandBoundaries(t *testing.T) {
	cfg := testConfig(t)
	tbl := store.New("ticker", "market_cap_m")
	tbl.Append("EXL", "5000")   // exactly large threshold
	tbl.Append("JML", "4999.9") // just under
	tbl.Append("EXM", "500")    // exactly mid threshold
	tbl.Append("JMM", "499.9")  // just under
	writeCapsTable(t, cfg, tbl)

	rows := []contracts.SignalRow{
		{Ticker: "EXL"}, {Ticker: "JML"}, {Ticker: "EXM"}, {Ticker: "JMM"},
	}
	NewCapEnricher(cfg, logger.New(cfg)).Enrich(rows)

	assert.Equal(t, contracts.BandLarge, rows[0].CapBand)
	assert.Equal(t, contracts.BandMid, rows[1].CapBand)
	assert.Equal(t, contracts.BandMid, rows[2].CapBand)
	assert.Equal(t, contracts.BandMicro, rows[3].CapBand)
}

func TestCapEnrich_RawUnitInference(t *testing.T) {
	cfg := testConfig(t)

	// Median of the column is far above one million, so the whole column
	// is treated as raw currency units.
	tbl := store.New("Symbol", "MarketCap", "GICS_Sector")
	tbl.Append("cba.AX", "120,000,000,000", "Financials")
	tbl.Append("BHP", "90000000000", "Materials")
	tbl.Append("TIN", "40000000", "Materials")
	writeCapsTable(t, cfg, tbl)

	rows := []contracts.SignalRow{{Ticker: "CBA"}, {Ticker: "BHP"}, {Ticker: "TIN"}}
	matched, degraded := NewCapEnricher(cfg, logger.New(cfg)).Enrich(rows)
	assert.False(t, degraded)
	assert.Equal(t, 3, matched)

	require.NotNil(t, rows[0].MarketCapM)
	assert.InDelta(t, 120000, *rows[0].MarketCapM, 1e-6)
	assert.Equal(t, contracts.BandLarge, rows[0].CapBand)
	assert.Equal(t, contracts.BandLarge, rows[1].CapBand)
	assert.Equal(t, contracts.BandMicro, rows[2].CapBand)
}

func TestCapEnrich_MillionsPassThrough(t *testing.T) {
	cfg := testConfig(t)
	tbl := store.New("ticker", "market_cap_m")
	tbl.Append("CBA", "180000")
	tbl.Append("ABC", "42")
	writeCapsTable(t, cfg, tbl)

	rows := []contracts.SignalRow{{Ticker: "ABC"}}
	NewCapEnricher(cfg, logger.New(cfg)).Enrich(rows)
	require.NotNil(t, rows[0].MarketCapM)
	assert.InDelta(t, 42, *rows[0].MarketCapM, 1e-9)
}

func TestCapEnrich_DuplicateTickerKeepFirst(t *testing.T) {
	cfg := testConfig(t)
	tbl := store.New("ticker", "market_cap_m")
	tbl.Append("BHP", "6000")
	tbl.Append("BHP", "100")
	writeCapsTable(t, cfg, tbl)

	rows := []contracts.SignalRow{{Ticker: "BHP"}}
	NewCapEnricher(cfg, logger.New(cfg)).Enrich(rows)
	require.NotNil(t, rows[0].MarketCapM)
	assert.InDelta(t, 6000, *rows[0].MarketCapM, 1e-9)
}

func TestCapEnrich_StaleValuesCleared(t *testing.T) {
	cfg := testConfig(t)
	writeCapsTable(t, cfg, store.New("ticker", "market_cap_m"))

	rows := []contracts.SignalRow{{
		Ticker:     "CBA",
		MarketCapM: store.Float(180000),
		Sector:     "Financials",
		CapBand:    contracts.BandLarge,
	}}
	matched, degraded := NewCapEnricher(cfg, logger.New(cfg)).Enrich(rows)
	assert.False(t, degraded)
	assert.Equal(t, 0, matched)
	assert.Nil(t, rows[0].MarketCapM)
	assert.Empty(t, rows[0].Sector)
	assert.Equal(t, contracts.BandUnclassified, rows[0].CapBand)
}

func TestCapEnrich_MissingLookupDegrades(t *testing.T) {
	cfg := testConfig(t)

	rows := []contracts.SignalRow{{Ticker: "CBA", CapBand: contracts.BandLarge}}
	matched, degraded := NewCapEnricher(cfg, logger.New(cfg)).Enrich(rows)
	assert.True(t, degraded)
	assert.Equal(t, 0, matched)
	assert.Equal(t, contracts.BandUnclassified, rows[0].CapBand)
}
