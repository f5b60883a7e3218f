package store

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaldesk/signaldesk/internal/contracts"
)

func TestTable_ColAliasPriority(t *testing.T) {
	tbl := New("Symbol", "marketCap", "Sector")

	// First alias present wins, in alias order, not header order.
	assert.Equal(t, 0, tbl.Col("ticker", "Ticker", "symbol", "Symbol"))
	assert.Equal(t, 1, tbl.Col("market_cap_m", "market_cap", "marketCap"))
	assert.Equal(t, -1, tbl.Col("headline", "title"))
}

func TestTable_AppendPadsRaggedRows(t *testing.T) {
	tbl := New("a", "b", "c")
	tbl.Append("1")
	tbl.Append("1", "2", "3", "4")

	assert.Equal(t, []string{"1", "", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, tbl.Rows[1])
}

func TestTable_CellOutOfRange(t *testing.T) {
	tbl := New("a")
	tbl.Append("x")

	assert.Equal(t, "x", tbl.Cell(0, 0))
	assert.Equal(t, "", tbl.Cell(0, -1))
	assert.Equal(t, "", tbl.Cell(0, 5))
	assert.Equal(t, "", tbl.Cell(9, 0))
}

func TestTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "t.csv")

	tbl := New("ticker", "entry")
	tbl.Append("BHP", "42.10")
	tbl.Append("CBA", "")
	require.NoError(t, tbl.Write(path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Header, got.Header)
	assert.Equal(t, tbl.Rows, got.Rows)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWrite_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, New("ticker").Write(path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ticker"}, got.Header)
	assert.Equal(t, 0, got.Len())
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"42.5", Float(42.5)},
		{" 7 ", Float(7)},
		{"120,000,000", Float(120000000)},
		{"", nil},
		{"n/a", nil},
		{"NaN", nil},
		{"-", nil},
	}
	for _, tt := range tests {
		got := ParseFloat(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, "input %q", tt.in)
		} else {
			require.NotNil(t, got, "input %q", tt.in)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		}
	}
}

func TestMedian(t *testing.T) {
	assert.Nil(t, Median(nil))

	odd := Median([]float64{5, 1, 3})
	require.NotNil(t, odd)
	assert.Equal(t, 3.0, *odd)

	even := Median([]float64{4, 1, 3, 2})
	require.NotNil(t, even)
	assert.Equal(t, 2.5, *even)
}

func TestCombined_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")

	rows := []contracts.SignalRow{
		{
			Group:    contracts.GroupSwing,
			Ticker:   "CBA",
			Label:    "bullish",
			ProbPct:  Float(61.2),
			Side:     "long",
			Entry:    Float(100),
			Headline: "A headline, with a comma",
			Source:   contracts.SourceSwingModel,
			CapBand:  contracts.BandLarge,
		},
		{
			Group:   contracts.GroupMicro,
			Ticker:  "",
			Label:   "momentum",
			Side:    "long",
			Source:  contracts.SourceMicroScanner,
			CapBand: contracts.BandUnclassified,
		},
	}
	require.NoError(t, WriteCombined(path, rows))

	got, err := ReadCombined(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[0].Ticker, got[0].Ticker)
	assert.Equal(t, rows[0].Headline, got[0].Headline)
	require.NotNil(t, got[0].ProbPct)
	assert.InDelta(t, 61.2, *got[0].ProbPct, 1e-9)
	assert.Nil(t, got[0].ExpMovePct)
	assert.Equal(t, contracts.BandLarge, got[0].CapBand)
	assert.False(t, got[1].Joinable())
}

func TestWriteCombinedTickers_DedupSkipsUnjoinable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.csv")

	rows := []contracts.SignalRow{
		{Ticker: "BHP"},
		{Ticker: ""},
		{Ticker: "CBA"},
		{Ticker: "BHP"},
	}
	require.NoError(t, WriteCombinedTickers(path, rows))

	got, err := ReadUniverse(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BHP", "CBA"}, got)
}

func TestMergeCaps_FreshWins(t *testing.T) {
	existing := []contracts.CapRecord{
		{Ticker: "BHP", MarketCapM: Float(100)},
		{Ticker: "CBA", MarketCapM: Float(200)},
	}
	fresh := []contracts.CapRecord{
		{Ticker: "CBA", MarketCapM: Float(250)},
	}

	merged := MergeCaps(existing, fresh)
	require.Len(t, merged, 2)
	assert.Equal(t, "CBA", merged[0].Ticker)
	assert.Equal(t, 250.0, *merged[0].MarketCapM)
	assert.Equal(t, "BHP", merged[1].Ticker)
}

func TestMergeEventTables_PriorityAndDedup(t *testing.T) {
	api := New("ticker", "headline", "source", "ts")
	api.Append("BHP", "API first", "newsapi", "2026-08-24T10:00:00Z")

	rss := New("ticker", "title", "domain", "ts_utc")
	rss.Append("BHP", "RSS second", "afr.com", "2026-08-24T09:00:00Z")
	rss.Append("BHP", "RSS second", "afr.com", "2026-08-24T09:00:00Z") // dup

	merged := MergeEventTables(api, rss, nil)
	require.Equal(t, 2, merged.Len())
	assert.Equal(t, "API first", merged.Cell(0, 1))
	assert.Equal(t, "RSS second", merged.Cell(1, 1))
}
