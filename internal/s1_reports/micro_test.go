package s1_reports

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

func TestMicroAdapt_MapsScannerColumns(t *testing.T) {
	cfg := testConfig(t)
	tbl := store.New("ticker", "gap_%", "price", "rel_vol", "dollar_vol", "headline")
	tbl.Append("abc.ax", "18.4", "0.042", "6.3", "480000", "Drill results due")
	tbl.Append("XYZ", "12.1", "0.115", "", "", "")
	require.NoError(t, tbl.Write(cfg.MicroFile()))

	rows, err := NewMicroAdapter(cfg, logger.New(cfg)).Adapt()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	r := rows[0]
	assert.Equal(t, contracts.GroupMicro, r.Group)
	assert.Equal(t, "ABC", r.Ticker)
	assert.Equal(t, "momentum", r.Label)
	assert.Equal(t, "long", r.Side)
	assert.Equal(t, contracts.SourceMicroScanner, r.Source)
	assert.Equal(t, "Drill results due", r.Headline)
	require.NotNil(t, r.ExpMovePct)
	assert.InDelta(t, 18.4, *r.ExpMovePct, 1e-9)
	require.NotNil(t, r.Entry)
	assert.InDelta(t, 0.042, *r.Entry, 1e-9)
	require.NotNil(t, r.RelVol)
	assert.InDelta(t, 6.3, *r.RelVol, 1e-9)
	require.NotNil(t, r.DollarVol)
	assert.InDelta(t, 480000, *r.DollarVol, 1e-9)
	assert.Nil(t, r.ProbPct)

	// Rows without news get the placeholder headline.
	assert.Equal(t, contracts.DefaultMicroHeadline, rows[1].Headline)
}

func TestMicroAdapt_RetainsTopRows(t *testing.T) {
	cfg := testConfig(t)
	cfg.MicroMaxRows = 3

	tbl := store.New("ticker", "gap_%")
	for i := 0; i < 10; i++ {
		tbl.Append(fmt.Sprintf("T%d", i), "5.0")
	}
	require.NoError(t, tbl.Write(cfg.MicroFile()))

	rows, err := NewMicroAdapter(cfg, logger.New(cfg)).Adapt()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "T0", rows[0].Ticker)
	assert.Equal(t, "T2", rows[2].Ticker)
}

func TestMicroAdapt_MissingFile(t *testing.T) {
	cfg := testConfig(t)

	rows, err := NewMicroAdapter(cfg, logger.New(cfg)).Adapt()
	require.NoError(t, err)
	assert.Empty(t, rows)
}
