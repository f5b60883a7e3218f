package s1_reports

import (
	"errors"
	"io/fs"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/internal/ticker"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// MicroAdapter maps the momentum/gap scanner output onto the canonical
// signal schema.
type MicroAdapter struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewMicroAdapter creates a microcap adapter.
func NewMicroAdapter(cfg *config.Config, log *logger.Logger) *MicroAdapter {
	return &MicroAdapter{cfg: cfg, logger: log}
}

// Adapt reads the scanner table and emits canonical rows: gap percent
// becomes the expected move, entry falls back to the scan price, and
// rows without news carry the default headline. Absent or empty input
// contributes zero rows. At most the configured row count is retained,
// trusting the scanner's own score ordering.
func (a *MicroAdapter) Adapt() ([]contracts.SignalRow, error) {
	t, err := store.Read(a.cfg.MicroFile())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.logger.WithError(err).Warn("Microcap table unreadable; emitting zero rows")
		}
		return nil, nil
	}

	var (
		tk       = t.Col("ticker", "Ticker")
		expMove  = t.Col("gap_%", "gap_pct", "exp_move_%", "exp_move_pct")
		entry    = t.Col("entry", "price")
		tp       = t.Col("tp", "Tp")
		sl       = t.Col("sl", "Sl")
		relVol   = t.Col("rel_vol", "relvol")
		dollVol  = t.Col("dollar_vol", "dollarvol")
		headline = t.Col("headline", "Headline")
	)

	limit := t.Len()
	if a.cfg.MicroMaxRows > 0 && limit > a.cfg.MicroMaxRows {
		limit = a.cfg.MicroMaxRows
	}

	rows := make([]contracts.SignalRow, 0, limit)
	for i := 0; i < limit; i++ {
		rows = append(rows, contracts.SignalRow{
			Group:      contracts.GroupMicro,
			Ticker:     ticker.Normalize(t.Cell(i, tk)),
			Label:      "momentum",
			ExpMovePct: store.ParseFloat(t.Cell(i, expMove)),
			Side:       "long",
			Entry:      store.ParseFloat(t.Cell(i, entry)),
			TP:         store.ParseFloat(t.Cell(i, tp)),
			SL:         store.ParseFloat(t.Cell(i, sl)),
			RelVol:     store.ParseFloat(t.Cell(i, relVol)),
			DollarVol:  store.ParseFloat(t.Cell(i, dollVol)),
			Headline:   cellOr(t, i, headline, contracts.DefaultMicroHeadline),
			Source:     contracts.SourceMicroScanner,
			CapBand:    contracts.BandUnclassified,
		})
	}

	a.logger.WithFields(map[string]interface{}{
		"rows":     len(rows),
		"scanned":  t.Len(),
		"retained": limit,
	}).Info("Microcap candidates adapted")
	return rows, nil
}
