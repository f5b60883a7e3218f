// Package s1_reports maps the two raw signal sources, the swing model's
// trade-plan output and the microcap scanner's candidate table, onto
// the canonical signal schema. Both adapters contribute zero rows
// when their input is absent; neither ever fails on missing data.
package s1_reports

import (
	"math"
	"path/filepath"
	"sort"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/internal/ticker"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// Swing model outputs express probability either as a fraction (ML_Prob)
// or already as a percent (prob_%). The alias that matched decides.
var swingProbPercentAliases = map[string]bool{
	"prob_%":   true,
	"prob_pct": true,
}

// SwingNormalizer maps raw model output to canonical signal rows.
type SwingNormalizer struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewSwingNormalizer creates a swing report normalizer.
func NewSwingNormalizer(cfg *config.Config, log *logger.Logger) *SwingNormalizer {
	return &SwingNormalizer{cfg: cfg, logger: log}
}

// Normalize selects the most recent raw output and maps it onto the
// canonical schema. Returns the selected path ("" when no candidate
// existed) alongside the rows; zero candidates is the degradation
// contract, not an error.
func (n *SwingNormalizer) Normalize() ([]contracts.SignalRow, string, error) {
	path := n.latestCandidate()
	if path == "" {
		n.logger.Warn("No swing report candidates; emitting zero swing rows")
		return nil, "", nil
	}

	t, err := store.Read(path)
	if err != nil {
		// Unreadable candidate degrades the same way as an absent one.
		n.logger.WithError(err).Warn("Swing report unreadable; emitting zero swing rows")
		return nil, "", nil
	}

	var (
		tk            = t.Col("Ticker", "ticker")
		entry         = t.Col("BuyPrice", "Close", "entry", "Entry")
		prob, probCol = colWithName(t, "ML_Prob", "MLProb", "ml_prob", "prob", "prob_%", "prob_pct")
		expMove       = t.Col("exp_move_%", "exp_move_pct")
		side          = t.Col("side", "Side")
		tp            = t.Col("TakeProfit", "Target1", "tp", "Tp")
		sl            = t.Col("StopLoss", "Stop", "sl", "Sl")
		label         = t.Col("label", "Label")
		headline      = t.Col("headline", "Headline")
		source        = t.Col("source", "Source")
	)

	rows := make([]contracts.SignalRow, 0, t.Len())
	for i := range t.Rows {
		row := contracts.SignalRow{
			Group:      contracts.GroupSwing,
			Ticker:     ticker.Normalize(t.Cell(i, tk)),
			Label:      cellOr(t, i, label, "bullish"),
			ProbPct:    probPct(t.Cell(i, prob), swingProbPercentAliases[probCol]),
			ExpMovePct: store.ParseFloat(t.Cell(i, expMove)),
			Side:       cellOr(t, i, side, "long"),
			Entry:      store.ParseFloat(t.Cell(i, entry)),
			TP:         store.ParseFloat(t.Cell(i, tp)),
			SL:         store.ParseFloat(t.Cell(i, sl)),
			Headline:   t.Cell(i, headline),
			Source:     cellOr(t, i, source, contracts.SourceSwingModel),
			CapBand:    contracts.BandUnclassified,
		}
		rows = append(rows, row)
	}

	n.logger.WithFields(map[string]interface{}{
		"path": path,
		"rows": len(rows),
	}).Info("Swing report normalized")
	return rows, path, nil
}

// latestCandidate picks the lexicographically last glob match. Name
// order is assumed to track chronological order; dated filenames from
// the model runner satisfy that, manual copies may not.
func (n *SwingNormalizer) latestCandidate() string {
	matches, err := filepath.Glob(n.cfg.SwingGlob())
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[len(matches)-1]
}

// probPct converts the model probability to a percent rounded to one
// decimal. Fractional probabilities are scaled by 100; columns already
// in percent pass through.
func probPct(cell string, alreadyPercent bool) *float64 {
	v := store.ParseFloat(cell)
	if v == nil {
		return nil
	}
	p := *v
	if !alreadyPercent {
		p *= 100
	}
	p = math.Round(p*10) / 10
	return &p
}

// cellOr returns the cell value or a default when the column is
// unresolved or the cell empty.
func cellOr(t *store.Table, row, col int, def string) string {
	if v := t.Cell(row, col); v != "" {
		return v
	}
	return def
}

// colWithName is Table.Col plus the alias that matched, for aliases
// whose interpretation depends on the source column name.
func colWithName(t *store.Table, aliases ...string) (int, string) {
	for _, alias := range aliases {
		for i, h := range t.Header {
			if h == alias {
				return i, alias
			}
		}
	}
	return -1, ""
}
