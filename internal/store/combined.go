package store

import (
	"github.com/signaldesk/signaldesk/internal/contracts"
)

// CombinedColumns is the canonical column order of the combined report.
var CombinedColumns = []string{
	"group", "ticker", "label", "prob_pct", "exp_move_pct", "side",
	"entry", "tp", "sl", "headline", "source", "rel_vol", "dollar_vol",
	"market_cap_m", "sector", "cap_band",
}

// WriteCombined persists the combined report in canonical column order.
// The table is written even when rows is empty.
func WriteCombined(path string, rows []contracts.SignalRow) error {
	t := New(CombinedColumns...)
	for i := range rows {
		r := &rows[i]
		t.Append(
			r.Group,
			r.Ticker,
			r.Label,
			FormatFloat(r.ProbPct),
			FormatFloat(r.ExpMovePct),
			r.Side,
			FormatFloat(r.Entry),
			FormatFloat(r.TP),
			FormatFloat(r.SL),
			r.Headline,
			r.Source,
			FormatFloat(r.RelVol),
			FormatFloat(r.DollarVol),
			FormatFloat(r.MarketCapM),
			r.Sector,
			string(r.CapBand),
		)
	}
	return t.Write(path)
}

// ReadCombined loads a combined report back into canonical rows.
// Columns are resolved by name, so column order in the file is
// irrelevant; any pre-existing enrichment columns are picked up too.
func ReadCombined(path string) ([]contracts.SignalRow, error) {
	t, err := Read(path)
	if err != nil {
		return nil, err
	}

	var (
		group    = t.Col("group")
		tk       = t.Col("ticker")
		label    = t.Col("label")
		prob     = t.Col("prob_pct")
		expMove  = t.Col("exp_move_pct")
		side     = t.Col("side")
		entry    = t.Col("entry")
		tp       = t.Col("tp")
		sl       = t.Col("sl")
		headline = t.Col("headline")
		source   = t.Col("source")
		relVol   = t.Col("rel_vol")
		dollVol  = t.Col("dollar_vol")
		capM     = t.Col("market_cap_m")
		sector   = t.Col("sector")
		band     = t.Col("cap_band")
	)

	rows := make([]contracts.SignalRow, 0, t.Len())
	for i := range t.Rows {
		rows = append(rows, contracts.SignalRow{
			Group:      t.Cell(i, group),
			Ticker:     t.Cell(i, tk),
			Label:      t.Cell(i, label),
			ProbPct:    ParseFloat(t.Cell(i, prob)),
			ExpMovePct: ParseFloat(t.Cell(i, expMove)),
			Side:       t.Cell(i, side),
			Entry:      ParseFloat(t.Cell(i, entry)),
			TP:         ParseFloat(t.Cell(i, tp)),
			SL:         ParseFloat(t.Cell(i, sl)),
			Headline:   t.Cell(i, headline),
			Source:     t.Cell(i, source),
			RelVol:     ParseFloat(t.Cell(i, relVol)),
			DollarVol:  ParseFloat(t.Cell(i, dollVol)),
			MarketCapM: ParseFloat(t.Cell(i, capM)),
			Sector:     t.Cell(i, sector),
			CapBand:    contracts.CapBand(t.Cell(i, band)),
		})
	}
	return rows, nil
}

// WriteCombinedTickers writes the deduplicated ticker list of the
// combined report, preserving first-occurrence order. Unjoinable rows
// (empty ticker) are skipped.
func WriteCombinedTickers(path string, rows []contracts.SignalRow) error {
	t := New("ticker")
	seen := make(map[string]bool)
	for i := range rows {
		tk := rows[i].Ticker
		if tk == "" || seen[tk] {
			continue
		}
		seen[tk] = true
		t.Append(tk)
	}
	return t.Write(path)
}
