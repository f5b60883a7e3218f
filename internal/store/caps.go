package store

import (
	"github.com/signaldesk/signaldesk/internal/contracts"
)

// CapColumns is the canonical schema the cap fetcher writes. Reads stay
// alias-tolerant because the cache may have been produced elsewhere.
var CapColumns = []string{"ticker", "market_cap_m", "sector"}

// WriteCaps persists cap records in canonical form, values already in
// millions.
func WriteCaps(path string, records []contracts.CapRecord) error {
	t := New(CapColumns...)
	for _, r := range records {
		t.Append(r.Ticker, FormatFloat(r.MarketCapM), r.Sector)
	}
	return t.Write(path)
}

// MergeCaps overlays fresh records onto the existing cache:
// fresh values overwrite same-ticker rows, stale rows for tickers the
// fetcher did not cover are retained. Staleness is tolerated but never
// amplified; bands are re-derived from cache contents on every run.
func MergeCaps(existing []contracts.CapRecord, fresh []contracts.CapRecord) []contracts.CapRecord {
	out := make([]contracts.CapRecord, 0, len(existing)+len(fresh))
	fresher := make(map[string]bool, len(fresh))
	for _, r := range fresh {
		fresher[r.Ticker] = true
		out = append(out, r)
	}
	for _, r := range existing {
		if fresher[r.Ticker] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ReadCapsCanonical reads a cap cache written by WriteCaps. It is used
// only for merge-and-overwrite; enrichment reads the raw table with the
// full alias lists instead.
func ReadCapsCanonical(path string) ([]contracts.CapRecord, error) {
	t, err := Read(path)
	if err != nil {
		return nil, err
	}
	var (
		tk     = t.Col("ticker", "Ticker", "symbol", "Symbol", "code", "Code")
		capM   = t.Col("market_cap_m")
		sector = t.Col("sector", "Sector")
	)
	records := make([]contracts.CapRecord, 0, t.Len())
	for i := range t.Rows {
		records = append(records, contracts.CapRecord{
			Ticker:     t.Cell(i, tk),
			MarketCapM: ParseFloat(t.Cell(i, capM)),
			Sector:     t.Cell(i, sector),
		})
	}
	return records, nil
}
