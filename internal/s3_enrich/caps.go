// Package s3_enrich annotates combined rows with market-cap context and
// recent headlines. Both enrichers mutate rows in place and degrade to a
// no-op when their lookup source is unavailable.
package s3_enrich

import (
	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/internal/ticker"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// CapEnricher joins the market-cap lookup onto combined rows and assigns
// cap bands.
type CapEnricher struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewCapEnricher creates a cap enricher.
func NewCapEnricher(cfg *config.Config, log *logger.Logger) *CapEnricher {
	return &CapEnricher{cfg: cfg, logger: log}
}

// Enrich left-joins the cap lookup onto rows by normalized ticker and
// derives the cap band for every row. Stale enrichment values on the
// input are discarded first, so a vanished lookup row downgrades the
// signal to Unclassified rather than freezing last run's band. A missing
// or unreadable lookup degrades: all bands become Unclassified.
func (e *CapEnricher) Enrich(rows []contracts.SignalRow) (matched int, degraded bool) {
	for i := range rows {
		rows[i].MarketCapM = nil
		rows[i].Sector = ""
		rows[i].CapBand = contracts.BandUnclassified
	}

	lookup, ok := e.loadLookup()
	if !ok {
		degraded = true
	}

	for i := range rows {
		if lookup != nil && rows[i].Joinable() {
			if rec, found := lookup[rows[i].Ticker]; found {
				rows[i].MarketCapM = rec.MarketCapM
				rows[i].Sector = rec.Sector
				matched++
			}
		}
		rows[i].CapBand = contracts.BandOf(rows[i].MarketCapM)
	}

	e.logger.WithFields(map[string]interface{}{
		"rows":    len(rows),
		"matched": matched,
	}).Info("Cap enrichment applied")
	return matched, degraded
}

// loadLookup reads the cap table with the full alias lists, infers the
// source unit, and indexes records by normalized ticker, keep-first.
func (e *CapEnricher) loadLookup() (map[string]contracts.CapRecord, bool) {
	t, err := store.Read(e.cfg.CapsFile())
	if err != nil {
		e.logger.WithError(err).Warn("Cap lookup unavailable; all rows Unclassified")
		return nil, false
	}

	var (
		tk = t.Col("ticker", "Ticker", "symbol", "Symbol", "code", "Code")
		capM = t.Col("market_cap_m", "market_cap", "marketCap", "MarketCap", "mktcap",
			"cap_m", "market_capitalization", "market_capitalisation", "MarketCapitalisation")
		sector = t.Col("sector", "Sector", "industry", "Industry", "GICS_Sector", "GICS Sector")
	)

	caps := make([]*float64, t.Len())
	var present []float64
	for i := range t.Rows {
		caps[i] = store.ParseFloat(t.Cell(i, capM))
		if caps[i] != nil {
			present = append(present, *caps[i])
		}
	}

	// Unit inference over the whole column: a median above one million
	// means the source reported raw currency units, so everything is
	// scaled to millions. The scale is applied uniformly; a lookup that
	// genuinely mixes units stays wrong, loudly, in the log.
	if med := store.Median(present); med != nil && *med > 1_000_000 {
		e.logger.WithField("median", *med).Info("Cap values look like raw units, scaling to millions")
		for i := range caps {
			if caps[i] != nil {
				scaled := *caps[i] / 1e6
				caps[i] = &scaled
			}
		}
	}

	lookup := make(map[string]contracts.CapRecord, t.Len())
	for i := range t.Rows {
		key := ticker.Normalize(t.Cell(i, tk))
		if key == "" {
			continue
		}
		if _, dup := lookup[key]; dup {
			continue
		}
		lookup[key] = contracts.CapRecord{
			Ticker:     key,
			MarketCapM: caps[i],
			Sector:     t.Cell(i, sector),
		}
	}
	return lookup, true
}
