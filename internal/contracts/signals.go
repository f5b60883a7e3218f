package contracts

import (
	"math"
	"time"
)

// Signal groups. Every combined row belongs to exactly one.
const (
	GroupSwing = "Daily Swing (Large/Mid)"
	GroupMicro = "Intraday Spikes (Microcap)"
)

// Source tags recorded on canonical rows before any news enrichment.
const (
	SourceSwingModel   = "swing_model"
	SourceMicroScanner = "microcap_scanner"
)

// DefaultMicroHeadline is attached to scanner rows that carry no news.
const DefaultMicroHeadline = "Momentum (no news)"

// SignalRow is the canonical signal schema every source is normalized
// into before combination. Optional numerics are nil when the source
// did not provide them; an empty CSV cell round-trips to nil.
//
// Invariant: a row whose Ticker is empty after normalization is retained
// but unjoinable; enrichment never matches it.
type SignalRow struct {
	Group      string
	Ticker     string
	Label      string
	ProbPct    *float64
	ExpMovePct *float64
	Side       string
	Entry      *float64
	TP         *float64
	SL         *float64
	Headline   string
	Source     string

	// Scanner liquidity metrics; nil for swing rows.
	RelVol    *float64
	DollarVol *float64

	// Enrichment output
	MarketCapM *float64
	Sector     string
	CapBand    CapBand
}

// Joinable reports whether the row participates in enrichment joins.
func (r *SignalRow) Joinable() bool {
	return r.Ticker != ""
}

// CapRecord is one entry of the market-cap lookup.
// Invariant: MarketCapM is always expressed in millions after ingestion,
// regardless of the source unit.
type CapRecord struct {
	Ticker     string
	MarketCapM *float64
	Sector     string
}

// NewsEvent is one headline attached to a ticker. Events survive
// ingestion only with a parseable UTC timestamp.
type NewsEvent struct {
	Ticker   string
	Headline string
	Source   string
	TS       time.Time
}

// CapBand is the coarse market-capitalization bucket.
type CapBand string

const (
	BandLarge        CapBand = "Large-cap"
	BandMid          CapBand = "Mid-cap"
	BandMicro        CapBand = "Micro-cap"
	BandUnclassified CapBand = "Unclassified"
)

// Band thresholds in millions. Owned by this engine, not configurable.
const (
	LargeCapMinM = 5000.0
	MidCapMinM   = 500.0
)

// BandOf assigns the cap band for a market cap in millions.
// nil or NaN means the cap is unknown.
func BandOf(capM *float64) CapBand {
	if capM == nil || math.IsNaN(*capM) {
		return BandUnclassified
	}
	switch {
	case *capM >= LargeCapMinM:
		return BandLarge
	case *capM >= MidCapMinM:
		return BandMid
	default:
		return BandMicro
	}
}
