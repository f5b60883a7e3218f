package store

import (
	"time"

	"github.com/signaldesk/signaldesk/internal/contracts"
)

// EventColumns is the canonical schema of persisted news-event tables.
var EventColumns = []string{"ticker", "headline", "source", "ts"}

// WriteEvents persists news events in the canonical event schema.
func WriteEvents(path string, events []contracts.NewsEvent) error {
	t := New(EventColumns...)
	for _, ev := range events {
		t.Append(ev.Ticker, ev.Headline, ev.Source, ev.TS.UTC().Format(time.RFC3339))
	}
	return t.Write(path)
}

// MergeEventTables concatenates event tables row-wise in the given
// priority order and drops exact duplicate rows, keep-first. Tables that
// are nil (absent source) contribute nothing. Rows with unparseable
// timestamps are retained here on purpose: the merged log is an audit
// trail; recency filtering happens at enrichment time.
func MergeEventTables(tables ...*Table) *Table {
	merged := New(EventColumns...)
	seen := make(map[[4]string]bool)

	for _, t := range tables {
		if t == nil {
			continue
		}
		var (
			tk       = t.Col("ticker", "Ticker", "symbol", "Symbol")
			headline = t.Col("headline", "Headline", "title")
			source   = t.Col("source", "Source", "domain")
			ts       = t.Col("ts", "ts_utc", "timestamp", "published_at", "date")
		)
		for i := range t.Rows {
			key := [4]string{
				t.Cell(i, tk),
				t.Cell(i, headline),
				t.Cell(i, source),
				t.Cell(i, ts),
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			merged.Append(key[0], key[1], key[2], key[3])
		}
	}
	return merged
}
