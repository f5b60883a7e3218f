package s3_enrich

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/internal/ticker"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// Event timestamps arrive in whatever shape the collaborator produced.
// Layouts without a zone are taken as UTC.
var eventTSLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NewsEnricher maintains the merged event log and attaches the freshest
// in-window headline to each combined row.
type NewsEnricher struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewNewsEnricher creates a news enricher.
func NewNewsEnricher(cfg *config.Config, log *logger.Logger) *NewsEnricher {
	return &NewsEnricher{cfg: cfg, logger: log}
}

// MergeSources rebuilds the canonical event log from the collaborator
// drop files, API events ahead of RSS events, with the previous log as
// lowest priority so history accumulates across runs. Rows with
// unparseable timestamps survive the merge; the log is an audit trail
// and recency filtering happens at enrichment time.
func (n *NewsEnricher) MergeSources() (int, error) {
	api := n.readOptional(n.cfg.EventsAPIFile())
	rss := n.readOptional(n.cfg.EventsRSSFile())
	prev := n.readOptional(n.cfg.EventsFile())

	merged := store.MergeEventTables(api, rss, prev)
	if err := merged.Write(n.cfg.EventsFile()); err != nil {
		return 0, fmt.Errorf("write event log: %w", err)
	}

	n.logger.WithField("events", merged.Len()).Info("Event log merged")
	return merged.Len(), nil
}

// Enrich overwrites each matched row's headline with its ticker's
// freshest in-window event and tags the source with the event origin.
// Selection is deterministic: events sort by timestamp descending with
// log order breaking ties, then the first event per ticker wins.
// A missing event log degrades to zero matches.
func (n *NewsEnricher) Enrich(rows []contracts.SignalRow, now time.Time) (matched int, degraded bool) {
	events, ok := n.loadWindow(now)
	if !ok {
		return 0, true
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].TS.After(events[j].TS)
	})

	latest := make(map[string]contracts.NewsEvent, len(events))
	for _, ev := range events {
		if _, dup := latest[ev.Ticker]; dup {
			continue
		}
		latest[ev.Ticker] = ev
	}

	for i := range rows {
		if !rows[i].Joinable() {
			continue
		}
		ev, found := latest[rows[i].Ticker]
		if !found {
			continue
		}
		rows[i].Headline = ev.Headline
		rows[i].Source = rows[i].Source + "+" + ev.Source
		matched++
	}

	n.logger.WithFields(map[string]interface{}{
		"events":  len(events),
		"matched": matched,
	}).Info("News enrichment applied")
	return matched, false
}

// loadWindow reads the event log and keeps rows with a parseable
// timestamp inside the recency window, an attached headline, and a
// joinable ticker.
func (n *NewsEnricher) loadWindow(now time.Time) ([]contracts.NewsEvent, bool) {
	t, err := store.Read(n.cfg.EventsFile())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			n.logger.WithError(err).Warn("Event log unreadable; skipping news enrichment")
		}
		return nil, false
	}

	var (
		tk       = t.Col("ticker", "Ticker", "symbol", "Symbol")
		headline = t.Col("headline", "Headline", "title")
		source   = t.Col("source", "Source", "domain")
		ts       = t.Col("ts", "ts_utc", "timestamp", "published_at", "date")
	)

	cutoff := now.Add(-time.Duration(n.cfg.NewsWindowHours) * time.Hour)
	var events []contracts.NewsEvent
	for i := range t.Rows {
		when, ok := parseEventTS(t.Cell(i, ts))
		if !ok || when.Before(cutoff) {
			continue
		}
		ev := contracts.NewsEvent{
			Ticker:   ticker.Normalize(t.Cell(i, tk)),
			Headline: t.Cell(i, headline),
			Source:   t.Cell(i, source),
			TS:       when,
		}
		if ev.Ticker == "" || ev.Headline == "" {
			continue
		}
		events = append(events, ev)
	}
	return events, true
}

// readOptional reads an event drop file, nil when absent or unreadable.
func (n *NewsEnricher) readOptional(path string) *store.Table {
	t, err := store.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			n.logger.WithError(err).WithField("path", path).Warn("Event source unreadable, skipping")
		}
		return nil
	}
	return t
}

func parseEventTS(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range eventTSLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
