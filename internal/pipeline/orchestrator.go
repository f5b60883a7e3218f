// Package pipeline runs the stages in order over the file-artifact bus.
// External collaborators are isolated: their absence or failure marks
// the run degraded and never aborts it. Only a broken artifact write is
// a stage failure.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/s0_universe"
	"github.com/signaldesk/signaldesk/internal/s1_reports"
	"github.com/signaldesk/signaldesk/internal/s2_combine"
	"github.com/signaldesk/signaldesk/internal/s3_enrich"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// Fetcher is an external collaborator refreshing one lookup artifact.
// A nil fetcher means the collaborator is not configured.
type Fetcher interface {
	Fetch(ctx context.Context, tickers []string) (int, error)
}

// Pipeline wires the stages together.
type Pipeline struct {
	cfg    *config.Config
	logger *logger.Logger

	caps    Fetcher
	newsAPI Fetcher
	newsRSS Fetcher
}

// New creates a pipeline without external collaborators; all fetch
// stages run degraded until fetchers are attached.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, logger: log}
}

// WithCapsFetcher attaches the market-cap collaborator.
func (p *Pipeline) WithCapsFetcher(f Fetcher) *Pipeline {
	p.caps = f
	return p
}

// WithNewsAPIFetcher attaches the JSON news collaborator.
func (p *Pipeline) WithNewsAPIFetcher(f Fetcher) *Pipeline {
	p.newsAPI = f
	return p
}

// WithRSSFetcher attaches the RSS news collaborator.
func (p *Pipeline) WithRSSFetcher(f Fetcher) *Pipeline {
	p.newsRSS = f
	return p
}

// Run executes every stage in order and persists the run summary.
// The returned summary records per-stage status; the error is non-nil
// only when a stage failed outright or the summary itself could not be
// written.
func (p *Pipeline) Run(ctx context.Context) (*contracts.RunSummary, error) {
	start := time.Now()
	summary := &contracts.RunSummary{
		RunID:     start.UTC().Format("20060102T150405Z"),
		StartedAt: start.UTC(),
	}
	p.logger.WithField("run_id", summary.RunID).Info("Pipeline run started")

	tickers := p.runUniverse(summary)
	p.runCapsFetch(ctx, summary, tickers)
	p.runNewsFetch(ctx, summary, tickers)

	swing := p.runSwing(summary)
	micro := p.runMicro(summary)
	combined, combineOK := p.runCombine(summary, swing, micro)

	if combineOK {
		p.runCapEnrich(summary, combined)
		p.runNewsEnrich(summary, combined)
		p.runReport(summary, combined)
	}

	summary.Duration = time.Since(start).Milliseconds()
	if err := p.writeSummary(summary); err != nil {
		return summary, err
	}

	p.logger.WithFields(map[string]interface{}{
		"run_id":   summary.RunID,
		"degraded": summary.Degraded(),
		"failed":   summary.Failed(),
	}).Info("Pipeline run finished")

	if summary.Failed() {
		return summary, fmt.Errorf("run %s: one or more stages failed", summary.RunID)
	}
	return summary, nil
}

func (p *Pipeline) runUniverse(summary *contracts.RunSummary) []string {
	start := time.Now()
	tickers, src, err := s0_universe.NewResolver(p.cfg, p.logger).Resolve()

	result := contracts.StageResult{
		Stage:       contracts.StageUniverse,
		Status:      contracts.StatusOK,
		OutputCount: len(tickers),
		Duration:    time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil:
		result.Status = contracts.StatusFailed
		result.Reason = err.Error()
	case src == s0_universe.SourceEmpty:
		result.Status = contracts.StatusDegraded
		result.Reason = "no universe source available"
	case src != s0_universe.SourceArtifact:
		result.Reason = "derived from " + string(src)
	}
	summary.Add(result)
	return tickers
}

func (p *Pipeline) runCapsFetch(ctx context.Context, summary *contracts.RunSummary, tickers []string) {
	start := time.Now()
	result := contracts.StageResult{
		Stage:      contracts.StageCapsFetch,
		Status:     contracts.StatusOK,
		InputCount: len(tickers),
	}
	switch {
	case p.caps == nil:
		result.Status = contracts.StatusDegraded
		result.Reason = "collaborator not configured"
	case len(tickers) == 0:
		result.Status = contracts.StatusDegraded
		result.Reason = "empty universe"
	default:
		n, err := p.caps.Fetch(ctx, tickers)
		result.OutputCount = n
		if err != nil {
			result.Status = contracts.StatusDegraded
			result.Reason = err.Error()
		}
	}
	result.Duration = time.Since(start).Milliseconds()
	summary.Add(result)
}

func (p *Pipeline) runNewsFetch(ctx context.Context, summary *contracts.RunSummary, tickers []string) {
	start := time.Now()
	result := contracts.StageResult{
		Stage:      contracts.StageNewsFetch,
		Status:     contracts.StatusOK,
		InputCount: len(tickers),
	}

	configured := 0
	for _, f := range []Fetcher{p.newsAPI, p.newsRSS} {
		if f == nil {
			continue
		}
		configured++
		n, err := f.Fetch(ctx, tickers)
		result.OutputCount += n
		if err != nil {
			result.Status = contracts.StatusDegraded
			result.Reason = err.Error()
		}
	}
	if configured == 0 {
		result.Status = contracts.StatusDegraded
		result.Reason = "no news collaborator configured"
	}

	// The merged log is rebuilt even without fresh drops so history
	// survives unchanged.
	if _, err := s3_enrich.NewNewsEnricher(p.cfg, p.logger).MergeSources(); err != nil {
		result.Status = contracts.StatusFailed
		result.Reason = err.Error()
	}

	result.Duration = time.Since(start).Milliseconds()
	summary.Add(result)
}

func (p *Pipeline) runSwing(summary *contracts.RunSummary) []contracts.SignalRow {
	start := time.Now()
	rows, path, _ := s1_reports.NewSwingNormalizer(p.cfg, p.logger).Normalize()

	result := contracts.StageResult{
		Stage:       contracts.StageSwing,
		Status:      contracts.StatusOK,
		OutputCount: len(rows),
		Duration:    time.Since(start).Milliseconds(),
	}
	if path == "" {
		result.Status = contracts.StatusDegraded
		result.Reason = "no swing report candidates"
	}
	summary.Add(result)
	return rows
}

func (p *Pipeline) runMicro(summary *contracts.RunSummary) []contracts.SignalRow {
	start := time.Now()
	rows, _ := s1_reports.NewMicroAdapter(p.cfg, p.logger).Adapt()

	result := contracts.StageResult{
		Stage:       contracts.StageMicro,
		Status:      contracts.StatusOK,
		OutputCount: len(rows),
		Duration:    time.Since(start).Milliseconds(),
	}
	if !store.Exists(p.cfg.MicroFile()) {
		result.Status = contracts.StatusDegraded
		result.Reason = "no microcap candidates"
	}
	summary.Add(result)
	return rows
}

func (p *Pipeline) runCombine(summary *contracts.RunSummary, swing, micro []contracts.SignalRow) ([]contracts.SignalRow, bool) {
	start := time.Now()
	combined, err := s2_combine.NewCombiner(p.cfg, p.logger).Combine(swing, micro)

	result := contracts.StageResult{
		Stage:       contracts.StageCombine,
		Status:      contracts.StatusOK,
		InputCount:  len(swing) + len(micro),
		OutputCount: len(combined),
		Duration:    time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Status = contracts.StatusFailed
		result.Reason = err.Error()
	}
	summary.Add(result)
	return combined, err == nil
}

func (p *Pipeline) runCapEnrich(summary *contracts.RunSummary, rows []contracts.SignalRow) {
	start := time.Now()
	matched, degraded := s3_enrich.NewCapEnricher(p.cfg, p.logger).Enrich(rows)

	result := contracts.StageResult{
		Stage:       contracts.StageCapEnrich,
		Status:      contracts.StatusOK,
		InputCount:  len(rows),
		OutputCount: matched,
		Duration:    time.Since(start).Milliseconds(),
	}
	if degraded {
		result.Status = contracts.StatusDegraded
		result.Reason = "cap lookup unavailable"
	}
	summary.Add(result)
}

func (p *Pipeline) runNewsEnrich(summary *contracts.RunSummary, rows []contracts.SignalRow) {
	start := time.Now()
	matched, degraded := s3_enrich.NewNewsEnricher(p.cfg, p.logger).Enrich(rows, time.Now().UTC())

	result := contracts.StageResult{
		Stage:       contracts.StageNewsEnrich,
		Status:      contracts.StatusOK,
		InputCount:  len(rows),
		OutputCount: matched,
		Duration:    time.Since(start).Milliseconds(),
	}
	if degraded {
		result.Status = contracts.StatusDegraded
		result.Reason = "event log unavailable"
	}
	summary.Add(result)
}

// runReport persists the enriched rows back onto the combined artifacts.
func (p *Pipeline) runReport(summary *contracts.RunSummary, rows []contracts.SignalRow) {
	start := time.Now()
	result := contracts.StageResult{
		Stage:       contracts.StageReport,
		Status:      contracts.StatusOK,
		InputCount:  len(rows),
		OutputCount: len(rows),
	}
	if err := store.WriteCombined(p.cfg.CombinedFile(), rows); err != nil {
		result.Status = contracts.StatusFailed
		result.Reason = err.Error()
	} else if err := store.WriteCombinedTickers(p.cfg.CombinedTickersFile(), rows); err != nil {
		result.Status = contracts.StatusFailed
		result.Reason = err.Error()
	}
	result.Duration = time.Since(start).Milliseconds()
	summary.Add(result)
}

func (p *Pipeline) writeSummary(summary *contracts.RunSummary) error {
	path := p.cfg.SummaryFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}
