package commands

import (
	"github.com/signaldesk/signaldesk/internal/external/capsapi"
	"github.com/signaldesk/signaldesk/internal/external/newsapi"
	"github.com/signaldesk/signaldesk/internal/external/rss"
	"github.com/signaldesk/signaldesk/internal/pipeline"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// buildPipeline wires the pipeline with every collaborator that is
// configured. Unconfigured collaborators stay nil and their stages run
// degraded.
func buildPipeline(cfg *config.Config, log *logger.Logger) *pipeline.Pipeline {
	p := pipeline.New(cfg, log)

	if caps := capsapi.New(cfg, log); caps.Enabled() {
		p = p.WithCapsFetcher(caps)
	}
	if news := newsapi.New(cfg, log); news.Enabled() {
		p = p.WithNewsAPIFetcher(news)
	}
	if feeds := rss.New(cfg, log); feeds.Enabled() {
		p = p.WithRSSFetcher(feeds)
	}
	return p
}

// loadConfig loads config and applies global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
