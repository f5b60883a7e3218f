// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"

	"github.com/signaldesk/signaldesk/internal/pipeline"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// PipelineJob runs the full pipeline on the configured market schedule.
type PipelineJob struct {
	cfg      *config.Config
	logger   *logger.Logger
	pipeline *pipeline.Pipeline
}

// NewPipelineJob creates the scheduled pipeline job.
func NewPipelineJob(cfg *config.Config, log *logger.Logger, p *pipeline.Pipeline) *PipelineJob {
	return &PipelineJob{cfg: cfg, logger: log, pipeline: p}
}

// Name returns the job name.
func (j *PipelineJob) Name() string {
	return "pipeline_run"
}

// Schedule returns the cron expression from configuration.
func (j *PipelineJob) Schedule() string {
	return j.cfg.CronSchedule
}

// Run executes one pipeline run. A degraded run is a success from the
// scheduler's point of view; only a failed stage triggers the retry.
func (j *PipelineJob) Run(ctx context.Context) error {
	summary, err := j.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	if summary.Degraded() {
		j.logger.WithField("run_id", summary.RunID).Warn("Scheduled run completed degraded")
	}
	return nil
}
