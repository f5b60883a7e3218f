package contracts

import "time"

// Pipeline stage definitions (SSOT).
// All logs, run summaries and stage results use these constants.
//
// Flow:
//   S0 → X → S1 → S2 → S3 → S4
//   Universe  Fetchers  Adapters  Combine  Enrich  Report
//
// X-stages are external collaborators: their failure degrades the run
// (downstream stages operate on stale-but-present artifacts), it never
// aborts it.

// Stage represents a pipeline stage
type Stage string

const (
	// StageUniverse S0: resolve the tradable-ticker universe
	StageUniverse Stage = "S0_UNIVERSE"

	// StageCapsFetch X: market-cap collaborator (isolated)
	StageCapsFetch Stage = "X_CAPS_FETCH"

	// StageNewsFetch X: news collaborators, API + RSS (isolated)
	StageNewsFetch Stage = "X_NEWS_FETCH"

	// StageSwing S1: normalize the raw model output to canonical rows
	StageSwing Stage = "S1_SWING"

	// StageMicro S1: adapt the scanner output to canonical rows
	StageMicro Stage = "S1_MICRO"

	// StageCombine S2: order-preserving concatenation of both sides
	StageCombine Stage = "S2_COMBINE"

	// StageCapEnrich S3: market-cap join, unit inference, banding
	StageCapEnrich Stage = "S3_CAP_ENRICH"

	// StageNewsEnrich S3: freshest in-window headline join
	StageNewsEnrich Stage = "S3_NEWS_ENRICH"

	// StageReport S4: persist combined artifacts
	StageReport Stage = "S4_REPORT"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// AllStages returns all pipeline stages in execution order
func AllStages() []Stage {
	return []Stage{
		StageUniverse,
		StageCapsFetch,
		StageNewsFetch,
		StageSwing,
		StageMicro,
		StageCombine,
		StageCapEnrich,
		StageNewsEnrich,
		StageReport,
	}
}

// StageStatus classifies how a stage ended.
type StageStatus string

const (
	// StatusOK: stage ran on complete inputs.
	StatusOK StageStatus = "ok"
	// StatusDegraded: stage ran, but on absent or stale inputs; the
	// pipeline continues by contract.
	StatusDegraded StageStatus = "degraded"
	// StatusFailed: stage could not produce its artifact.
	StatusFailed StageStatus = "failed"
)

// StageResult records the outcome of one stage execution. Degradation is
// observable here instead of being silent.
type StageResult struct {
	Stage       Stage       `json:"stage"`
	Status      StageStatus `json:"status"`
	Reason      string      `json:"reason,omitempty"`
	InputCount  int         `json:"input_count"`
	OutputCount int         `json:"output_count"`
	Duration    int64       `json:"duration_ms"`
}

// RunSummary aggregates the stage results of a single pipeline run.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  int64         `json:"duration_ms"`
	Stages    []StageResult `json:"stages"`
}

// Add appends a stage result.
func (s *RunSummary) Add(r StageResult) {
	s.Stages = append(s.Stages, r)
}

// Degraded reports whether any stage ran in degraded mode.
func (s *RunSummary) Degraded() bool {
	for _, r := range s.Stages {
		if r.Status == StatusDegraded {
			return true
		}
	}
	return false
}

// Failed reports whether any stage failed outright.
func (s *RunSummary) Failed() bool {
	for _, r := range s.Stages {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}
