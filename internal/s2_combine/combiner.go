// Package s2_combine concatenates the per-source signal groups into the
// single combined artifact the enrichment stages operate on.
package s2_combine

import (
	"fmt"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// Combiner builds the combined report and its ticker sidecar.
type Combiner struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewCombiner creates a combiner.
func NewCombiner(cfg *config.Config, log *logger.Logger) *Combiner {
	return &Combiner{cfg: cfg, logger: log}
}

// Combine appends the groups in presentation order, swing before micro,
// preserving each group's internal ordering. No dedupe across groups: a
// ticker flagged by both sources appears twice. Both artifacts are
// written even when every input is empty.
func (c *Combiner) Combine(swing, micro []contracts.SignalRow) ([]contracts.SignalRow, error) {
	combined := make([]contracts.SignalRow, 0, len(swing)+len(micro))
	combined = append(combined, swing...)
	combined = append(combined, micro...)

	if err := store.WriteCombined(c.cfg.CombinedFile(), combined); err != nil {
		return nil, fmt.Errorf("write combined report: %w", err)
	}
	if err := store.WriteCombinedTickers(c.cfg.CombinedTickersFile(), combined); err != nil {
		return nil, fmt.Errorf("write combined tickers: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"swing": len(swing),
		"micro": len(micro),
		"total": len(combined),
	}).Info("Signal groups combined")
	return combined, nil
}
