// Package handlers serves run artifacts as JSON. Handlers read the
// file-artifact bus on every request; there is no in-process cache to
// fall out of sync with the files.
package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// signalJSON is the wire shape of one combined row. Optional numerics
// marshal as null, mirroring the empty CSV cell.
type signalJSON struct {
	Group      string   `json:"group"`
	Ticker     string   `json:"ticker"`
	Label      string   `json:"label"`
	ProbPct    *float64 `json:"prob_pct"`
	ExpMovePct *float64 `json:"exp_move_pct"`
	Side       string   `json:"side"`
	Entry      *float64 `json:"entry"`
	TP         *float64 `json:"tp"`
	SL         *float64 `json:"sl"`
	Headline   string   `json:"headline"`
	Source     string   `json:"source"`
	RelVol     *float64 `json:"rel_vol,omitempty"`
	DollarVol  *float64 `json:"dollar_vol,omitempty"`
	MarketCapM *float64 `json:"market_cap_m"`
	Sector     string   `json:"sector,omitempty"`
	CapBand    string   `json:"cap_band"`
}

// ReportHandler serves the combined report and run metadata.
type ReportHandler struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewReportHandler creates a report handler.
func NewReportHandler(cfg *config.Config, log *logger.Logger) *ReportHandler {
	return &ReportHandler{cfg: cfg, logger: log}
}

// GetReport returns the combined report rows. 404 until the first run
// has produced the artifact.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rows, err := store.ReadCombined(h.cfg.CombinedFile())
	if err != nil {
		h.artifactError(w, err, "combined report not available")
		return
	}

	out := make([]signalJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, signalJSON{
			Group:      row.Group,
			Ticker:     row.Ticker,
			Label:      row.Label,
			ProbPct:    row.ProbPct,
			ExpMovePct: row.ExpMovePct,
			Side:       row.Side,
			Entry:      row.Entry,
			TP:         row.TP,
			SL:         row.SL,
			Headline:   row.Headline,
			Source:     row.Source,
			RelVol:     row.RelVol,
			DollarVol:  row.DollarVol,
			MarketCapM: row.MarketCapM,
			Sector:     row.Sector,
			CapBand:    string(row.CapBand),
		})
	}
	h.writeJSON(w, map[string]interface{}{
		"count":   len(out),
		"signals": out,
	})
}

// GetSummary returns the latest persisted run summary.
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(h.cfg.SummaryFile())
	if err != nil {
		h.artifactError(w, err, "run summary not available")
		return
	}

	var summary contracts.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		h.artifactError(w, err, "run summary unreadable")
		return
	}
	h.writeJSON(w, summary)
}

// GetUniverse returns the resolved ticker universe.
func (h *ReportHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	tickers, err := store.ReadUniverse(h.cfg.UniverseFile())
	if err != nil {
		h.artifactError(w, err, "universe not available")
		return
	}
	h.writeJSON(w, map[string]interface{}{
		"count":   len(tickers),
		"tickers": tickers,
	})
}

func (h *ReportHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Response encode failed")
	}
}

func (h *ReportHandler) artifactError(w http.ResponseWriter, err error, msg string) {
	status := http.StatusInternalServerError
	if errors.Is(err, fs.ErrNotExist) {
		status = http.StatusNotFound
	} else {
		h.logger.WithError(err).Error("Artifact read failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
