// Package s4_report renders the combined artifact for humans. Rendering
// is read-only: sections are sorted and truncated in memory and the
// artifact on disk is never touched.
package s4_report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/signaldesk/signaldesk/internal/contracts"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// headlineMaxRunes keeps one signal per terminal line.
const headlineMaxRunes = 90

var displayColumns = []string{
	"ticker", "cap_band", "label", "prob_pct", "exp_move_pct",
	"entry", "tp", "sl", "headline",
}

// Emitter renders the combined report to a writer.
type Emitter struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewEmitter creates a report emitter.
func NewEmitter(cfg *config.Config, log *logger.Logger) *Emitter {
	return &Emitter{cfg: cfg, logger: log}
}

// Emit reads the combined artifact and writes the two-section report.
// Swing rows sort by probability descending, expected move breaking
// ties; micro rows sort by expected move descending. Unknown values
// sort last. A missing combined artifact is the one failure the
// presentation layer reports instead of papering over.
func (e *Emitter) Emit(w io.Writer) error {
	rows, err := store.ReadCombined(e.cfg.CombinedFile())
	if err != nil {
		return fmt.Errorf("read combined report: %w", err)
	}

	var swing, micro []contracts.SignalRow
	for _, r := range rows {
		switch r.Group {
		case contracts.GroupMicro:
			micro = append(micro, r)
		default:
			swing = append(swing, r)
		}
	}

	sort.SliceStable(swing, func(i, j int) bool {
		if c := compareDesc(swing[i].ProbPct, swing[j].ProbPct); c != 0 {
			return c < 0
		}
		return compareDesc(swing[i].ExpMovePct, swing[j].ExpMovePct) < 0
	})
	sort.SliceStable(micro, func(i, j int) bool {
		return compareDesc(micro[i].ExpMovePct, micro[j].ExpMovePct) < 0
	})

	if e.cfg.SwingDisplayRows > 0 && len(swing) > e.cfg.SwingDisplayRows {
		swing = swing[:e.cfg.SwingDisplayRows]
	}

	if err := e.section(w, contracts.GroupSwing, swing); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := e.section(w, contracts.GroupMicro, micro); err != nil {
		return err
	}

	e.logger.WithFields(map[string]interface{}{
		"swing": len(swing),
		"micro": len(micro),
	}).Info("Report emitted")
	return nil
}

func (e *Emitter) section(w io.Writer, title string, rows []contracts.SignalRow) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", title); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(no signals)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, joinTabs(displayColumns))
	for _, r := range rows {
		fmt.Fprintln(tw, joinTabs([]string{
			r.Ticker,
			string(r.CapBand),
			r.Label,
			formatPct(r.ProbPct),
			formatPct(r.ExpMovePct),
			formatPrice(r.Entry),
			formatPrice(r.TP),
			formatPrice(r.SL),
			truncate(r.Headline, headlineMaxRunes),
		}))
	}
	return tw.Flush()
}

func joinTabs(cells []string) string {
	out := ""
	for i, c := range cells {
		if i > 0 {
			out += "\t"
		}
		out += c
	}
	return out
}

func formatPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

// truncate caps a headline at max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// compareDesc orders two optional values descending with nil last:
// negative when a sorts before b.
func compareDesc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}
