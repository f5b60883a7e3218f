// Package s0_universe builds the tradable-ticker list from the best
// available source. The resolver walks a fixed priority chain and never
// fails: the worst case is a header-only universe.
package s0_universe

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/internal/ticker"
	"github.com/signaldesk/signaldesk/pkg/config"
	"github.com/signaldesk/signaldesk/pkg/logger"
)

// Source identifies which step of the priority chain produced the
// universe.
type Source string

const (
	// SourceArtifact: pre-validated universe file used as-is.
	SourceArtifact Source = "artifact"
	// SourceSeed: raw seed list, normalized line by line.
	SourceSeed Source = "seed"
	// SourcePriceCache: symbols recovered from price-cache filenames.
	SourcePriceCache Source = "price_cache"
	// SourceEmpty: nothing available; header-only universe.
	SourceEmpty Source = "empty"
)

// Matches per-symbol price cache files such as CBA.AX_ohlc.csv or
// BHP.csv; the captured symbol still goes through the normalizer.
var cacheFilePattern = regexp.MustCompile(`^([0-9A-Za-z]+(?:\.(?:AX|ASX|ax|asx))?)(?:_ohlc)?\.csv$`)

// Resolver builds the universe artifact.
type Resolver struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewResolver creates a universe resolver.
func NewResolver(cfg *config.Config, log *logger.Logger) *Resolver {
	return &Resolver{cfg: cfg, logger: log}
}

// Resolve walks the priority chain, persists the universe artifact when
// it was derived (steps 2-4), and returns the ticker list. Reruns are
// idempotent once the validated artifact exists: step 1 is a no-op.
func (r *Resolver) Resolve() ([]string, Source, error) {
	// 1. Pre-validated artifact wins outright.
	if store.Exists(r.cfg.UniverseFile()) {
		tickers, err := store.ReadUniverse(r.cfg.UniverseFile())
		if err == nil {
			r.logger.WithFields(map[string]interface{}{
				"source": SourceArtifact,
				"count":  len(tickers),
			}).Info("Universe resolved")
			return tickers, SourceArtifact, nil
		}
		r.logger.WithError(err).Warn("Universe artifact unreadable, falling through")
	}

	// 2. Raw seed list, one symbol per line.
	if tickers, ok := r.fromSeed(); ok {
		return r.persist(tickers, SourceSeed)
	}

	// 3. Symbols recovered from price-cache filenames.
	if tickers, ok := r.fromPriceCache(); ok {
		return r.persist(tickers, SourcePriceCache)
	}

	// 4. Header-only universe. Downstream stages run unconditionally.
	return r.persist(nil, SourceEmpty)
}

// persist writes the derived universe and returns it.
func (r *Resolver) persist(tickers []string, src Source) ([]string, Source, error) {
	if err := store.WriteUniverse(r.cfg.UniverseFile(), tickers); err != nil {
		return nil, src, fmt.Errorf("write universe: %w", err)
	}
	r.logger.WithFields(map[string]interface{}{
		"source": src,
		"count":  len(tickers),
	}).Info("Universe resolved")
	return tickers, src, nil
}

// fromSeed reads the seed list: blank lines and # comments skipped,
// every entry normalized, empties dropped, first occurrence kept.
func (r *Resolver) fromSeed() ([]string, bool) {
	f, err := os.Open(r.cfg.SeedFile())
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var tickers []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > 0 && line[0] == '#' {
			continue
		}
		tk := ticker.Normalize(line)
		if tk == "" || seen[tk] {
			continue
		}
		seen[tk] = true
		tickers = append(tickers, tk)
	}
	if scanner.Err() != nil {
		r.logger.WithError(scanner.Err()).Warn("Seed list read failed, falling through")
		return nil, false
	}
	return tickers, len(tickers) > 0
}

// fromPriceCache recovers symbols from per-symbol cache filenames.
func (r *Resolver) fromPriceCache() ([]string, bool) {
	entries, err := os.ReadDir(r.cfg.CacheDir)
	if err != nil {
		return nil, false
	}

	var tickers []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := cacheFilePattern.FindStringSubmatch(filepath.Base(entry.Name()))
		if m == nil {
			continue
		}
		tk := ticker.Normalize(m[1])
		if tk == "" || seen[tk] {
			continue
		}
		seen[tk] = true
		tickers = append(tickers, tk)
	}
	return tickers, len(tickers) > 0
}
