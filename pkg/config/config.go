package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// SSOT: every environment variable is read here and nowhere else.
type Config struct {
	Env string // development, staging, production

	// Working directories for pipeline artifacts
	DataDir      string // caches shared across runs (universe, caps, events)
	OutDir       string // raw model output drop zone
	ArtifactsDir string // per-run rebuilt artifacts (combined report)
	CacheDir     string // per-symbol price caches

	// Engine knobs
	NewsWindowHours  int // rolling recency window for headlines
	SwingDisplayRows int // top-N swing rows shown by the emitter
	MicroMaxRows     int // microcap rows retained after adaptation
	FetchWorkers     int // worker count handed to external fetchers

	// External collaborators
	RSSSourcesFile  string
	TickerAliasFile string
	NewsAPIBaseURL  string
	NewsAPIKey      string
	CapsAPIBaseURL  string
	CapsAPIKey      string

	// API server
	APIPort string

	// Scheduler
	CronSchedule string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables.
// SSOT: this function is the only caller of os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		DataDir:      getEnv("DATA_DIR", "data"),
		OutDir:       getEnv("OUT_DIR", "out"),
		ArtifactsDir: getEnv("ARTIFACTS_DIR", "artifacts"),
		CacheDir:     getEnv("CACHE_DIR", "cache"),

		NewsWindowHours:  getEnvAsInt("NEWS_WINDOW_HOURS", 96),
		SwingDisplayRows: getEnvAsInt("SWING_DISPLAY_ROWS", 12),
		MicroMaxRows:     getEnvAsInt("MICRO_MAX_ROWS", 50),
		FetchWorkers:     getEnvAsInt("FETCH_WORKERS", 8),

		RSSSourcesFile:  getEnv("RSS_SOURCES_FILE", ""),
		TickerAliasFile: getEnv("TICKER_ALIAS_FILE", ""),
		NewsAPIBaseURL:  getEnv("NEWS_API_BASE_URL", "https://eodhd.com/api"),
		NewsAPIKey:      getEnv("NEWS_API_KEY", ""),
		CapsAPIBaseURL:  getEnv("CAPS_API_BASE_URL", "https://eodhd.com/api"),
		CapsAPIKey:      getEnv("CAPS_API_KEY", ""),

		APIPort: getEnv("API_PORT", "8089"),

		CronSchedule: getEnv("CRON_SCHEDULE", "0 30 6 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are sane
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.NewsWindowHours <= 0 {
		return fmt.Errorf("NEWS_WINDOW_HOURS must be positive")
	}
	if c.FetchWorkers <= 0 {
		return fmt.Errorf("FETCH_WORKERS must be positive")
	}
	return nil
}

// Artifact path helpers. Every stage addresses its tables through these,
// never through hardcoded paths.

// UniverseFile is the validated universe artifact (single `ticker` column).
func (c *Config) UniverseFile() string {
	return filepath.Join(c.DataDir, "universe.csv")
}

// SeedFile is the raw seed ticker list, one symbol per line.
func (c *Config) SeedFile() string {
	return filepath.Join(c.DataDir, "universe_seed.txt")
}

// CapsFile is the persisted market-cap lookup cache.
func (c *Config) CapsFile() string {
	return filepath.Join(c.DataDir, "universe_caps.csv")
}

// EventsFile is the merged canonical news-event log.
func (c *Config) EventsFile() string {
	return filepath.Join(c.DataDir, "events.csv")
}

// EventsAPIFile holds events from the JSON news API collaborator.
func (c *Config) EventsAPIFile() string {
	return filepath.Join(c.DataDir, "events_api.csv")
}

// EventsRSSFile holds events from the RSS collaborator.
func (c *Config) EventsRSSFile() string {
	return filepath.Join(c.DataDir, "events_rss.csv")
}

// SwingGlob matches raw swing model outputs; the lexicographically last
// name is treated as the most recent run.
func (c *Config) SwingGlob() string {
	return filepath.Join(c.OutDir, "swing_report_*.csv")
}

// MicroFile is the microcap scanner output.
func (c *Config) MicroFile() string {
	return filepath.Join(c.ArtifactsDir, "microcap_candidates.csv")
}

// CombinedFile is the combined, enriched report.
func (c *Config) CombinedFile() string {
	return filepath.Join(c.ArtifactsDir, "combined_report.csv")
}

// CombinedTickersFile is the deduplicated ticker list of the combined report.
func (c *Config) CombinedTickersFile() string {
	return filepath.Join(c.ArtifactsDir, "combined_tickers.csv")
}

// SummaryFile is the JSON run summary written after each pipeline run.
func (c *Config) SummaryFile() string {
	return filepath.Join(c.ArtifactsDir, "run_summary.json")
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
