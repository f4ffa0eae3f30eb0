// Package config implements the Configuration knobs of spec.md §6 plus
// the per-task configuration stack of spec.md §5, adapted from the
// teacher's config/config.go: layered env-var defaults with an optional
// YAML overlay, env wins on conflict.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"paratest/event"
	"paratest/timelimit"
)

// Configuration holds every knob the core runtime and its optional
// collaborators (store, reportserver) recognize.
type Configuration struct {
	Parallelization ParallelizationConfig
	TimeLimit       TimeLimitConfig
	EventHandler    event.Handler `yaml:"-"`

	Store        StoreConfig
	ReportServer ReportServerConfig

	// ConfigFile, when set, names a YAML file merged under the env-var
	// layer — env wins on conflict, matching the teacher's
	// Supabase/Database env-beats-file fallback pattern.
	ConfigFile string
}

// ParallelizationConfig governs spec.md §6's parallelization_enabled and
// default_parallelization_width knobs.
type ParallelizationConfig struct {
	Enabled bool `yaml:"enabled"`
	Width   int  `yaml:"width"`
}

// TimeLimitConfig governs spec.md §6's default_test_time_limit,
// test_time_limit_granularity and maximum_test_time_limit knobs, all
// expressed in whole minutes per timelimit.Minutes.
type TimeLimitConfig struct {
	Default     timelimit.Minutes `yaml:"default_minutes"`
	Granularity timelimit.Minutes `yaml:"granularity_minutes"`
	Maximum     timelimit.Minutes `yaml:"maximum_minutes"`
}

// StoreConfig is the [EXPANSION] knob for the optional store.Recorder
// observer (backed by store.PostgresHistory) that cmd/paratest-demo
// wires into its PlanRunner when Enabled.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// ReportServerConfig is the [EXPANSION] knob for the optional
// reportserver.Server observer that cmd/paratest-demo wires and starts
// when Enabled. ForwardURL, when set, additionally wires
// a reportserver.Forwarder observer that posts every event to that URL.
type ReportServerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	ForwardURL string `yaml:"forward_url"`
}

// fileOverlay mirrors the subset of Configuration that may come from
// ConfigFile; EventHandler can't be expressed in YAML so it's excluded.
type fileOverlay struct {
	Parallelization *ParallelizationConfig `yaml:"parallelization"`
	TimeLimit       *TimeLimitConfig       `yaml:"time_limit"`
	Store           *StoreConfig           `yaml:"store"`
	ReportServer    *ReportServerConfig    `yaml:"report_server"`
}

// Default returns spec.md §6's documented defaults: parallelization on
// with unlimited width (0), no time limit, a 1-minute granularity. It
// reads no environment variables; Load applies MAX_PARALLELIZATION_WIDTH
// and the other env overrides on top of it.
func Default() *Configuration {
	return &Configuration{
		Parallelization: ParallelizationConfig{Enabled: true, Width: 0},
		TimeLimit:       TimeLimitConfig{Default: 0, Granularity: 1, Maximum: 0},
	}
}

// Load builds a Configuration from environment variables, then merges an
// optional YAML file (ConfigFile, itself read from CONFIG_FILE) under
// it — env-set fields always win, matching the teacher's LoadConfig.
func Load() (*Configuration, error) {
	cfg := Default()

	cfg.Parallelization.Enabled = getBoolEnv("PARALLELIZATION_ENABLED", cfg.Parallelization.Enabled)
	cfg.Parallelization.Width = getIntEnv("MAX_PARALLELIZATION_WIDTH", cfg.Parallelization.Width)

	cfg.TimeLimit.Default = timelimit.Minutes(getIntEnv("DEFAULT_TEST_TIME_LIMIT_MINUTES", int(cfg.TimeLimit.Default)))
	cfg.TimeLimit.Granularity = timelimit.Minutes(getIntEnv("TEST_TIME_LIMIT_GRANULARITY_MINUTES", int(cfg.TimeLimit.Granularity)))
	cfg.TimeLimit.Maximum = timelimit.Minutes(getIntEnv("MAXIMUM_TEST_TIME_LIMIT_MINUTES", int(cfg.TimeLimit.Maximum)))

	cfg.Store.Enabled = getBoolEnv("STORE_ENABLED", false)
	cfg.Store.DSN = getEnv("STORE_DSN", "")

	cfg.ReportServer.Enabled = getBoolEnv("REPORT_SERVER_ENABLED", false)
	cfg.ReportServer.Addr = getEnv("REPORT_SERVER_ADDR", ":8089")
	cfg.ReportServer.ForwardURL = getEnv("REPORT_SERVER_FORWARD_URL", "")

	cfg.ConfigFile = getEnv("CONFIG_FILE", "")
	if cfg.ConfigFile != "" {
		if err := mergeFile(cfg, cfg.ConfigFile); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", cfg.ConfigFile, err)
		}
	}

	return cfg, nil
}

// mergeFile overlays file-provided values onto cfg one block at a time:
// a block present in the file (parallelization, time_limit, store,
// report_server) replaces cfg's whole block only when none of that
// block's env vars is set; otherwise the env-derived block is kept as is.
func mergeFile(cfg *Configuration, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return err
	}

	if overlay.Parallelization != nil && os.Getenv("PARALLELIZATION_ENABLED") == "" && os.Getenv("MAX_PARALLELIZATION_WIDTH") == "" {
		cfg.Parallelization = *overlay.Parallelization
	}
	if overlay.TimeLimit != nil && os.Getenv("DEFAULT_TEST_TIME_LIMIT_MINUTES") == "" &&
		os.Getenv("TEST_TIME_LIMIT_GRANULARITY_MINUTES") == "" && os.Getenv("MAXIMUM_TEST_TIME_LIMIT_MINUTES") == "" {
		cfg.TimeLimit = *overlay.TimeLimit
	}
	if overlay.Store != nil && os.Getenv("STORE_ENABLED") == "" && os.Getenv("STORE_DSN") == "" {
		cfg.Store = *overlay.Store
	}
	if overlay.ReportServer != nil && os.Getenv("REPORT_SERVER_ENABLED") == "" &&
		os.Getenv("REPORT_SERVER_ADDR") == "" && os.Getenv("REPORT_SERVER_FORWARD_URL") == "" {
		cfg.ReportServer = *overlay.ReportServer
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// ctxKey is unexported so only this package can populate the stack.
type ctxKey struct{}

// Push returns a context carrying cfg as the current configuration,
// implementing spec.md §5's "per-task (logically thread-local)"
// configuration stack: each nested Push layers a new value over ctx's
// existing chain without mutating any Configuration another goroutine
// might still be holding.
func Push(ctx context.Context, cfg *Configuration) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// Current returns the nearest Configuration pushed onto ctx's chain, or
// Default() if none was ever pushed.
func Current(ctx context.Context) *Configuration {
	if cfg, ok := ctx.Value(ctxKey{}).(*Configuration); ok {
		return cfg
	}
	return Default()
}
