// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config reads the widget configuration from viper into
// types.WidgetConfig. Defaults are registered on the viper instance so that
// config files and WIDGET_* environment variables override them key by key.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// EnvPrefix is the environment variable prefix (WIDGET_CATALOG_BACKEND, ...).
const EnvPrefix = "WIDGET"

const (
	KeyBaseURL        = "http.base_url"
	KeyTimeout        = "http.timeout"
	KeyUserAgent      = "http.user_agent"
	KeyMaxRetries     = "http.max_retries"
	KeyRetryBaseDelay = "http.retry_base_delay"

	KeyPathAutocomplete  = "paths.autocomplete"
	KeyPathDepletions    = "paths.depletions"
	KeyPathOptimizations = "paths.optimizations"
	KeyPathItem          = "paths.item"

	KeyCatalogBackend  = "catalog.backend"
	KeyCatalogSeedFile = "catalog.seed_file"
	KeyCatalogDBPath   = "catalog.db_path"
	KeyCatalogLatency  = "catalog.latency"

	KeyMinQueryLength = "suggest.min_query_length"
	KeyMaxResults     = "suggest.max_results"
	KeyMaxNameLength  = "suggest.max_name_length"
	KeyMatchMode      = "suggest.match_mode"
	KeyErrorPolicy    = "suggest.error_policy"

	KeyAnalysisBackend   = "analysis.backend"
	KeyAnalysisLatency   = "analysis.latency"
	KeyBackgroundTimeout = "analysis.background_timeout"

	KeyDebounceDelay = "debounce.delay"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

// Defaults returns the configuration used when nothing overrides it.
func Defaults() types.WidgetConfig {
	return types.WidgetConfig{
		HTTP: types.HTTPConfig{
			BaseURL:        "http://localhost:8089",
			Timeout:        10 * time.Second,
			UserAgent:      "widget/0.1",
			MaxRetries:     3,
			RetryBaseDelay: 500 * time.Millisecond,
		},
		Paths: types.DefaultAPIPaths(),
		Catalog: types.CatalogConfig{
			Backend: types.CatalogLocal,
			DBPath:  "catalog.db",
			Latency: 50 * time.Millisecond,
		},
		Suggest: types.SuggestConfig{
			MinQueryLength: 2,
			MaxResults:     5,
			MaxNameLength:  30,
			MatchMode:      types.MatchPrefix,
			ErrorPolicy:    types.PolicyDegrade,
		},
		Analysis: types.AnalysisConfig{
			Backend:           types.AnalysisLocal,
			Latency:           time.Second,
			BackgroundTimeout: 30 * time.Second,
		},
		Debounce: types.DebounceConfig{Delay: 300 * time.Millisecond},
		Log:      types.LogConfig{Level: "info", Format: "console"},
	}
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyBaseURL, d.HTTP.BaseURL)
	v.SetDefault(KeyTimeout, d.HTTP.Timeout)
	v.SetDefault(KeyUserAgent, d.HTTP.UserAgent)
	v.SetDefault(KeyMaxRetries, d.HTTP.MaxRetries)
	v.SetDefault(KeyRetryBaseDelay, d.HTTP.RetryBaseDelay)

	v.SetDefault(KeyPathAutocomplete, d.Paths.Autocomplete)
	v.SetDefault(KeyPathDepletions, d.Paths.Depletions)
	v.SetDefault(KeyPathOptimizations, d.Paths.Optimizations)
	v.SetDefault(KeyPathItem, d.Paths.Item)

	v.SetDefault(KeyCatalogBackend, string(d.Catalog.Backend))
	v.SetDefault(KeyCatalogSeedFile, d.Catalog.SeedFile)
	v.SetDefault(KeyCatalogDBPath, d.Catalog.DBPath)
	v.SetDefault(KeyCatalogLatency, d.Catalog.Latency)

	v.SetDefault(KeyMinQueryLength, d.Suggest.MinQueryLength)
	v.SetDefault(KeyMaxResults, d.Suggest.MaxResults)
	v.SetDefault(KeyMaxNameLength, d.Suggest.MaxNameLength)
	v.SetDefault(KeyMatchMode, string(d.Suggest.MatchMode))
	v.SetDefault(KeyErrorPolicy, string(d.Suggest.ErrorPolicy))

	v.SetDefault(KeyAnalysisBackend, string(d.Analysis.Backend))
	v.SetDefault(KeyAnalysisLatency, d.Analysis.Latency)
	v.SetDefault(KeyBackgroundTimeout, d.Analysis.BackgroundTimeout)

	v.SetDefault(KeyDebounceDelay, d.Debounce.Delay)

	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
}

// BindEnv makes every key readable from WIDGET_<SECTION>_<KEY>.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load applies defaults to v, reads the widget configuration, and validates it.
func Load(v *viper.Viper) (types.WidgetConfig, error) {
	SetDefaults(v)

	cfg := types.WidgetConfig{
		HTTP: types.HTTPConfig{
			BaseURL:        v.GetString(KeyBaseURL),
			Timeout:        v.GetDuration(KeyTimeout),
			UserAgent:      v.GetString(KeyUserAgent),
			MaxRetries:     v.GetInt(KeyMaxRetries),
			RetryBaseDelay: v.GetDuration(KeyRetryBaseDelay),
		},
		Paths: types.APIPaths{
			Autocomplete:  v.GetString(KeyPathAutocomplete),
			Depletions:    v.GetString(KeyPathDepletions),
			Optimizations: v.GetString(KeyPathOptimizations),
			Item:          v.GetString(KeyPathItem),
		},
		Catalog: types.CatalogConfig{
			Backend:  types.CatalogBackend(strings.ToLower(v.GetString(KeyCatalogBackend))),
			SeedFile: v.GetString(KeyCatalogSeedFile),
			DBPath:   v.GetString(KeyCatalogDBPath),
			Latency:  v.GetDuration(KeyCatalogLatency),
		},
		Suggest: types.SuggestConfig{
			MinQueryLength: v.GetInt(KeyMinQueryLength),
			MaxResults:     v.GetInt(KeyMaxResults),
			MaxNameLength:  v.GetInt(KeyMaxNameLength),
			MatchMode:      types.MatchMode(strings.ToLower(v.GetString(KeyMatchMode))),
			ErrorPolicy:    types.ErrorPolicy(strings.ToLower(v.GetString(KeyErrorPolicy))),
		},
		Analysis: types.AnalysisConfig{
			Backend:           types.AnalysisBackend(strings.ToLower(v.GetString(KeyAnalysisBackend))),
			Latency:           v.GetDuration(KeyAnalysisLatency),
			BackgroundTimeout: v.GetDuration(KeyBackgroundTimeout),
		},
		Debounce: types.DebounceConfig{Delay: v.GetDuration(KeyDebounceDelay)},
		Log: types.LogConfig{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
	}
	if err := Validate(cfg); err != nil {
		return types.WidgetConfig{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting in cfg.
func Validate(cfg types.WidgetConfig) error {
	switch cfg.Catalog.Backend {
	case types.CatalogLocal, types.CatalogSQLite, types.CatalogRemote:
	default:
		return fmt.Errorf("%s: unknown catalog backend %q (want local, sqlite, or remote)", KeyCatalogBackend, cfg.Catalog.Backend)
	}
	switch cfg.Analysis.Backend {
	case types.AnalysisLocal, types.AnalysisRemote:
	default:
		return fmt.Errorf("%s: unknown analysis backend %q (want local or remote)", KeyAnalysisBackend, cfg.Analysis.Backend)
	}
	switch cfg.Suggest.MatchMode {
	case types.MatchPrefix, types.MatchSubstring:
	default:
		return fmt.Errorf("%s: unknown match mode %q", KeyMatchMode, cfg.Suggest.MatchMode)
	}
	switch cfg.Suggest.ErrorPolicy {
	case types.PolicyDegrade, types.PolicyPropagate:
	default:
		return fmt.Errorf("%s: unknown error policy %q", KeyErrorPolicy, cfg.Suggest.ErrorPolicy)
	}

	positive := []struct {
		key string
		n   int64
	}{
		{KeyMinQueryLength, int64(cfg.Suggest.MinQueryLength)},
		{KeyMaxResults, int64(cfg.Suggest.MaxResults)},
		{KeyMaxNameLength, int64(cfg.Suggest.MaxNameLength)},
		{KeyTimeout, int64(cfg.HTTP.Timeout)},
		{KeyBackgroundTimeout, int64(cfg.Analysis.BackgroundTimeout)},
		{KeyDebounceDelay, int64(cfg.Debounce.Delay)},
	}
	for _, p := range positive {
		if p.n <= 0 {
			return fmt.Errorf("%s must be positive", p.key)
		}
	}
	if cfg.HTTP.MaxRetries < 0 {
		return fmt.Errorf("%s must not be negative", KeyMaxRetries)
	}
	if cfg.Catalog.Latency < 0 || cfg.Analysis.Latency < 0 {
		return fmt.Errorf("latency must not be negative")
	}
	if cfg.Catalog.Backend == types.CatalogSQLite && cfg.Catalog.DBPath == "" {
		return fmt.Errorf("%s is required for the sqlite catalog", KeyCatalogDBPath)
	}
	return nil
}
