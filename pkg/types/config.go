package types

import "time"

// HTTPConfig holds shared HTTP settings used by the remote catalog and the
// remote analysis backend.
type HTTPConfig struct {
	// BaseURL is the root of the interaction API (e.g. "http://localhost:8089").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "widget/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 and 503 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay"`
}

// APIPaths names the endpoints of the interaction API.
type APIPaths struct {
	Autocomplete  string `json:"autocomplete" yaml:"autocomplete"`
	Depletions    string `json:"depletions" yaml:"depletions"`
	Optimizations string `json:"optimizations" yaml:"optimizations"`
	Item          string `json:"item" yaml:"item"`
}

// DefaultAPIPaths returns the paths the interaction API serves.
func DefaultAPIPaths() APIPaths {
	return APIPaths{
		Autocomplete:  "/get-autocomplete",
		Depletions:    "/depletions-data",
		Optimizations: "/optimization-data",
		Item:          "/get-item",
	}
}

// CatalogBackend selects where autocomplete candidates come from.
type CatalogBackend string

const (
	CatalogLocal  CatalogBackend = "local"
	CatalogSQLite CatalogBackend = "sqlite"
	CatalogRemote CatalogBackend = "remote"
)

// CatalogConfig holds settings for the candidate catalog.
type CatalogConfig struct {
	// Backend selects the catalog: local, sqlite, or remote.
	Backend CatalogBackend `json:"backend" yaml:"backend"`

	// SeedFile is a YAML catalog table; empty uses the embedded seed.
	SeedFile string `json:"seed_file,omitempty" yaml:"seed_file,omitempty"`

	// DBPath is the SQLite catalog file (default "catalog.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// Latency is an artificial delay added by the local catalog.
	Latency time.Duration `json:"latency" yaml:"latency"`
}

// MatchMode selects how a query is matched against catalog names.
type MatchMode string

const (
	// MatchPrefix is the canonical mode.
	MatchPrefix MatchMode = "prefix"

	// MatchSubstring is a degraded mode for catalogs whose server-side
	// filtering is substring based.
	MatchSubstring MatchMode = "substring"
)

// ErrorPolicy selects what the matcher does when a catalog lookup fails.
type ErrorPolicy string

const (
	// PolicyDegrade returns an empty suggestion list and logs the failure.
	PolicyDegrade ErrorPolicy = "degrade"

	// PolicyPropagate returns the failure to the caller.
	PolicyPropagate ErrorPolicy = "propagate"
)

// SuggestConfig holds settings for the suggestion matcher.
type SuggestConfig struct {
	// MinQueryLength is the shortest trimmed query, in runes, that reaches
	// the catalog (default 2).
	MinQueryLength int `json:"min_query_length" yaml:"min_query_length"`

	// MaxResults caps the suggestion list (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxNameLength excludes longer catalog names (default 30).
	MaxNameLength int `json:"max_name_length" yaml:"max_name_length"`

	MatchMode   MatchMode   `json:"match_mode" yaml:"match_mode"`
	ErrorPolicy ErrorPolicy `json:"error_policy" yaml:"error_policy"`
}

// AnalysisBackend selects where depletions and optimizations come from.
type AnalysisBackend string

const (
	AnalysisLocal  AnalysisBackend = "local"
	AnalysisRemote AnalysisBackend = "remote"
)

// AnalysisConfig holds settings for the fetch orchestrator.
type AnalysisConfig struct {
	Backend AnalysisBackend `json:"backend" yaml:"backend"`

	// Latency is an artificial delay added by the local backend per stage.
	Latency time.Duration `json:"latency" yaml:"latency"`

	// BackgroundTimeout bounds the optimizations stage (default 30s).
	BackgroundTimeout time.Duration `json:"background_timeout" yaml:"background_timeout"`
}

// DebounceConfig holds settings for input debouncing.
type DebounceConfig struct {
	// Delay is the quiet period after the last input event (default 300ms).
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "json" or "console".
	Format string `json:"format" yaml:"format"`
}

// WidgetConfig groups all stage configurations.
type WidgetConfig struct {
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Paths    APIPaths       `json:"paths" yaml:"paths"`
	Catalog  CatalogConfig  `json:"catalog" yaml:"catalog"`
	Suggest  SuggestConfig  `json:"suggest" yaml:"suggest"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Debounce DebounceConfig `json:"debounce" yaml:"debounce"`
	Log      LogConfig      `json:"log" yaml:"log"`
}
