package config

import "time"

// Config holds runtime settings for the admin CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the admin API, path prefix included.
//   - DBPath: SQLite file holding the local session.
//   - PageSize: rows per page of the users list.
//   - SearchDebounce: quiet period before a search is sent.
//   - RequestTimeout: per request HTTP timeout.
//   - RequestsPerSecond: outbound rate limit; 0 disables it.
//   - MetricsAddr: listen address of the metrics endpoint; "" disables it.
//   - LogLevel, LogFormat: logger setup (text or json).
//   - DiscardStaleResponses: drop list answers older than the one shown.
type Config struct {
	ServerBaseURL         string
	DBPath                string
	PageSize              int
	SearchDebounce        time.Duration
	RequestTimeout        time.Duration
	RequestsPerSecond     float64
	MetricsAddr           string
	LogLevel              string
	LogFormat             string
	DiscardStaleResponses bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:5000/api"
	c.DBPath = "session.db"
	c.PageSize = 10
	c.SearchDebounce = 500 * time.Millisecond
	c.RequestTimeout = 10 * time.Second
	c.RequestsPerSecond = 10
	c.MetricsAddr = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.DiscardStaleResponses = true
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
