package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/useradmin/internal/flagx"
	"github.com/dmitrijs2005/useradmin/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so the file may say "500ms" or give nanoseconds.
// Absent keys leave the current value alone.
type JsonConfig struct {
	ServerBaseURL         string          `json:"server_base_url"`
	DBPath                string          `json:"db_path"`
	PageSize              int             `json:"page_size"`
	SearchDebounce        *timex.Duration `json:"search_debounce"`
	RequestTimeout        *timex.Duration `json:"request_timeout"`
	RequestsPerSecond     *float64        `json:"requests_per_second"`
	MetricsAddr           *string         `json:"metrics_addr"`
	LogLevel              string          `json:"log_level"`
	LogFormat             string          `json:"log_format"`
	DiscardStaleResponses *bool           `json:"discard_stale_responses"`
}

// parseJson overlays Config with values from the file named by -c or
// -config. Without either flag nothing happens. Read and decode errors
// panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.SearchDebounce != nil {
		cfg.SearchDebounce = jc.SearchDebounce.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	if jc.MetricsAddr != nil {
		cfg.MetricsAddr = *jc.MetricsAddr
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.DiscardStaleResponses != nil {
		cfg.DiscardStaleResponses = *jc.DiscardStaleResponses
	}
}
