// Package config loads runtime configuration for the admin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   admin API base URL
//	-d string   session database file
//	-p int      users per page
//	-s int      search debounce (milliseconds)
//	-t int      request timeout (seconds)
//	-r float    max API requests per second
//	-m string   metrics listen address
//	-l string   log level
//
// # JSON schema
//
// Durations are timex.Duration, so "500ms" and integer nanoseconds both work:
//
//	{
//	  "server_base_url": "https://admin.example.org/api",
//	  "db_path": "session.db",
//	  "page_size": 20,
//	  "search_debounce": "300ms",
//	  "request_timeout": "5s",
//	  "requests_per_second": 5,
//	  "metrics_addr": ":9090",
//	  "log_level": "debug",
//	  "log_format": "json",
//	  "discard_stale_responses": false
//	}
//
// Environment variables are not read.
package config
