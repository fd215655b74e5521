package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-p", "-s", "-t", "-r", "-m", "-l"}

// parseFlags populates Config fields from command-line flags. Only the
// flags listed in knownFlags are looked at; the rest of args is ignored.
// A malformed value panics.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("useradmin", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "admin API base URL")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "session database file")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "users per page")
	debounce := fs.Int("s", int(cfg.SearchDebounce.Milliseconds()), "search debounce (in milliseconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.Float64Var(&cfg.RequestsPerSecond, "r", cfg.RequestsPerSecond, "max API requests per second (0 = unlimited)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address (empty = disabled)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}

	cfg.SearchDebounce = time.Duration(*debounce) * time.Millisecond
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
