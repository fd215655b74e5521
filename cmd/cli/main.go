package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/useradmin/internal/buildinfo"
	"github.com/dmitrijs2005/useradmin/internal/client/cli"
	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/config"
	"github.com/dmitrijs2005/useradmin/internal/client/gateway"
	"github.com/dmitrijs2005/useradmin/internal/client/listview"
	"github.com/dmitrijs2005/useradmin/internal/client/metrics"
	"github.com/dmitrijs2005/useradmin/internal/client/notify"
	"github.com/dmitrijs2005/useradmin/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/useradmin/internal/client/services"
	"github.com/dmitrijs2005/useradmin/internal/client/session"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig(os.Args[1:])
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	db, err := client.InitDatabase(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing session database: %w", err)
	}
	defer db.Close()

	store := session.New(ctx, kvstore.NewSQLiteRepository(db), log)
	if store.DropExpiredToken(ctx) {
		log.Info(ctx, "stored token already expired, login required")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewGateway(reg)

	gw, err := gateway.New(cfg.ServerBaseURL, store,
		gateway.WithTimeout(cfg.RequestTimeout),
		gateway.WithRateLimit(cfg.RequestsPerSecond, 1),
		gateway.WithMetrics(m),
		gateway.WithLogger(log),
	)
	if err != nil {
		return err
	}

	notifier := notify.NewConsole(os.Stdout, log)
	users := listview.New(gw, notifier,
		listview.WithPageSize(cfg.PageSize),
		listview.WithDebounce(cfg.SearchDebounce),
		listview.WithDiscardStale(cfg.DiscardStaleResponses),
		listview.WithLogger(log),
	)

	app := cli.NewApp(ctx, cli.Deps{
		Auth:     services.NewAuthService(gw, store, log),
		Profile:  services.NewProfileService(gw, store, log),
		Users:    users,
		Session:  store,
		Notifier: notifier,
		Log:      log,
		In:       os.Stdin,
		Out:      os.Stdout,
	})
	gw.SetSessionExpiredHandler(app.SessionExpired)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, log); err != nil {
				log.Error(ctx, "metrics server failed", "error", err)
			}
		}()
	}

	app.Run(ctx)
	return nil
}
