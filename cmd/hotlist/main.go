package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hotlist/hotlist/internal/api"
	"github.com/hotlist/hotlist/internal/config"
	"github.com/hotlist/hotlist/internal/fetcher"
	"github.com/hotlist/hotlist/internal/metrics"
	"github.com/hotlist/hotlist/internal/ranking"
	"github.com/hotlist/hotlist/internal/scheduler"
	"github.com/hotlist/hotlist/internal/store"
	"github.com/hotlist/hotlist/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional dotenv file with upstream credentials")
	dumpMetrics := flag.Bool("dump-metrics", false, "write all metrics to stderr on shutdown")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: renameCritical,
	}))
	slog.SetDefault(logger)

	slog.Info("hotlist starting", "config", *configPath)

	if err := godotenv.Load(*envPath); err != nil {
		slog.Info("no dotenv file loaded", "path", *envPath)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"upstream", cfg.Upstream.URL,
		"auth_mode", cfg.Upstream.Auth.Mode,
		"refresh_interval", cfg.Refresh.Interval,
		"gravity", cfg.Ranking.Gravity,
		"max_items", cfg.Ranking.MaxItems,
		"http_port", cfg.Server.HTTPPort,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	st := store.New()

	// Refresh loop: first cycle runs immediately, then every Refresh.Interval.
	sched := scheduler.New(
		fetcher.New(cfg.Upstream),
		ranking.New(cfg.Ranking.Gravity, cfg.Ranking.MaxItems),
		st,
		m,
		cfg.Refresh.Interval,
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Run(ctx)
	}()

	// Hot-reload is logged only; new settings apply on restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config changed, restart to apply",
				"upstream", updated.Upstream.URL,
				"refresh_interval", updated.Refresh.Interval,
			)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	hub := ws.New(st, cfg.Server.WSInterval)
	go hub.Run(ctx)

	httpMux := http.NewServeMux()
	httpMux.Handle("/ws/hot-list", hub)
	httpMux.Handle("/metrics", m.Handler())
	httpMux.Handle("/", api.New(st))

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("hotlist shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	<-done

	if totals, err := metrics.Totals(reg); err == nil {
		slog.Info("final counters",
			"cycles", totals["hotlist_cycles_total"],
			"fetch_failures", totals["hotlist_fetch_failures_total"],
			"events_skipped", totals["hotlist_events_skipped_total"],
		)
	}
	if *dumpMetrics {
		if err := metrics.Dump(os.Stderr, reg); err != nil {
			slog.Error("metrics dump failed", "err", err)
		}
	}
}

// renameCritical prints scheduler.LevelCritical as "CRITICAL" instead of "ERROR+4".
func renameCritical(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= scheduler.LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}
