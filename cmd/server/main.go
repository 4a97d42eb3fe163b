package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/score-comb/app/api"
	"github.com/lysyi3m/score-comb/app/backend"
	"github.com/lysyi3m/score-comb/app/cfg"
	"github.com/lysyi3m/score-comb/app/connector"
	"github.com/lysyi3m/score-comb/app/database"
	"github.com/lysyi3m/score-comb/app/feed"
	"github.com/lysyi3m/score-comb/app/metrics"
	"github.com/lysyi3m/score-comb/app/notify"
	"github.com/lysyi3m/score-comb/app/poller"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Score Comb stopped with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting Score Comb", "version", appCfg.Version)

	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load feed configurations: %w", err)
	}

	slog.Info("Feed configurations loaded", "dir", appCfg.FeedsDir, "count", configCache.GetConfigCount())

	feeds := buildFeeds(appCfg, configCache)
	if len(feeds) == 0 {
		return errors.New("no feeds configured, set --feed or add YAML files to the feeds directory")
	}
	slog.Info("Feeds configured", "count", len(feeds), "interval", appCfg.PollIntervalDuration())

	m := metrics.New()

	p := poller.New(feeds, feed.NewHTTPFetcher(appCfg.UserAgent), feed.NewParser(),
		poller.WithInterval(appCfg.PollIntervalDuration()))
	m.WatchPoller(p)

	client := backend.NewClient(appCfg.BackendURL, appCfg.UserAgent, appCfg.FeedTimeoutDuration())
	dispatcher := notify.NewDispatcher(client, m)
	store := database.NewSubscriptionRepository(db)

	conn := connector.New(p, store, dispatcher,
		connector.WithBootstrap(client),
		connector.WithMetrics(m),
	)

	handler := api.NewHandler(conn, p, dispatcher)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, m.Handler(), appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	startCtx, cancelStart := context.WithTimeout(context.Background(), appCfg.FeedTimeoutDuration())
	conn.Start(startCtx)
	cancelStart()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case runErr = <-serverErrChan:
	}

	slog.Info("Shutting down gracefully")

	conn.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Score Comb shutdown complete")
	return runErr
}
