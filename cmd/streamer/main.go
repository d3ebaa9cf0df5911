package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/stockstream/internal/aggregate"
	"github.com/rickgao/stockstream/internal/broker"
	"github.com/rickgao/stockstream/internal/config"
	"github.com/rickgao/stockstream/internal/feed"
	"github.com/rickgao/stockstream/internal/hub"
	"github.com/rickgao/stockstream/internal/scheduler"
	"github.com/rickgao/stockstream/internal/server"
	"github.com/rickgao/stockstream/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/streamer.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting streamer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration; fall back to defaults when no file exists so
	// the service still runs from environment-expanded defaults.
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("no config file, using defaults", "path", *configPath)
			cfg = config.Default()
		} else {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("configuration loaded",
		"addr", cfg.Server.Addr,
		"feed_url", cfg.Feed.URL,
		"update_interval", cfg.Broadcast.UpdateInterval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Build the object graph: aggregator and registry are shared state,
	// everything else is a loop or a handler around them.
	aggregator := aggregate.New(cfg.Broadcast.Retention, logger.With("component", "aggregate"))
	registry := hub.NewRegistry(logger.With("component", "hub"))

	feedCfg := feed.DefaultConfig()
	feedCfg.URL = cfg.Feed.URL
	feedCfg.MaxReconnectWait = cfg.Feed.ReconnectMaxDelay
	feedClient := feed.NewClient(feedCfg, aggregator, logger.With("component", "feed"))

	sched := scheduler.New(
		scheduler.Config{
			UpdateInterval: cfg.Broadcast.UpdateInterval,
			CheckInterval:  cfg.Broadcast.CheckInterval,
		},
		aggregator,
		registry,
		feedClient,
		logger.With("component", "scheduler"),
	)

	brokerClient := broker.NewClient(
		cfg.Broker.APIURL,
		cfg.Broker.DataURL,
		cfg.Broker.APIKey,
		cfg.Broker.APISecret,
		broker.WithLogger(logger.With("component", "broker")),
	)

	srv := server.New(
		server.Config{Addr: cfg.Server.Addr},
		registry,
		feedClient,
		aggregator,
		brokerClient,
		logger.With("component", "server"),
	)

	// Start the long-running tasks
	if err := feedClient.Start(ctx); err != nil {
		logger.Error("failed to start feed client", "error", err)
		os.Exit(1)
	}
	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start http server", "error", err)
		os.Exit(1)
	}

	logger.Info("streamer running", "addr", cfg.Server.Addr)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	srv.Stop(shutdownCtx)
	sched.Stop(shutdownCtx)
	feedClient.Stop(shutdownCtx)

	logger.Info("streamer stopped")
}
