package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iconidentify/xrelay/internal/bot"
	"github.com/iconidentify/xrelay/internal/config"
	"github.com/iconidentify/xrelay/internal/downloader"
	"github.com/iconidentify/xrelay/internal/ops"
	"github.com/iconidentify/xrelay/internal/repository"
	"github.com/iconidentify/xrelay/internal/service"
	"github.com/iconidentify/xrelay/internal/telegram"
	"github.com/iconidentify/xrelay/pkg/vxtwitter"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("xrelay %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting xrelay",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure the scratch directory exists
	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Persisted counters
	statsRepo, err := repository.NewStatsRepository(cfg.Storage.StatsDBPath)
	if err != nil {
		logger.Error("failed to open stats database", "error", err)
		os.Exit(1)
	}
	defer statsRepo.Close()

	stats, err := statsRepo.Load(context.Background())
	if err != nil {
		logger.Error("failed to load stats", "error", err)
		os.Exit(1)
	}

	// Telegram connection first: the pipeline needs its Messenger.
	b, err := bot.New(cfg.Bot, logger)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}
	messenger := telegram.NewClient(b.API())

	// Delivery pipeline
	resolver := vxtwitter.NewClient(cfg.Lookup)
	fetcher := downloader.NewFetcher(cfg.Download, logger)
	videos := service.NewVideoDelivery(messenger, fetcher, cfg.Storage.DataDir, logger)
	dispatcher := service.NewDispatcher(messenger, videos, stats, logger)

	handler := bot.NewHandler(cfg.Bot, messenger, resolver, dispatcher, stats, statsRepo, logger)
	reporter := bot.NewReporter(cfg.Bot, messenger, logger)
	b.Bind(handler, reporter, messenger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b.SetupCommands(ctx)

	// Operational endpoint
	var opsServer *ops.Server
	if cfg.Ops.Addr != "" {
		opsServer = ops.NewServer(cfg.Ops.Addr, stats, logger)
		go func() {
			if err := opsServer.Start(); err != nil {
				logger.Error("ops server error", "error", err)
			}
		}()
	}

	// Long polling blocks until the context is cancelled.
	b.Run(ctx)

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if opsServer != nil {
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("ops server shutdown error", "error", err)
		}
	}

	// Final flush so counters survive the restart.
	if err := statsRepo.Save(shutdownCtx, stats); err != nil {
		logger.Error("failed to persist stats", "error", err)
	}

	logger.Info("shutdown complete")
}
