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

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/config"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/storage/postgres"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/dashboard"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/migrations"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/rollup"
	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/server"
)

func main() {
	configPath := flag.String("config", "caicos.yaml", "Path to configuration file")
	recalcStart := flag.String("recalculate-start", "", "Backfill mode: range start (YYYY-MM-DD); runs one recalculation and exits")
	recalcEnd := flag.String("recalculate-end", "", "Backfill mode: range end (YYYY-MM-DD)")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations (analytics_buckets only - the bookings
	// ledger table belongs to the booking service)
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	if err := dbAdapter.ValidateSchema(); err != nil {
		slog.Error("Schema validation failed", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Rollup Engine
	bucketStore := postgres.NewBucketAdapter(dbAdapter.DB())
	engine := rollup.NewEngine(dbAdapter, bucketStore, rollup.EngineOptions{
		LedgerBatchSize: cfg.Analytics.LedgerBatchSize,
	})

	// Backfill mode: run one recalculation and exit.
	if *recalcStart != "" || *recalcEnd != "" {
		runBackfill(engine, *recalcStart, *recalcEnd)
		return
	}

	// 4. Initialize Dashboard (query API)
	dashboardSvc := dashboard.NewService(bucketStore)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	engine.RegisterRoutes(srv.Engine)
	dashboardSvc.RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// runBackfill executes one recalculation over the flagged range and exits.
// Administrative action: no server, no signal handling, exit code reports
// success or failure.
func runBackfill(engine *rollup.Engine, startFlag, endFlag string) {
	if startFlag == "" || endFlag == "" {
		slog.Error("Backfill requires both -recalculate-start and -recalculate-end")
		os.Exit(1)
	}

	start, err := time.Parse("2006-01-02", startFlag)
	if err != nil {
		slog.Error("Invalid -recalculate-start", "value", startFlag, "error", err)
		os.Exit(1)
	}
	end, err := time.Parse("2006-01-02", endFlag)
	if err != nil {
		slog.Error("Invalid -recalculate-end", "value", endFlag, "error", err)
		os.Exit(1)
	}

	summary, err := engine.Recalculate(context.Background(), start, end)
	if err != nil {
		slog.Error("Backfill failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Backfill complete",
		"records_processed", summary.RecordsProcessed,
		"buckets_written", summary.BucketsWritten,
	)
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
