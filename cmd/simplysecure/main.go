package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CosmoBean/simplysecure/internal/api"
	"github.com/CosmoBean/simplysecure/internal/catalog"
	"github.com/CosmoBean/simplysecure/internal/config"
	"github.com/CosmoBean/simplysecure/internal/events"
	"github.com/CosmoBean/simplysecure/internal/health"
	"github.com/CosmoBean/simplysecure/internal/leaderboard"
	"github.com/CosmoBean/simplysecure/internal/progression"
	"github.com/CosmoBean/simplysecure/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simplysecure",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations")
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("database connected successfully")

	// Load the task catalog
	cat := catalog.Default()
	if cfg.Catalog.Dir != "" {
		loaded, err := catalog.Load(cfg.Catalog.Dir)
		if err != nil {
			slog.Warn("failed to load catalog from dir, using built-in catalog",
				"dir", cfg.Catalog.Dir, "error", err)
		} else {
			cat = loaded
			slog.Info("catalog loaded", "dir", cfg.Catalog.Dir, "tasks", len(cat.Tasks()))
		}
	}

	// Health checks
	checks := health.NewRegistry()
	checks.Register("postgres", repo.Ping)

	// Event hub for progression feeds
	hub := events.NewHub()

	// Create context with cancellation for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional Redis-backed leaderboard
	var board *leaderboard.Leaderboard
	engineOpts := []progression.Option{progression.WithNotifier(hub)}
	if cfg.Leaderboard.Enabled {
		board, err = leaderboard.Connect(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Leaderboard.Key)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err, "address", cfg.Redis.Address)
			os.Exit(1)
		}
		defer board.Close()
		checks.Register("redis", board.Ping)
		engineOpts = append(engineOpts, progression.WithScoreboard(board))

		syncer := leaderboard.NewSyncer(board, repo, cfg.Leaderboard.SyncInterval, cfg.Leaderboard.SyncLimit)
		syncer.Start(ctx)
		slog.Info("leaderboard enabled", "key", cfg.Leaderboard.Key, "sync_interval", cfg.Leaderboard.SyncInterval)
	}

	// Progression engine
	engine := progression.NewEngine(cat, repo, engineOpts...)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, cat, engine, repo, hub, board, checks)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("simplysecure stopped")
}
