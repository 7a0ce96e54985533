// Command api is the Bolão API server.
//
// Usage:
//
//	bolao-api
//	API_PORT=8080 bolao-api

// @title Bolão API
// @version 1.0.0
// @description Football prediction pool: SofaScore imports, predictions, rankings, standings and prize pool.
// @host localhost:8000
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @contact.name Bolão
// @license.name MIT
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

	"github.com/itbasis/go-clock"
	"github.com/joho/godotenv"

	"github.com/albapepper/bolao/internal/api"
	"github.com/albapepper/bolao/internal/api/auth"
	"github.com/albapepper/bolao/internal/api/handler"
	"github.com/albapepper/bolao/internal/cache"
	"github.com/albapepper/bolao/internal/config"
	"github.com/albapepper/bolao/internal/db"
	"github.com/albapepper/bolao/internal/fixture"
	"github.com/albapepper/bolao/internal/listener"
	"github.com/albapepper/bolao/internal/maintenance"
	"github.com/albapepper/bolao/internal/provider/sofascore"
	"github.com/albapepper/bolao/internal/seed"
	"github.com/albapepper/bolao/internal/storage"
	"github.com/albapepper/bolao/internal/store"

	_ "github.com/albapepper/bolao/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		logger.Warn("SUPABASE_JWT_SECRET is not set; authenticated routes will reject every request")
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	st := store.New(pool, clock.New())

	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	client := sofascore.NewClient(cfg.RapidAPIKey, cfg.RapidAPIHost, cfg.SofascoreRPM, logger)
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, SofaScore responses will not be cached", "error", err)
		} else {
			defer rc.Close()
			client.WithCache(rc, cfg.SofascoreCacheTTL)
			logger.Info("SofaScore response cache enabled", "ttl", cfg.SofascoreCacheTTL)
		}
	}

	runner := seed.NewRunner(st, sofascore.NewFootballHandler(client, logger), logger).
		WithBatchSize(cfg.ImportBatchSize)
	if cfg.R2Enabled() {
		r2, err := storage.NewR2(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2Bucket,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Warn("R2 disabled", "error", err)
		} else {
			runner.WithLogoStore(r2)
			logger.Info("Team logo mirror enabled", "bucket", cfg.R2Bucket)
		}
	}

	h := handler.New(st, runner, appCache, cfg, logger)
	runner.OnSeasonChange(h.InvalidateSeason)

	// LISTEN/NOTIFY consumer scoring matches as their results land
	if cfg.ListenerEnabled {
		go listener.New(cfg.DatabaseURL, runner, logger).Start(ctx)
	} else {
		logger.Info("Match listener disabled (LISTENER_ENABLED=false)")
	}

	// Maintenance tickers (auto score sync, prize pool reconcile)
	scheduler := fixture.NewScheduler(st, runner, cfg.AutoSyncDelay, cfg.AutoSyncWorkers, logger)
	go maintenance.Start(ctx, maintenance.ConfigFrom(cfg), maintenance.Tasks{
		AutoSync: func(ctx context.Context) { scheduler.ProcessPending(ctx) },
		ReconcilePools: func(ctx context.Context) {
			if _, err := maintenance.ReconcilePrizePools(ctx, st, runner, logger); err != nil {
				logger.Warn("Prize pool reconcile failed", "error", err)
			}
		},
	}, logger)

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTAudience, st)
	router := api.NewRouter(h, verifier, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		// Admin imports walk a whole season through a rate-limited provider.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting Bolão API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
