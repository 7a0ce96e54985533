// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names: single source of truth, matches schema/schema.sql
// --------------------------------------------------------------------------

const (
	TournamentsTable  = "tournaments"
	SeasonsTable      = "tournament_seasons"
	TeamsTable        = "teams"
	PlayersTable      = "players"
	MatchesTable      = "matches"
	PredictionsTable  = "predictions"
	ProfilesTable     = "users_profiles"
	PointsTable       = "user_tournament_points"
	PaymentsTable     = "payments"
	DepositsTable     = "deposits"
	PrizePoolsTable   = "prize_pools"
	MatchFinishedChan = "match_finished"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool
	LogLevel    slog.Level

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Auth (Supabase issues HS256 JWTs signed with the project secret)
	JWTSecret   string
	JWTAudience string

	// SofaScore via RapidAPI
	RapidAPIKey       string
	RapidAPIHost      string
	SofascoreRPM      int
	SofascoreCacheTTL time.Duration

	// Redis (optional provider response cache)
	RedisURL string

	// Cloudflare R2 (optional team logo mirror)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Bucket          string
	R2PublicBaseURL   string

	// Ingestion
	ImportBatchSize int

	// Background processing
	ListenerEnabled     bool
	AutoSyncEnabled     bool
	AutoSyncInterval    time.Duration
	AutoSyncDelay       time.Duration
	AutoSyncWorkers     int
	PrizeReconcileEvery time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("SUPABASE_DB_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or SUPABASE_DB_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),
		LogLevel:    envLevel("LOG_LEVEL", slog.LevelInfo),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		JWTSecret:   envOr("SUPABASE_JWT_SECRET", ""),
		JWTAudience: envOr("SUPABASE_JWT_AUDIENCE", "authenticated"),

		RapidAPIKey:       envOr("RAPIDAPI_KEY", ""),
		RapidAPIHost:      envOr("RAPIDAPI_HOST", "sofascore.p.rapidapi.com"),
		SofascoreRPM:      envInt("SOFASCORE_REQUESTS_PER_MINUTE", 120),
		SofascoreCacheTTL: envDuration("SOFASCORE_CACHE_TTL", 2*time.Minute),

		RedisURL: envOr("REDIS_URL", ""),

		R2AccountID:       envOr("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     envOr("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: envOr("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:          envOr("R2_BUCKET", ""),
		R2PublicBaseURL:   envOr("R2_PUBLIC_BASE_URL", ""),

		ImportBatchSize: envInt("IMPORT_BATCH_SIZE", 100),

		ListenerEnabled:     envBool("LISTENER_ENABLED", true),
		AutoSyncEnabled:     envBool("AUTO_SYNC_ENABLED", false),
		AutoSyncInterval:    envDuration("AUTO_SYNC_INTERVAL", 10*time.Minute),
		AutoSyncDelay:       envDuration("AUTO_SYNC_DELAY", 2*time.Hour),
		AutoSyncWorkers:     envInt("AUTO_SYNC_WORKERS", 2),
		PrizeReconcileEvery: envDuration("PRIZE_RECONCILE_INTERVAL", time.Hour),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// R2Enabled reports whether every R2 credential is present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2Bucket != "" && c.R2PublicBaseURL != ""
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
