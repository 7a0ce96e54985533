// Package handler provides HTTP handlers for all API endpoints.
// Reads go straight to the store; imports and scoring go through the seed
// runner so the CLI and the admin route share one code path.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/itbasis/go-clock"

	"github.com/albapepper/bolao/internal/api/respond"
	"github.com/albapepper/bolao/internal/cache"
	"github.com/albapepper/bolao/internal/config"
	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/seed"
	"github.com/albapepper/bolao/internal/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 16

var errInvalidRequest = errors.New("invalid request")

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store     store.Store
	runner    *seed.Runner
	cache     *cache.Cache
	cfg       *config.Config
	clock     clock.Clock
	validator *validator.Validate
	logger    *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(st store.Store, runner *seed.Runner, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     st,
		runner:    runner,
		cache:     c,
		cfg:       cfg,
		clock:     clock.New(),
		validator: validator.New(),
		logger:    logger,
	}
}

// WithClock replaces the clock used for prediction locks.
func (h *Handler) WithClock(c clock.Clock) *Handler {
	h.clock = c
	return h
}

// decode reads a JSON body into payload and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, payload any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errInvalidRequest, err)
	}
	return h.validate(r.Context(), payload)
}

func (h *Handler) validate(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", errInvalidRequest, err)
	}
	return nil
}

// int64Param parses a positive integer URL parameter.
func int64Param(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errInvalidRequest, name)
	}
	return v, nil
}

// writeErr maps domain errors to HTTP responses.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var batchErr *seed.BatchError
	switch {
	// A failed batch is an internal error whatever the store said about it.
	case errors.As(err, &batchErr):
		h.logger.Error("Batch failed", "path", r.URL.Path, "processed", batchErr.Processed, "error", err)
		respond.WriteBatchError(w, http.StatusInternalServerError, "BATCH_FAILED",
			"Import stopped part-way", err.Error(), batchErr.Processed)
	case errors.Is(err, errInvalidRequest), errors.Is(err, seed.ErrInvalidInput), errors.Is(err, store.ErrInvalid):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request", err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, provider.ErrNotFound):
		respond.WriteErrorDetail(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", err.Error())
	case errors.Is(err, store.ErrConflict):
		respond.WriteErrorDetail(w, http.StatusConflict, "CONFLICT", "Resource already exists", err.Error())
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	default:
		h.logger.Error("Request failed", "path", r.URL.Path, "error", err)
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", err.Error())
	}
}

// Root serves API info at /.
// @Summary API root info
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Bolão API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": h.clock.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": h.clock.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": h.clock.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"cache":  h.cache.Stats(),
	})
}

// InvalidateSeason drops cached responses of a season, and the tournament
// list since season setup can add to it. Wired to the runner's change hook.
func (h *Handler) InvalidateSeason(seasonID int64) {
	h.cache.Delete(cache.TournamentsKey)
	h.cache.Delete(cache.RankingKey(seasonID))
	h.cache.Delete(cache.StandingsKey(seasonID))
	h.cache.Delete(cache.PrizePoolKey(seasonID))
}
