package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/albapepper/bolao/internal/api/auth"
	"github.com/albapepper/bolao/internal/api/respond"
	"github.com/albapepper/bolao/internal/cache"
	"github.com/albapepper/bolao/internal/prize"
	"github.com/albapepper/bolao/internal/scoring"
	"github.com/albapepper/bolao/internal/store"
)

// serveCached answers from the cache when possible, otherwise builds the
// value, caches its JSON and writes it. If-None-Match is honoured either way.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, build func() (any, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := build()
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.writeErr(w, r, fmt.Errorf("encode response: %w", err))
		return
	}

	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// ListTournaments returns every tournament.
// @Summary List tournaments
// @Tags tournaments
// @Produce json
// @Success 200 {array} store.Tournament
// @Router /v1/tournaments [get]
func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cache.TournamentsKey, cache.TTLTournaments, func() (any, error) {
		ts, err := h.store.ListTournaments(r.Context())
		if ts == nil {
			ts = []store.Tournament{}
		}
		return ts, err
	})
}

// ListSeasonMatches returns the matches of a season, optionally one round.
// @Summary List season matches
// @Tags matches
// @Produce json
// @Param seasonID path int true "Season ID"
// @Param round query int false "Round number"
// @Success 200 {array} store.Match
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /v1/seasons/{seasonID}/matches [get]
func (h *Handler) ListSeasonMatches(w http.ResponseWriter, r *http.Request) {
	seasonID, err := int64Param(r, "seasonID")
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	f := store.MatchFilter{SeasonID: seasonID}
	if s := r.URL.Query().Get("round"); s != "" {
		round, err := strconv.Atoi(s)
		if err != nil || round <= 0 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_ROUND", "round must be a positive integer")
			return
		}
		f.Round = &round
	}

	if _, err := h.store.GetSeason(r.Context(), seasonID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	matches, err := h.store.ListMatches(r.Context(), f)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if matches == nil {
		matches = []store.Match{}
	}
	respond.WriteJSONObject(w, http.StatusOK, matches)
}

// GetRanking returns the season leaderboard.
// @Summary Season ranking
// @Tags ranking
// @Produce json
// @Param seasonID path int true "Season ID"
// @Success 200 {array} ranking.Entry
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Router /v1/seasons/{seasonID}/ranking [get]
func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	seasonID, err := int64Param(r, "seasonID")
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.serveCached(w, r, cache.RankingKey(seasonID), cache.TTLRanking, func() (any, error) {
		return h.store.Leaderboard(r.Context(), seasonID)
	})
}

// GetStandings returns the league table computed from stored results.
// @Summary Season standings
// @Tags standings
// @Produce json
// @Param seasonID path int true "Season ID"
// @Success 200 {array} standings.Row
// @Failure 400 {object} respond.ErrorResponse
// @Router /v1/seasons/{seasonID}/standings [get]
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	seasonID, err := int64Param(r, "seasonID")
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.serveCached(w, r, cache.StandingsKey(seasonID), cache.TTLStandings, func() (any, error) {
		return h.runner.LocalStandings(r.Context(), seasonID)
	})
}

// PrizePoolResponse is the public prize pool summary.
type PrizePoolResponse struct {
	SeasonID   int64 `json:"season_id"`
	TotalCents int64 `json:"total_cents"`
	prize.Pool
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// GetPrizePool returns the season prize pool. A season without reviewed
// entries has an empty pool.
// @Summary Season prize pool
// @Tags prize
// @Produce json
// @Param seasonID path int true "Season ID"
// @Success 200 {object} PrizePoolResponse
// @Failure 400 {object} respond.ErrorResponse
// @Router /v1/seasons/{seasonID}/prize-pool [get]
func (h *Handler) GetPrizePool(w http.ResponseWriter, r *http.Request) {
	seasonID, err := int64Param(r, "seasonID")
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.serveCached(w, r, cache.PrizePoolKey(seasonID), cache.TTLPrizePool, func() (any, error) {
		resp := PrizePoolResponse{SeasonID: seasonID}
		pp, err := h.store.GetPrizePool(r.Context(), seasonID)
		if errors.Is(err, store.ErrNotFound) {
			return resp, nil
		}
		if err != nil {
			return nil, err
		}
		resp.Pool = pp.Pool
		resp.TotalCents = pp.TotalCents()
		resp.UpdatedAt = &pp.UpdatedAt
		return resp, nil
	})
}

// PredictionRequest is the body of PUT /matches/{matchID}/prediction.
type PredictionRequest struct {
	HomeGoals *int `json:"home_goals" validate:"required,gte=0,lte=99"`
	AwayGoals *int `json:"away_goals" validate:"required,gte=0,lte=99"`
}

// PutPrediction creates or replaces the caller's prediction for a match.
// @Summary Submit a prediction
// @Tags predictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchID path int true "Match ID"
// @Param body body PredictionRequest true "Predicted score"
// @Success 200 {object} store.Prediction
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /v1/matches/{matchID}/prediction [put]
func (h *Handler) PutPrediction(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}
	matchID, err := int64Param(r, "matchID")
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req PredictionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	m, err := h.store.GetMatch(r.Context(), matchID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if m.Locked(h.clock.Now()) {
		respond.WriteErrorDetail(w, http.StatusConflict, "MATCH_STARTED", "Predictions are closed for this match",
			fmt.Sprintf("match %d kicked off at %s", m.ID, m.StartTime.UTC().Format(time.RFC3339)))
		return
	}

	p, err := h.store.UpsertPrediction(r.Context(), userID, matchID,
		scoring.Scoreline{Home: *req.HomeGoals, Away: *req.AwayGoals})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, p)
}

// ListMyPredictions returns the caller's predictions, optionally for one season.
// @Summary List own predictions
// @Tags predictions
// @Produce json
// @Security BearerAuth
// @Param season_id query int false "Season ID"
// @Success 200 {array} store.Prediction
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /v1/me/predictions [get]
func (h *Handler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}

	var seasonID int64
	if s := r.URL.Query().Get("season_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_SEASON", "season_id must be a positive integer")
			return
		}
		seasonID = v
	}

	preds, err := h.store.ListUserPredictions(r.Context(), userID, seasonID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if preds == nil {
		preds = []store.Prediction{}
	}
	respond.WriteJSONObject(w, http.StatusOK, preds)
}
