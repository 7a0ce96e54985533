package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/albapepper/bolao/internal/api/auth"
	"github.com/albapepper/bolao/internal/api/respond"
	"github.com/albapepper/bolao/internal/prize"
	"github.com/albapepper/bolao/internal/seed"
	"github.com/albapepper/bolao/internal/store"
)

// Admin actions accepted by POST /api/admin/sofascore.
const (
	ActionSearchTournament      = "search_tournament"
	ActionSetupTournament       = "setup_tournament"
	ActionGetRounds             = "get_rounds"
	ActionGetSeasons            = "get_seasons"
	ActionImportMatches         = "import_matches"
	ActionImportRoundMatches    = "import_round_matches"
	ActionUpdateMatchScores     = "update_match_scores"
	ActionCalculateScores       = "calculate_scores"
	ActionSyncPredictionsSeason = "sync_predictions_season"
	ActionImportTeams           = "import_teams"
	ActionGetStandings          = "get_standings"
)

// ActionRequest is the body of POST /api/admin/sofascore. Which fields are
// required depends on the action.
type ActionRequest struct {
	Action         string `json:"action" validate:"required"`
	Query          string `json:"query,omitempty" validate:"max=100"`
	TournamentID   int    `json:"tournament_id,omitempty" validate:"gte=0"`
	SeasonID       int    `json:"season_id,omitempty" validate:"gte=0"`
	Round          int    `json:"round,omitempty" validate:"gte=0"`
	Slug           string `json:"slug,omitempty" validate:"max=100"`
	LocalSeasonID  int64  `json:"local_season_id,omitempty" validate:"gte=0"`
	IncludePlayers bool   `json:"include_players,omitempty"`
	UploadLogos    bool   `json:"upload_logos,omitempty"`
}

func (req ActionRequest) seasonRef() seed.SeasonRef {
	return seed.SeasonRef{LocalID: req.LocalSeasonID, SofascoreID: req.SeasonID}
}

// ActionResponse wraps the result of an admin action.
type ActionResponse struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Data    any    `json:"data"`
}

type actionFunc func(ctx context.Context, req ActionRequest) (any, error)

func (h *Handler) actions() map[string]actionFunc {
	return map[string]actionFunc{
		ActionSearchTournament: func(ctx context.Context, req ActionRequest) (any, error) {
			ts, err := h.runner.SearchTournament(ctx, req.Query)
			if err != nil {
				return nil, err
			}
			return map[string]any{"tournaments": ts}, nil
		},
		ActionSetupTournament: func(ctx context.Context, req ActionRequest) (any, error) {
			return h.runner.SetupTournament(ctx, req.TournamentID, req.SeasonID)
		},
		ActionGetRounds: func(ctx context.Context, req ActionRequest) (any, error) {
			return h.runner.GetRounds(ctx, req.TournamentID, req.SeasonID)
		},
		ActionGetSeasons: func(ctx context.Context, req ActionRequest) (any, error) {
			ss, err := h.runner.GetSeasons(ctx, req.TournamentID)
			if err != nil {
				return nil, err
			}
			return map[string]any{"seasons": ss}, nil
		},
		ActionImportMatches: func(ctx context.Context, req ActionRequest) (any, error) {
			return h.runner.ImportMatches(ctx, req.seasonRef())
		},
		ActionImportRoundMatches: func(ctx context.Context, req ActionRequest) (any, error) {
			return h.runner.ImportRoundMatches(ctx, req.seasonRef(), req.Round, req.Slug)
		},
		ActionUpdateMatchScores: func(ctx context.Context, req ActionRequest) (any, error) {
			return h.runner.UpdateMatchScores(ctx, req.seasonRef())
		},
		ActionCalculateScores: func(ctx context.Context, req ActionRequest) (any, error) {
			return h.runner.CalculateScores(ctx, req.seasonRef())
		},
		ActionSyncPredictionsSeason: func(ctx context.Context, req ActionRequest) (any, error) {
			return h.runner.SyncPredictionsSeason(ctx, req.seasonRef())
		},
		ActionImportTeams: func(ctx context.Context, req ActionRequest) (any, error) {
			return h.runner.ImportTeams(ctx, req.seasonRef(), seed.TeamImportOptions{
				IncludePlayers: req.IncludePlayers,
				UploadLogos:    req.UploadLogos,
			})
		},
		ActionGetStandings: func(ctx context.Context, req ActionRequest) (any, error) {
			return h.runner.GetStandings(ctx, req.seasonRef())
		},
	}
}

// AdminSofascore runs one SofaScore import or scoring action.
// @Summary Run an admin action
// @Description Imports tournaments, seasons, teams and matches from SofaScore, or recalculates prediction scores.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ActionRequest true "Action and its parameters"
// @Success 200 {object} ActionResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /admin/sofascore [post]
func (h *Handler) AdminSofascore(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	run, ok := h.actions()[req.Action]
	if !ok {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "UNKNOWN_ACTION", "Unknown action",
			fmt.Sprintf("action %q is not supported", req.Action))
		return
	}

	logger := h.logger.With("action", req.Action)
	if p, ok := auth.Profile(r.Context()); ok {
		logger = logger.With("admin", p.ID)
	}
	logger.Info("Admin action started")

	data, err := run(r.Context(), req)
	if err != nil {
		logger.Warn("Admin action failed", "error", err)
		h.writeErr(w, r, err)
		return
	}
	logger.Info("Admin action finished")

	respond.WriteJSONObject(w, http.StatusOK, ActionResponse{
		Action:  req.Action,
		Success: true,
		Data:    data,
	})
}

// EntryStatusRequest is the body of the payment and deposit review routes.
type EntryStatusRequest struct {
	Status prize.Status `json:"status" validate:"required,oneof=pending approved rejected"`
}

// EntryStatusResponse returns the reviewed entry with the refreshed pool.
type EntryStatusResponse struct {
	Entry     *store.PaymentEntry `json:"entry"`
	PrizePool prize.Pool          `json:"prize_pool"`
}

// PatchPayment reviews a payment.
// @Summary Review a payment
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param body body EntryStatusRequest true "New status"
// @Success 200 {object} EntryStatusResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /admin/payments/{id} [patch]
func (h *Handler) PatchPayment(w http.ResponseWriter, r *http.Request) {
	h.reviewEntry(w, r, store.KindPayment)
}

// PatchDeposit reviews a deposit.
// @Summary Review a deposit
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deposit ID"
// @Param body body EntryStatusRequest true "New status"
// @Success 200 {object} EntryStatusResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /admin/deposits/{id} [patch]
func (h *Handler) PatchDeposit(w http.ResponseWriter, r *http.Request) {
	h.reviewEntry(w, r, store.KindDeposit)
}

func (h *Handler) reviewEntry(w http.ResponseWriter, r *http.Request, kind store.EntryKind) {
	id, err := int64Param(r, "id")
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req EntryStatusRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	reviewer, ok := auth.UserID(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		return
	}

	entry, err := h.store.SetEntryStatus(r.Context(), kind, id, req.Status, reviewer)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	pool, err := h.runner.RecomputePrizePool(r.Context(), entry.SeasonID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	h.logger.Info("Entry reviewed", "kind", kind, "id", id, "status", req.Status, "reviewer", reviewer)
	respond.WriteJSONObject(w, http.StatusOK, EntryStatusResponse{Entry: entry, PrizePool: pool})
}
