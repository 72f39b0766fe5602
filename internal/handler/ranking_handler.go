package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"manchitra-be/internal/domain"
	"manchitra-be/internal/service"
	apperrors "manchitra-be/pkg/errors"
	"manchitra-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// DefaultRankingLimit is served when the caller does not specify one
const DefaultRankingLimit = 10

// RankingHandler handles top-N ranking HTTP requests
type RankingHandler struct {
	rankingService service.RankingService
	logger         *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(rankingService service.RankingService, logger *logger.Logger) *RankingHandler {
	return &RankingHandler{
		rankingService: rankingService,
		logger:         logger,
	}
}

// RegisterRoutes registers ranking routes on the router
func (h *RankingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/rankings/{kind}", h.GetTopN)
	r.Post("/rankings/{kind}/recompute", h.Recompute)
}

// GetTopN handles GET /api/rankings/{kind}?limit=
func (h *RankingHandler) GetTopN(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	limit := DefaultRankingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			sendError(w, apperrors.NewValidationError("limit must be a positive integer", nil), h.logger)
			return
		}
		limit = parsed
	}
	if limit > service.MaxRankingLimit {
		limit = service.MaxRankingLimit
	}

	entries, err := h.rankingService.GetTopN(r.Context(), kind, limit)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"kind":    kind,
		"entries": entries,
	}, h.logger)
}

// RecomputeRequest is the body of a manual recompute call
type RecomputeRequest struct {
	Confirm bool `json:"confirm"`
}

// Recompute handles POST /api/rankings/{kind}/recompute. The explicit confirm
// flag guards against accidental expensive recomputes.
func (h *RankingHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	var req RecomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperrors.NewValidationError("invalid request body", nil), h.logger)
		return
	}
	if !req.Confirm {
		sendError(w, apperrors.NewValidationError("recompute requires confirm=true", nil), h.logger)
		return
	}

	top10, err := h.rankingService.RecomputeTopN(r.Context(), kind, service.RankingBucketSmall)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	top25, err := h.rankingService.RecomputeTopN(r.Context(), kind, service.RankingBucketLarge)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"top10": top10,
		"top25": top25,
	}, h.logger)
}

// parseKind reads and validates the ranking kind path parameter
func parseKind(r *http.Request) (domain.RankingKind, error) {
	raw := chi.URLParam(r, "kind")
	kind, err := domain.ParseRankingKind(raw)
	if err != nil {
		return "", apperrors.NewValidationError("kind must be one of: views, visits", map[string]interface{}{
			"kind": raw,
		})
	}
	return kind, nil
}
