package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"manchitra-be/internal/middleware"
	"manchitra-be/internal/service"
	apperrors "manchitra-be/pkg/errors"
	"manchitra-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// EngagementHandler handles like, visited, and poll vote HTTP requests
type EngagementHandler struct {
	engagementService service.EngagementService
	logger            *logger.Logger
}

// NewEngagementHandler creates a new engagement handler
func NewEngagementHandler(engagementService service.EngagementService, logger *logger.Logger) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
		logger:            logger,
	}
}

// RegisterRoutes registers engagement routes on the router. Likes and poll
// votes degrade for anonymous callers, but the visited set is per-user only,
// so that route demands an identity up front.
func (h *EngagementHandler) RegisterRoutes(r chi.Router) {
	r.Post("/places/{placeID}/like", h.ToggleLike)
	r.With(middleware.RequireAuth(h.logger)).Post("/places/{placeID}/visited", h.ToggleVisited)
	r.Post("/posts/{postID}/poll/vote", h.VotePoll)
}

// ToggleLike handles POST /api/places/{placeID}/like. Authenticated callers
// get toggle semantics; anonymous callers fall back to an untracked
// increment.
func (h *EngagementHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	placeID, err := parsePlaceID(r)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(ctx)

	if userID == "" {
		info, err := h.engagementService.AnonymousLike(ctx, placeID)
		if err != nil {
			sendError(w, err, h.logger)
			return
		}
		sendJSON(w, http.StatusOK, info, h.logger)
		return
	}

	info, err := h.engagementService.ToggleLike(ctx, placeID, userID)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	sendJSON(w, http.StatusOK, info, h.logger)
}

// ToggleVisited handles POST /api/places/{placeID}/visited
func (h *EngagementHandler) ToggleVisited(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	placeID, err := parsePlaceID(r)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(ctx)

	visited, err := h.engagementService.ToggleVisited(ctx, placeID, userID)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"place_id": placeID,
		"visited":  visited,
	}, h.logger)
}

// VotePollRequest is the body of a poll vote call
type VotePollRequest struct {
	OptionIDs     []string `json:"optionIds"`
	AllowMultiple bool     `json:"allowMultiple"`
}

// VotePoll handles POST /api/posts/{postID}/poll/vote
func (h *EngagementHandler) VotePoll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawPostID := chi.URLParam(r, "postID")
	postID, err := strconv.ParseInt(rawPostID, 10, 64)
	if err != nil || postID <= 0 {
		sendError(w, apperrors.NewValidationError("post id must be a positive integer", map[string]interface{}{
			"post_id": rawPostID,
		}), h.logger)
		return
	}

	var req VotePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, apperrors.NewValidationError("invalid request body", nil), h.logger)
		return
	}

	voterID := middleware.UserIDFromContext(ctx)

	result, err := h.engagementService.VotePoll(ctx, postID, req.OptionIDs, voterID, req.AllowMultiple)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	sendJSON(w, http.StatusOK, result, h.logger)
}
