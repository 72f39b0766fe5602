package handler

import (
	"net/http"
	"strconv"

	"manchitra-be/internal/service"
	apperrors "manchitra-be/pkg/errors"
	"manchitra-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// SuggestionHandler handles autocomplete suggestion HTTP requests
type SuggestionHandler struct {
	suggestionService service.SuggestionService
	logger            *logger.Logger
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestionService service.SuggestionService, logger *logger.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
		logger:            logger,
	}
}

// RegisterRoutes registers suggestion routes on the router
func (h *SuggestionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/suggestions", h.Search)
}

// Search handles GET /api/suggestions?q=&limit=
func (h *SuggestionHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			sendError(w, apperrors.NewValidationError("limit must be a positive integer", nil), h.logger)
			return
		}
		limit = parsed
	}

	result, err := h.suggestionService.Search(r.Context(), query, limit)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	sendJSON(w, http.StatusOK, result, h.logger)
}
