package handler

import (
	"net"
	"net/http"
	"strconv"

	"manchitra-be/internal/service"
	apperrors "manchitra-be/pkg/errors"
	"manchitra-be/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// ViewHandler handles view tracking HTTP requests
type ViewHandler struct {
	viewService service.ViewService
	logger      *logger.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(viewService service.ViewService, logger *logger.Logger) *ViewHandler {
	return &ViewHandler{
		viewService: viewService,
		logger:      logger,
	}
}

// RegisterRoutes registers view routes on the router
func (h *ViewHandler) RegisterRoutes(r chi.Router) {
	r.Post("/places/{placeID}/view", h.RecordView)
	r.Get("/places/views", h.GetViewCounts)
}

// RecordView handles POST /api/places/{placeID}/view
func (h *ViewHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	placeID, err := parsePlaceID(r)
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	result, rateLimitInfo, err := h.viewService.IncrementView(ctx, placeID, realIP(r))
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	if rateLimitInfo != nil && !rateLimitInfo.IsAllowed {
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rateLimitInfo.Limit, 10))
		sendError(w, apperrors.NewRateLimitError("Too many views from this address, try again later"), h.logger)
		return
	}

	sendJSON(w, http.StatusOK, result, h.logger)
}

// GetViewCounts handles GET /api/places/views
func (h *ViewHandler) GetViewCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.viewService.GetViewCounts(r.Context())
	if err != nil {
		sendError(w, err, h.logger)
		return
	}

	// JSON object keys must be strings
	viewCounts := make(map[string]int64, len(counts))
	for placeID, count := range counts {
		viewCounts[strconv.FormatInt(placeID, 10)] = count
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{"view_counts": viewCounts}, h.logger)
}

// parsePlaceID reads the placeID path parameter
func parsePlaceID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "placeID")
	placeID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || placeID <= 0 {
		return 0, apperrors.NewValidationError("place id must be a positive integer", map[string]interface{}{
			"place_id": raw,
		})
	}
	return placeID, nil
}

// realIP returns the caller's address with the port stripped. The RealIP
// middleware has already resolved forwarding headers.
func realIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
