package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"manchitra-be/pkg/database"
	"manchitra-be/pkg/logger"
	"manchitra-be/pkg/redis"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewHealthHandler creates a new health handler. redisClient may be nil.
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health. A cache outage degrades the status without
// failing the probe; the database is load-bearing.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "manchitra-be",
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	if err := h.db.Health(ctx); err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		response.Status = "unhealthy"
		response.Checks["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		response.Checks["database"] = "ok"
	}

	if h.redisClient == nil {
		response.Checks["cache"] = "disabled"
	} else if err := h.redisClient.Health(ctx); err != nil {
		h.logger.WithError(err).Warn("Cache health check failed")
		response.Checks["cache"] = "down"
		if response.Status == "healthy" {
			response.Status = "degraded"
		}
	} else {
		response.Checks["cache"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode health check response")
	}
}
