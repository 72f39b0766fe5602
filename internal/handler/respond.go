package handler

import (
	"encoding/json"
	"net/http"

	apperrors "manchitra-be/pkg/errors"
	"manchitra-be/pkg/logger"
)

// envelope is the JSON shape every endpoint responds with
type envelope struct {
	Success bool          `json:"success"`
	Data    interface{}   `json:"data,omitempty"`
	Error   *errorPayload `json:"error,omitempty"`
}

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// sendJSON writes a success envelope
func sendJSON(w http.ResponseWriter, status int, data interface{}, log *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// sendError maps an error to the response envelope. Unrecognized errors are
// reported as storage failures without leaking internals.
func sendError(w http.ResponseWriter, err error, log *logger.Logger) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		log.WithError(err).Error("Unhandled error reached the request surface")
		appErr = apperrors.NewStorageError("internal error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	payload := envelope{
		Success: false,
		Error: &errorPayload{
			Type:    string(appErr.Type),
			Message: appErr.Message,
		},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode error response")
	}
}
