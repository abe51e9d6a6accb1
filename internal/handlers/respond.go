package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/streamia/backend/internal/logging"
)

// successEnvelope and errorEnvelope are the only two response shapes the API
// produces. Callers pick the status code; the envelope carries the payload.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// respondData writes a success envelope with the provided payload.
func respondData(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, successEnvelope{Success: true, Data: data})
}

// respondError writes an error envelope. details is optional structured
// context, typically field-level validation failures.
func respondError(ctx context.Context, w http.ResponseWriter, status int, message string, details any) {
	writeJSON(ctx, w, status, errorEnvelope{Success: false, Error: message, Details: details})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status)
	}
}
