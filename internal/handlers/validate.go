package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/streamia/backend/internal/logging"
	"github.com/streamia/backend/internal/validation"
)

// Validatable is a request payload that can check itself after decoding.
type Validatable interface {
	Validate() validation.Errors
}

// withValidation composes JSON decoding and schema validation in front of a
// handler. The handler only ever observes a well-formed, validated payload:
// malformed JSON yields 400 "Invalid JSON", field failures yield 400
// "Validation failed" with per-field details.
func withValidation[T Validatable](handle func(w http.ResponseWriter, r *http.Request, payload T)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload T
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logging.FromContext(ctx).Warn("malformed request body", "error", err)
			respondError(ctx, w, http.StatusBadRequest, "Invalid JSON", nil)
			return
		}

		if errs := payload.Validate(); !errs.Empty() {
			logging.FromContext(ctx).Warn("request failed validation", "fields", len(errs))
			respondError(ctx, w, http.StatusBadRequest, "Validation failed", errs)
			return
		}

		handle(w, r, payload)
	}
}
