package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aserras/webfront/internal/logger"
	"github.com/aserras/webfront/internal/services/brain"
	"go.uber.org/zap"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondRaw sends an upstream JSON payload through unchanged.
func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondDetail sends an error JSON response in the {"detail": ...} shape.
func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{
		"detail": logger.SanitizeString(detail, logger.MaxErrorMessageLength),
	})
}

// respondBrainError maps an upstream client error onto an HTTP response:
// unavailability becomes 503, a backend rejection keeps its original status
// and detail, anything else is a 500.
func respondBrainError(w http.ResponseWriter, log *zap.Logger, err error) {
	if brain.IsUnavailable(err) {
		log.Warn("brain_unavailable", zap.Error(err))
		respondDetail(w, http.StatusServiceUnavailable, "The Aserras brain is temporarily unavailable. Please try again shortly.")
		return
	}

	var rejected *brain.RejectedError
	if errors.As(err, &rejected) {
		detail := rejected.Detail
		if detail == "" {
			detail = http.StatusText(rejected.StatusCode)
		}
		respondDetail(w, rejected.StatusCode, detail)
		return
	}

	log.Error("brain_request_failed", zap.Error(err))
	respondDetail(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSONBody decodes a JSON request body into dst. Unknown fields are
// tolerated; only malformed JSON is an error.
func decodeJSONBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return errors.New("request body must be valid JSON")
	}
	return nil
}
