package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aserras/webfront/internal/services/brain"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	brain *brain.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(brainClient *brain.Client) *HealthHandler {
	return &HealthHandler{brain: brainClient}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /health endpoint. Basic mode reports only that
// the server itself is up; ?mode=extended also probes the Brain backend.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{Status: "ok"}

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.brain.Health(ctx); err != nil {
			response.Status = "degraded"
			checks["brain"] = "unreachable"
		} else {
			checks["brain"] = "ok"
		}
		response.Checks = checks
	}

	respondJSON(w, http.StatusOK, response)
}
