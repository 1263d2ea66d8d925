package handler

import (
	"net/http"

	"github.com/helpmesh/support-platform/internal/events"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	natsClient *events.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(natsClient *events.Client) *HealthHandler {
	return &HealthHandler{
		natsClient: natsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, "healthy", nil)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.natsClient == nil || !h.natsClient.IsConnected() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":false,"message":"NATS not connected","result":null}`))
		return
	}
	writeResult(w, http.StatusOK, "ready", nil)
}
