package handler

import (
	"net/http"

	"github.com/mcoot/stationscore/internal/api/response"
	"github.com/mcoot/stationscore/internal/realtime"
)

// HealthHandler reports liveness and the number of connected viewers
type HealthHandler struct {
	hub *realtime.Hub
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(hub *realtime.Hub) *HealthHandler {
	return &HealthHandler{hub: hub}
}

// Check handles GET /api/v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:  "ok",
		Viewers: h.hub.ClientCount(),
	})
}
