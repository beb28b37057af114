package handler

import (
	"net/http"

	"github.com/mcoot/stationscore/internal/api/middleware"
	"github.com/mcoot/stationscore/internal/realtime"
)

// EventsHandler streams realtime notifications to viewers
type EventsHandler struct {
	hub *realtime.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stations handles GET /api/v1/events/stations
func (h *EventsHandler) Stations(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	realtime.ServeSSE(w, r, h.hub, user.ID)
}
