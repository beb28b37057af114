package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/stationscore/internal/api/request"
	"github.com/mcoot/stationscore/internal/api/response"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/services/station"
)

// StationHandler handles station endpoints
type StationHandler struct {
	manager *station.Manager
}

// NewStationHandler creates a new station handler
func NewStationHandler(manager *station.Manager) *StationHandler {
	return &StationHandler{manager: manager}
}

func stationID(r *http.Request) model.StationID {
	return model.StationID(mux.Vars(r)["id"])
}

// List handles GET /api/v1/stations
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.manager.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StationsFromModel(stations))
}

// Get handles GET /api/v1/stations/{id}
func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.manager.Get(r.Context(), stationID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StationFromModel(st))
}

// Create handles POST /api/v1/stations
func (h *StationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateStationRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	in := station.CreateInput{
		Name:      req.Name,
		Number:    req.Number,
		MaxPoints: req.MaxPoints,
		Status:    station.CoerceStatus(req.Status),
		Image:     req.Image,
	}
	if req.Delay != nil {
		delay, err := station.CoerceDelay(req.Delay)
		if err != nil {
			WriteError(w, err)
			return
		}
		in.Delay = delay
	}

	st, err := h.manager.Create(r.Context(), in)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, response.StationFromModel(st))
}

// Update handles PUT /api/v1/stations/{id}
func (h *StationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateStationRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	in := station.UpdateInput{
		Name:      req.Name,
		Number:    req.Number,
		MaxPoints: req.MaxPoints,
		Image:     req.Image,
	}
	if req.Status != nil {
		status := station.CoerceStatus(req.Status)
		in.Status = &status
	}
	if req.Delay != nil {
		delay, err := station.CoerceDelay(req.Delay)
		if err != nil {
			WriteError(w, err)
			return
		}
		in.Delay = &delay
	}

	st, err := h.manager.Update(r.Context(), stationID(r), in)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StationFromModel(st))
}

// Delete handles DELETE /api/v1/stations/{id}
func (h *StationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), stationID(r)); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// SetStatusPath handles PUT /api/v1/stations/{id}/status/{status}
func (h *StationHandler) SetStatusPath(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, mux.Vars(r)["status"])
}

// SetStatusBody handles PATCH /api/v1/stations/{id}/status
func (h *StationHandler) SetStatusBody(w http.ResponseWriter, r *http.Request) {
	var req request.StatusRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	h.setStatus(w, r, req.Status)
}

func (h *StationHandler) setStatus(w http.ResponseWriter, r *http.Request, value any) {
	st, err := h.manager.SetStatus(r.Context(), stationID(r), value)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StationFromModel(st))
}

// SetDelayPath handles PUT /api/v1/stations/{id}/delay/{delay}
func (h *StationHandler) SetDelayPath(w http.ResponseWriter, r *http.Request) {
	delay, err := station.ParseDelay(mux.Vars(r)["delay"])
	if err != nil {
		WriteError(w, err)
		return
	}
	h.setDelay(w, r, delay)
}

// SetDelayBody handles PATCH /api/v1/stations/{id}/delay
func (h *StationHandler) SetDelayBody(w http.ResponseWriter, r *http.Request) {
	var req request.DelayRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	delay, err := station.CoerceDelay(req.Delay)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.setDelay(w, r, delay)
}

func (h *StationHandler) setDelay(w http.ResponseWriter, r *http.Request, delay int) {
	st, err := h.manager.SetDelay(r.Context(), stationID(r), delay)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StationFromModel(st))
}
