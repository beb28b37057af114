package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/stationscore/internal/api/middleware"
	"github.com/mcoot/stationscore/internal/api/request"
	"github.com/mcoot/stationscore/internal/api/response"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/services/ledger"
)

// PointsHandler handles point registration and the point log
type PointsHandler struct {
	engine *ledger.Engine
	query  *ledger.QueryService
}

// NewPointsHandler creates a new points handler
func NewPointsHandler(engine *ledger.Engine, query *ledger.QueryService) *PointsHandler {
	return &PointsHandler{
		engine: engine,
		query:  query,
	}
}

func logID(r *http.Request) model.PointLogID {
	return model.PointLogID(mux.Vars(r)["id"])
}

// Register handles POST /api/v1/points
func (h *PointsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterPointsRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	number := req.PlayerNumber
	if number == "" {
		number = req.UserNumber
	}
	if number == "" {
		WriteError(w, NewInvalidRequestError("playerNumber is required"))
		return
	}
	if req.StationID == "" {
		WriteError(w, NewInvalidRequestError("stationId is required"))
		return
	}
	if req.Points == nil {
		WriteError(w, NewInvalidRequestError("points is required"))
		return
	}

	result, err := h.engine.Register(r.Context(), ledger.RegisterInput{
		PlayerNumber: string(number),
		StationID:    model.StationID(req.StationID),
		Points:       int64(*req.Points),
		Description:  req.Description,
		RecordedBy:   middleware.MustGetUser(r.Context()).ID,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.LedgerResultFromModel(result))
}

// Query handles GET /api/v1/points?playerId=&stationId=
func (h *PointsHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.query.Query(r.Context(), model.LogFilter{
		PlayerID:  model.PlayerID(q.Get("playerId")),
		StationID: model.StationID(q.Get("stationId")),
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PointLogsFromModel(entries))
}

// Get handles GET /api/v1/points/{id}
func (h *PointsHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.query.Get(r.Context(), logID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PointLogFromModel(entry))
}

// Edit handles PATCH /api/v1/points/{id}
func (h *PointsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req request.EditPointsRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	in := ledger.EditInput{
		ID:          logID(r),
		Timestamp:   req.Timestamp,
		Description: req.Description,
	}
	if req.PlayerID != nil {
		id := model.PlayerID(*req.PlayerID)
		in.PlayerID = &id
	}
	if req.StationID != nil {
		id := model.StationID(*req.StationID)
		in.StationID = &id
	}
	if req.Points != nil {
		points := int64(*req.Points)
		in.Points = &points
	}

	result, err := h.engine.Edit(r.Context(), in)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LedgerResultFromModel(result))
}

// Revoke handles DELETE /api/v1/points/{id}
func (h *PointsHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Revoke(r.Context(), logID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LedgerResultFromModel(result))
}

// Audit handles GET /api/v1/audit
func (h *PointsHandler) Audit(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.query.Audit(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.BalanceDriftsFromAudit(drifts))
}
