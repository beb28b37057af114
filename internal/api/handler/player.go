package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/stationscore/internal/api/request"
	"github.com/mcoot/stationscore/internal/api/response"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/services/ledger"
	"github.com/mcoot/stationscore/internal/services/roster"
)

// PlayerHandler handles roster endpoints
type PlayerHandler struct {
	roster *roster.Service
	query  *ledger.QueryService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(roster *roster.Service, query *ledger.QueryService) *PlayerHandler {
	return &PlayerHandler{
		roster: roster,
		query:  query,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.roster.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayersFromModel(players))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	player, err := h.roster.Get(r.Context(), model.PlayerID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.roster.Create(r.Context(), roster.CreateInput{
		Name:   req.Name,
		Number: req.Number,
		Class:  req.Class,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.PlayerFromModel(player))
}

// Update handles PUT /api/v1/players/{id}. Points cannot be set here.
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePlayerRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.roster.Update(r.Context(), model.PlayerID(mux.Vars(r)["id"]), roster.UpdateInput{
		Name:   req.Name,
		Number: req.Number,
		Class:  req.Class,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Delete handles DELETE /api/v1/players/{id}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.Delete(r.Context(), model.PlayerID(mux.Vars(r)["id"])); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Audit handles GET /api/v1/players/{id}/audit
func (h *PlayerHandler) Audit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	player, err := h.roster.Get(ctx, model.PlayerID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}

	total, err := h.query.PlayerTotal(ctx, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerAudit{
		PlayerID:   string(player.ID),
		Cached:     player.Points,
		Ledger:     total,
		Consistent: player.Points == total,
	})
}
