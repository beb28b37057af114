package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/stationscore/internal/api/request"
	"github.com/mcoot/stationscore/internal/api/response"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/services/users"
)

const defaultLoginLogLimit = 100

// UserHandler handles staff and administrator accounts
type UserHandler struct {
	users *users.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *users.Service) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UsersFromModel(list))
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	user, err := h.users.Create(r.Context(), users.CreateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Username:        req.Username,
		Password:        req.Password,
		Email:           req.Email,
		Phone:           req.Phone,
		AssignedStation: model.StationID(req.AssignedStation),
		Rank:            req.Rank,
		Code:            req.Code,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.UserFromModel(user))
}

// Update handles PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	in := users.UpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		Phone:     req.Phone,
		Rank:      req.Rank,
		Code:      req.Code,
	}
	if req.AssignedStation != nil {
		station := model.StationID(*req.AssignedStation)
		in.AssignedStation = &station
	}

	user, err := h.users.Update(r.Context(), model.UserID(mux.Vars(r)["id"]), in)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), model.UserID(mux.Vars(r)["id"])); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// LoginLogs handles GET /api/v1/users/login-logs?limit=
func (h *UserHandler) LoginLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLoginLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	logs, err := h.users.LoginLogs(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LoginLogsFromModel(logs))
}
