package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/stationscore/internal/api/handler"
	"github.com/mcoot/stationscore/internal/api/middleware"
	"github.com/mcoot/stationscore/internal/realtime"
	"github.com/mcoot/stationscore/internal/services/auth"
	"github.com/mcoot/stationscore/internal/services/ledger"
	"github.com/mcoot/stationscore/internal/services/roster"
	"github.com/mcoot/stationscore/internal/services/station"
	"github.com/mcoot/stationscore/internal/services/users"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	UserService    *users.Service
	RosterService  *roster.Service
	StationManager *station.Manager
	LedgerEngine   *ledger.Engine
	LedgerQuery    *ledger.QueryService
	Hub            *realtime.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	userHandler := handler.NewUserHandler(cfg.UserService)
	playerHandler := handler.NewPlayerHandler(cfg.RosterService, cfg.LedgerQuery)
	stationHandler := handler.NewStationHandler(cfg.StationManager)
	pointsHandler := handler.NewPointsHandler(cfg.LedgerEngine, cfg.LedgerQuery)
	eventsHandler := handler.NewEventsHandler(cfg.Hub)
	healthHandler := handler.NewHealthHandler(cfg.Hub)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(h)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(recoveryMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	// Login routes (no auth required)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/code-login", authHandler.CodeLogin).Methods(http.MethodPost)

	// Everything else requires a session
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", authHandler.GetMe).Methods(http.MethodGet)

	// User routes (admin only)
	protected.Handle("/users", admin(userHandler.List)).Methods(http.MethodGet)
	protected.Handle("/users", admin(userHandler.Create)).Methods(http.MethodPost)
	protected.Handle("/users/login-logs", admin(userHandler.LoginLogs)).Methods(http.MethodGet)
	protected.Handle("/users/{id}", admin(userHandler.Update)).Methods(http.MethodPut)
	protected.Handle("/users/{id}", admin(userHandler.Delete)).Methods(http.MethodDelete)

	// Player routes
	protected.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/players/{id}", playerHandler.Update).Methods(http.MethodPut)
	protected.Handle("/players/{id}", admin(playerHandler.Delete)).Methods(http.MethodDelete)
	protected.HandleFunc("/players/{id}/audit", playerHandler.Audit).Methods(http.MethodGet)

	// Station routes
	protected.HandleFunc("/stations", stationHandler.List).Methods(http.MethodGet)
	protected.Handle("/stations", admin(stationHandler.Create)).Methods(http.MethodPost)
	protected.HandleFunc("/stations/{id}", stationHandler.Get).Methods(http.MethodGet)
	protected.Handle("/stations/{id}", admin(stationHandler.Update)).Methods(http.MethodPut)
	protected.Handle("/stations/{id}", admin(stationHandler.Delete)).Methods(http.MethodDelete)
	protected.Handle("/stations/{id}/status/{status}", admin(stationHandler.SetStatusPath)).Methods(http.MethodPut)
	protected.Handle("/stations/{id}/status", admin(stationHandler.SetStatusBody)).Methods(http.MethodPatch)
	protected.Handle("/stations/{id}/delay/{delay}", admin(stationHandler.SetDelayPath)).Methods(http.MethodPut)
	protected.Handle("/stations/{id}/delay", admin(stationHandler.SetDelayBody)).Methods(http.MethodPatch)

	// Point log routes
	protected.HandleFunc("/points", pointsHandler.Register).Methods(http.MethodPost)
	protected.HandleFunc("/points", pointsHandler.Query).Methods(http.MethodGet)
	protected.HandleFunc("/points/{id}", pointsHandler.Get).Methods(http.MethodGet)
	protected.Handle("/points/{id}", admin(pointsHandler.Edit)).Methods(http.MethodPatch)
	protected.Handle("/points/{id}", admin(pointsHandler.Revoke)).Methods(http.MethodDelete)
	protected.Handle("/audit", admin(pointsHandler.Audit)).Methods(http.MethodGet)

	// Realtime
	protected.HandleFunc("/events/stations", eventsHandler.Stations).Methods(http.MethodGet)

	return r
}
