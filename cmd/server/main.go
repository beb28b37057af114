package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/stationscore/internal/api"
	"github.com/mcoot/stationscore/internal/config"
	"github.com/mcoot/stationscore/internal/factory"
	"github.com/mcoot/stationscore/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create application factory
	app, err := factory.New(ctx, factory.ConfigFromEnv(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("error closing application", slog.String("error", err.Error()))
		}
	}()

	if err := app.Start(ctx); err != nil {
		logger.Error("failed to start application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.BootstrapAdmin.Enabled() {
		created, err := app.UserService.EnsureAdmin(ctx, cfg.BootstrapAdmin.Username, cfg.BootstrapAdmin.Password)
		if err != nil {
			logger.Error("failed to bootstrap administrator", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if created {
			logger.Info("bootstrap administrator created", slog.String("username", cfg.BootstrapAdmin.Username))
		}
	}

	// Background maintenance
	sched, err := scheduler.New(logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if purger, ok := app.SessionPurger(); ok {
		if err := sched.AddSessionPurge(purger, cfg.SessionPurgeInterval); err != nil {
			logger.Error("failed to schedule session purge", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if cfg.BalanceAuditInterval > 0 {
		if err := sched.AddBalanceAudit(app.LedgerQuery, cfg.BalanceAuditInterval); err != nil {
			logger.Error("failed to schedule balance audit", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	sched.Start()
	defer func() {
		if err := sched.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown error", slog.String("error", err.Error()))
		}
	}()

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		UserService:    app.UserService,
		RosterService:  app.RosterService,
		StationManager: app.StationManager,
		LedgerEngine:   app.LedgerEngine,
		LedgerQuery:    app.LedgerQuery,
		Hub:            app.Hub,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(mux, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}
