package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/stationscore/internal/config"
	"github.com/mcoot/stationscore/internal/dependencies/clock"
	"github.com/mcoot/stationscore/internal/dependencies/ids"
	"github.com/mcoot/stationscore/internal/dependencies/random"
	"github.com/mcoot/stationscore/internal/realtime"
	"github.com/mcoot/stationscore/internal/services/auth"
	"github.com/mcoot/stationscore/internal/services/ledger"
	"github.com/mcoot/stationscore/internal/services/roster"
	"github.com/mcoot/stationscore/internal/services/station"
	"github.com/mcoot/stationscore/internal/services/users"
	"github.com/mcoot/stationscore/internal/session"
	"github.com/mcoot/stationscore/internal/storage"
	"github.com/mcoot/stationscore/internal/storage/memory"
	pgstorage "github.com/mcoot/stationscore/internal/storage/postgres"
	redisstorage "github.com/mcoot/stationscore/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage  storage.Storage
	Sessions session.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ids.Generator

	// Realtime
	Hub   *realtime.Hub
	Relay *realtime.RedisRelay

	// Services
	AuthService    *auth.Service
	UserService    *users.Service
	RosterService  *roster.Service
	StationManager *station.Manager
	LedgerEngine   *ledger.Engine
	LedgerQuery    *ledger.QueryService

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// UsersConfig holds configuration for the users service (optional)
	UsersConfig users.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings. Required if StorageType is "redis"
	// or RealtimeRelay is set; when present, sessions are kept in Redis too.
	RedisConfig *redisstorage.Config
	// DatabaseURL is the PostgreSQL connection string (required if StorageType is "postgres")
	DatabaseURL string
	// MigrateOnStart applies pending PostgreSQL migrations before use
	MigrateOnStart bool
	// RealtimeRelay shares station notifications between instances over Redis
	RealtimeRelay bool
}

// ConfigFromEnv maps the server configuration onto a factory Config
func ConfigFromEnv(c *config.Config, logger *slog.Logger) Config {
	cfg := Config{
		AuthConfig:     auth.Config{SessionDuration: c.SessionTTL},
		Logger:         logger,
		StorageType:    c.StorageType,
		DatabaseURL:    c.DatabaseURL,
		MigrateOnStart: c.MigrateOnStart,
		RealtimeRelay:  c.RealtimeRelay,
	}
	if c.RedisURL != "" {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// New creates a new application with all dependencies wired. The caller must
// Start it to begin realtime delivery and Close it on shutdown.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []io.Closer
	fail := func(err error) (*App, error) {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, err
	}

	// Create storage based on type
	var store storage.Storage
	var redisClient *redis.Client
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		closers = append(closers, redisStore)
		redisClient = redisStore.Client()
		store = redisStore
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		if cfg.MigrateOnStart {
			applied, err := pgstorage.Migrate(cfg.DatabaseURL)
			if err != nil {
				return nil, err
			}
			logger.Info("database migrations checked", slog.Bool("applied", applied))
		}
		pgStore, err := pgstorage.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pgStore)
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	// A Redis connection is still useful for sessions and the relay with other backends
	if redisClient == nil && cfg.RedisConfig != nil {
		opts, err := redis.ParseURL(cfg.RedisConfig.URL)
		if err != nil {
			return fail(fmt.Errorf("invalid redis URL: %w", err))
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return fail(fmt.Errorf("failed to connect to redis: %w", err))
		}
		closers = append(closers, redisClient)
	}
	if cfg.RealtimeRelay && redisClient == nil {
		return fail(errors.New("RedisConfig required when RealtimeRelay is set"))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	gen := ids.New()

	var sessions session.Store
	if redisClient != nil {
		sessions = session.NewRedisStore(redisClient, clk)
	} else {
		sessions = session.NewMemoryStore(clk)
	}

	app := newWithDependencies(store, sessions, clk, rnd, gen, cfg.AuthConfig, cfg.UsersConfig, logger, func(hub *realtime.Hub) (realtime.Notifier, *realtime.RedisRelay) {
		if !cfg.RealtimeRelay {
			return hub, nil
		}
		relay := realtime.NewRedisRelay(redisClient, realtime.DefaultRelayChannel, uuid.NewString(), hub, logger)
		return relay, relay
	})
	app.closers = closers
	return app, nil
}

// notifierFunc picks what the station manager notifies, given the local hub
type notifierFunc func(hub *realtime.Hub) (realtime.Notifier, *realtime.RedisRelay)

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	sessions session.Store,
	clk clock.Clock,
	rnd random.Random,
	gen ids.Generator,
	authCfg auth.Config,
	usersCfg users.Config,
	logger *slog.Logger,
	notifier notifierFunc,
) *App {
	// Use default auth config if not provided
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	hub := realtime.NewHub(logger)
	stationNotifier, relay := notifier(hub)

	return &App{
		Storage:        store,
		Sessions:       sessions,
		Clock:          clk,
		Random:         rnd,
		IDs:            gen,
		Hub:            hub,
		Relay:          relay,
		AuthService:    auth.New(store, sessions, clk, gen, logger, authCfg),
		UserService:    users.NewService(store, clk, rnd, gen, logger, usersCfg),
		RosterService:  roster.NewService(store, clk, gen, logger),
		StationManager: station.NewManager(store, stationNotifier, clk, gen, logger),
		LedgerEngine:   ledger.NewEngine(store, clk, gen, logger),
		LedgerQuery:    ledger.NewQueryService(store),
	}
}

// Start runs the realtime hub and, when configured, subscribes the relay
func (a *App) Start(ctx context.Context) error {
	go a.Hub.Run()
	if a.Relay != nil {
		if err := a.Relay.Start(ctx); err != nil {
			return fmt.Errorf("start realtime relay: %w", err)
		}
	}
	return nil
}

// Close stops realtime delivery and releases storage connections
func (a *App) Close() error {
	var errs []error
	if a.Relay != nil {
		errs = append(errs, a.Relay.Close())
	}
	a.Hub.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

// SessionPurger returns the session store when it needs periodic purging
func (a *App) SessionPurger() (*session.MemoryStore, bool) {
	store, ok := a.Sessions.(*session.MemoryStore)
	return store, ok
}
