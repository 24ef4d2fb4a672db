package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/deskware/portal-client/config"
	"github.com/deskware/portal-client/internal/adapters/filestore"
	"github.com/deskware/portal-client/internal/adapters/redisstore"
	"github.com/deskware/portal-client/internal/gateway"
	"github.com/deskware/portal-client/internal/portalapi"
	"github.com/deskware/portal-client/internal/ports"
	"github.com/deskware/portal-client/internal/routeguard"
	"github.com/deskware/portal-client/internal/session"
	"github.com/deskware/portal-client/internal/transport"
)

// App is the wired portal client: every component constructed with explicit
// references, no ambient lookups.
type App struct {
	Config   config.AppConfig
	Sessions *session.Store
	Gateway  *gateway.Gateway
	Guard    *routeguard.Guard
	Portal   *portalapi.Client

	redisClient *redis.Client
}

// Deps groups the injectable pieces of NewApp.
type Deps struct {
	Config    config.AppConfig
	Navigator ports.Navigator
	Logger    *slog.Logger
}

// NewApp wires the session store, transport, gateway, route guard and portal
// API from configuration.
func NewApp(deps Deps) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backend, redisClient, err := buildStorage(deps.Config.Storage)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(backend, logger)

	client, err := transport.NewClient(transport.Options{
		BaseURL:    deps.Config.API.BaseURL,
		Sessions:   store,
		Navigator:  deps.Navigator,
		HTTPClient: &http.Client{Timeout: deps.Config.API.Timeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      deps.Config,
		Sessions:    store,
		Gateway:     gateway.New(client, store, logger),
		Guard:       routeguard.New(store, deps.Navigator),
		Portal:      portalapi.New(client),
		redisClient: redisClient,
	}, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	if a.redisClient != nil {
		return a.redisClient.Close()
	}
	return nil
}

// buildStorage creates the durable session backend selected by config.
func buildStorage(cfg config.StorageConfig) (ports.StorageBackend, *redis.Client, error) {
	switch cfg.Mode {
	case config.StorageModeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redisstore.NewWithKey(client, cfg.Redis.Key), client, nil

	case config.StorageModeFile, "":
		backend, err := filestore.New(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("init file storage: %w", err)
		}
		return backend, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage mode %q", cfg.Mode)
	}
}
