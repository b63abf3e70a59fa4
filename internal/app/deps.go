package app

import (
	"context"
	"fmt"

	"github.com/aora/backend/internal/auth"
	"github.com/aora/backend/internal/backend"
	"github.com/aora/backend/internal/backend/memstore"
	"github.com/aora/backend/internal/config"
	"github.com/aora/backend/internal/db"
	"github.com/aora/backend/internal/handlers"
	"github.com/aora/backend/internal/middleware"
	"github.com/aora/backend/internal/repositories"
	"github.com/aora/backend/internal/service"
	"github.com/aora/backend/internal/storage"
)

// buildService connects the configured store and returns the data access
// functions bound to it, with a cleanup releasing the connections.
func buildService(ctx context.Context, cfg config.Config) (*service.Service, func(), error) {
	var (
		services backend.Services
		cleanup  = func() {}
	)

	switch cfg.Store {
	case config.StoreMemory:
		services = memstore.New(cfg.SessionTTL).Services()
	default:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		files, err := storage.NewS3Storage(ctx, cfg.Backend.StorageID, cfg.ObjectStore)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		services = postgresServices(pool, files, cfg)
		cleanup = pool.Close
	}

	svc, err := newService(cfg.Backend, services)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// postgresServices wires the repositories over pool into backend service handles.
func postgresServices(pool db.Pool, files backend.FileStorage, cfg config.Config) backend.Services {
	tables := repositories.NewTables(cfg.Backend)
	return backend.Services{
		Accounts: repositories.NewPostgresAccountRepository(pool, tables),
		Sessions: auth.NewManager(cfg.SessionTTL, repositories.NewPostgresSessionStore(pool, tables)),
		Users:    repositories.NewPostgresUserRepository(pool, tables),
		Videos:   repositories.NewPostgresVideoRepository(pool, tables),
		Files:    files,
	}
}

func newService(cfg backend.Config, services backend.Services) (*service.Service, error) {
	client, err := backend.New(cfg, services)
	if err != nil {
		return nil, fmt.Errorf("configure backend client: %w", err)
	}
	return service.New(client), nil
}

// buildDependencies wires the data access functions into the HTTP handlers.
func buildDependencies(svc *service.Service, cfg config.Config) handlers.Dependencies {
	return handlers.Dependencies{
		Accounts:       svc,
		Videos:         svc,
		Files:          svc,
		AuthLimiter:    middleware.NewAuthLimiter(cfg.AuthLimit),
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		PlatformID:     cfg.Backend.PlatformID,
	}
}
