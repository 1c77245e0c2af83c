package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/persistence"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
)

// Storage is an opened token store with the probe and cleanup of its backend.
type Storage struct {
	Store   repository.TokenStore
	Backend string
	Ping    func(ctx context.Context) error
	Close   func()
}

// OpenStorage opens the token store backend selected by cfg.Store.Backend.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	noop := func() {}
	alive := func(context.Context) error { return nil }

	switch cfg.Store.Backend {
	case config.StoreMemory:
		return &Storage{Store: repository.NewMemoryTokenStore(), Backend: config.StoreMemory, Ping: alive, Close: noop}, nil

	case config.StoreFile, "":
		logger.Debug("using file token store", zap.String("path", cfg.Store.FilePath))
		return &Storage{Store: repository.NewFileTokenStore(cfg.Store.FilePath), Backend: config.StoreFile, Ping: alive, Close: noop}, nil

	case config.StoreRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		return &Storage{
			Store:   repository.NewRedisTokenStore(rdb.Client, cfg.Store.KeyPrefix),
			Backend: config.StoreRedis,
			Ping:    rdb.Ping,
			Close:   rdb.Close,
		}, nil

	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return &Storage{
			Store:   repository.NewPostgresTokenStore(pg.PoolHandle()),
			Backend: config.StorePostgres,
			Ping:    pg.Ping,
			Close:   pg.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Store.Backend)
	}
}
