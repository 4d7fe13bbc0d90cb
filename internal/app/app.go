// Package app assembles the store, workspace and service from configuration.
// The HTTP server and the CLI share it.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nurpe/aterrozero-consultancy/internal/config"
	"github.com/nurpe/aterrozero-consultancy/internal/db"
	"github.com/nurpe/aterrozero-consultancy/internal/excel"
	"github.com/nurpe/aterrozero-consultancy/internal/pdf"
	"github.com/nurpe/aterrozero-consultancy/internal/repository"
	"github.com/nurpe/aterrozero-consultancy/internal/service"
	"github.com/nurpe/aterrozero-consultancy/internal/store"
)

type App struct {
	Store   store.Store
	Service *service.ConsultancyService
}

// New opens the configured store and loads the workspace. Corrupt persisted
// data is returned as an error; callers treat it as fatal.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	repo, err := repository.Open(ctx, st, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	svc := service.NewConsultancyService(repo, pdf.NewGenerator(), excel.NewGenerator(), cfg, log)
	return &App{Store: st, Service: svc}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// OpenStore builds the backend named by cfg.Store.Driver. Remote backends sit
// behind a circuit breaker; every backend gets the key prefix.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	var st store.Store
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on exit")
		st = store.NewMemoryStore()
	case config.StoreDriverRedis:
		rs := store.NewRedisStore(store.NewRedisClient(store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		st = store.NewBreakerStore(rs, "redis")
	case config.StoreDriverPostgres, config.StoreDriverSQLite:
		database, err := db.New(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		st = store.NewBreakerStore(store.NewSQLStore(database), cfg.Store.Driver)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	log.Info().Str("driver", cfg.Store.Driver).Str("key_prefix", cfg.Store.KeyPrefix).Msg("store ready")
	return store.WithPrefix(st, cfg.Store.KeyPrefix), nil
}
