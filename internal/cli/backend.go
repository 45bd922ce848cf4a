package cli

import (
	"context"
	"fmt"

	"github.com/Carlos20473736/monetag-tracker/config"
	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
	"github.com/Carlos20473736/monetag-tracker/internal/app/service"
	infraRedis "github.com/Carlos20473736/monetag-tracker/internal/infra/redis"
	"github.com/Carlos20473736/monetag-tracker/internal/infra/storage"
	"go.uber.org/zap"
)

// Backend is the slice of the application the CLI operates on.
type Backend struct {
	Migrate  func(ctx context.Context) error
	Sessions service.SessionService
	Events   service.EventService
	Stats    service.StatsService
	Close    func()
}

func openBackend(ctx context.Context, log *zap.Logger) (*Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Commands that change events clear the server's cached global stats.
	var cache repository.StatsCache
	closeRedis := func() {}
	if cfg.Redis.Enabled() {
		client, err := infraRedis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, stats cache left untouched", zap.Error(err))
		} else {
			cache = repository.NewRedisStatsCache(client, repository.DefaultStatsCacheTTL)
			closeRedis = func() { _ = client.Close() }
		}
	}

	b := newBackend(store, cache, log)
	b.Close = func() {
		closeRedis()
		store.Close()
	}
	return b, nil
}

func newBackend(store *storage.Store, cache repository.StatsCache, log *zap.Logger) *Backend {
	events := repository.NewAdEventRepository(store.DB)

	stats := repository.NewStatsRepository(store.DB)
	if store.Pool != nil {
		stats = repository.NewPgxStatsRepository(store.Pool)
	}

	return &Backend{
		Migrate: func(ctx context.Context) error {
			return store.Migrate(ctx, model.Models()...)
		},
		Sessions: service.NewSessionService(repository.NewAdSessionRepository(store.DB)),
		Events:   service.NewEventService(log, events, nil),
		Stats: service.NewStatsService(service.StatsDeps{
			Logger: log,
			Stats:  stats,
			Events: events,
			Cache:  cache,
		}),
		Close: store.Close,
	}
}
