package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carlos20473736/monetag-tracker/config"
	appmodel "github.com/Carlos20473736/monetag-tracker/internal/app/model"
	apprepository "github.com/Carlos20473736/monetag-tracker/internal/app/repository"
	appserver "github.com/Carlos20473736/monetag-tracker/internal/app/server"
	appservice "github.com/Carlos20473736/monetag-tracker/internal/app/service"
	"github.com/Carlos20473736/monetag-tracker/internal/http/handler"
	"github.com/Carlos20473736/monetag-tracker/internal/infra/logger"
	infraNATS "github.com/Carlos20473736/monetag-tracker/internal/infra/nats"
	infraPrometheus "github.com/Carlos20473736/monetag-tracker/internal/infra/prometheus"
	infraRedis "github.com/Carlos20473736/monetag-tracker/internal/infra/redis"
	"github.com/Carlos20473736/monetag-tracker/internal/infra/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Watch(func(next *config.Config) {
		if next.App.LogLevel == "" {
			return
		}
		if err := logger.SetLevel(next.App.LogLevel); err != nil {
			log.Warn("Ignoring invalid log level from reloaded config", zap.Error(err))
			return
		}
		log.Info("Log level updated from config", zap.String("level", next.App.LogLevel))
	}, func(err error) {
		log.Error("Failed to reload config", zap.Error(err))
	})
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.App.LogLevel != "" {
		if err := logger.SetLevel(cfg.App.LogLevel); err != nil {
			log.Warn("Ignoring invalid log level", zap.Error(err))
		}
	}

	log.Info("Configuration loaded successfully",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Bool("admin_token_set", cfg.App.AdminToken != ""),
	)

	// Without a store the service keeps serving: reads are empty and writes fail.
	var (
		gormDB   *gorm.DB
		statsRep apprepository.StatsRepository
		ping     handler.Pinger
	)
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Error("Storage unavailable, running in degraded mode", zap.Error(err))
		statsRep = apprepository.NewStatsRepository(nil)
	} else {
		defer store.Close()
		if err := store.Migrate(ctx, appmodel.Models()...); err != nil {
			log.Fatal("Failed to run database migrations", zap.Error(err))
		}
		log.Info("Connected to storage successfully", zap.String("driver", store.Driver))

		gormDB = store.DB
		ping = store.Ping
		if store.Pool != nil {
			statsRep = apprepository.NewPgxStatsRepository(store.Pool)
		} else {
			statsRep = apprepository.NewStatsRepository(store.DB)
		}
	}

	var (
		redisClient *redis.Client
		statsCache  apprepository.StatsCache
	)
	if cfg.Redis.Enabled() {
		redisClient, err = infraRedis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, rate limiting and stats cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			statsCache = apprepository.NewRedisStatsCache(redisClient, apprepository.DefaultStatsCacheTTL)
			log.Info("Connected to Redis successfully")
		}
	}

	eventRepo := apprepository.NewAdEventRepository(gormDB)
	sessionRepo := apprepository.NewAdSessionRepository(gormDB)
	zoneRepo := apprepository.NewAdZoneRepository(gormDB)

	statsService := appservice.NewStatsService(appservice.StatsDeps{
		Logger: log,
		Stats:  statsRep,
		Events: eventRepo,
		Cache:  statsCache,
	})

	var notifier appservice.EventNotifier
	if cfg.NATS.Enabled() {
		natsConn, js, err := infraNATS.Connect(cfg.NATS, log)
		if err != nil {
			log.Warn("NATS unavailable, event stream disabled", zap.Error(err))
		} else {
			defer natsConn.Drain()
			log.Info("Connected to NATS successfully")

			err := infraNATS.EnsureStream(js, infraNATS.StreamSpec{
				Name:       appmodel.AdEventStreamName,
				Subjects:   []string{appmodel.AdEventStreamSubject},
				MaxBytes:   appmodel.AdEventStreamMaxBytes,
				Duplicates: appmodel.AdEventStreamDuplicates,
			})
			if err != nil {
				log.Error("Failed to prepare event stream, publishing disabled", zap.Error(err))
			} else {
				notifier = appservice.NewEventPublisher(js)
				invalidator := appservice.NewStatsCacheInvalidator(js, log, statsService)
				if err := invalidator.Start(ctx); err != nil {
					log.Error("Failed to start stats cache invalidator", zap.Error(err))
				}
			}
		}
	}

	// Other instances learn about new events from the stream; this one
	// refreshes its own view directly.
	notifier = appservice.NewStatsRefreshingNotifier(statsService, notifier)

	sessionService := appservice.NewSessionService(sessionRepo)
	eventService := appservice.NewEventService(log, eventRepo, notifier)
	zoneService := appservice.NewZoneService(zoneRepo)
	reconciler := appservice.NewPostbackReconciler(appservice.ReconcilerDeps{
		Logger:   log,
		Events:   eventRepo,
		Sessions: sessionService,
		Notifier: notifier,
	})

	if cfg.App.SessionCleanupInterval > 0 {
		cleaner := appservice.NewSessionCleaner(log, sessionService, cfg.App.SessionCleanupInterval)
		cleaner.Start()
		defer cleaner.Stop()
	}

	if !cfg.App.IsDevelopment() {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	server := appserver.New(appserver.Dependencies{
		Logger:     log,
		App:        cfg.App,
		RateLimit:  cfg.RateLimit,
		Redis:      redisClient,
		Reconciler: reconciler,
		Sessions:   sessionService,
		Events:     eventService,
		Zones:      zoneService,
		Stats:      statsService,
		Ping:       ping,
	})

	go func() {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	if err := server.Listen(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
