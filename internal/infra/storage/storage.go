package storage

import (
	"context"
	"fmt"

	"github.com/Carlos20473736/monetag-tracker/config"
	"github.com/Carlos20473736/monetag-tracker/internal/infra/postgres"
	"github.com/Carlos20473736/monetag-tracker/internal/infra/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// Store is the relational backend selected by database.driver.
type Store struct {
	Driver string
	DB     *gorm.DB
	// Pool is only set for Postgres and serves the aggregate stats query.
	Pool *pgxpool.Pool
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: config.DriverSQLite, DB: db}, nil

	case config.DriverPostgres:
		db, err := postgres.NewGorm(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := postgres.Ping(ctx, db); err != nil {
			closeGorm(db)
			return nil, fmt.Errorf("postgres: ping: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			closeGorm(db)
			return nil, err
		}
		return &Store{Driver: config.DriverPostgres, DB: db, Pool: pool}, nil

	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Database.Driver)
	}
}

// Migrate creates or updates the tables for models.
func (s *Store) Migrate(ctx context.Context, models ...interface{}) error {
	return postgres.AutoMigrate(ctx, s.DB, models...)
}

// Ping reports whether the backend answers.
func (s *Store) Ping(ctx context.Context) error {
	if s.Pool != nil {
		return s.Pool.Ping(ctx)
	}
	return postgres.Ping(ctx, s.DB)
}

// Close releases every connection held by the store.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
	closeGorm(s.DB)
}

func closeGorm(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
