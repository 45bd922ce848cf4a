package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Carlos20473736/monetag-tracker/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormConfig is the GORM configuration shared by every storage driver.
// Timestamps are always written in UTC so range filters compare cleanly.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// NewGorm returns a gorm.DB configured for the application's Postgres instance.
// The database/sql pool honours the same limits as the pgx pool.
func NewGorm(cfg config.PostgresConfig) (*gorm.DB, error) {
	settings, err := parsePoolSettings(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(ConnString(cfg)), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("postgres: open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: retrieve sql db: %w", err)
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	if settings.maxConnLifetime > 0 {
		sqlDB.SetConnMaxLifetime(settings.maxConnLifetime)
	}
	if settings.maxConnIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(settings.maxConnIdleTime)
	}
	if settings.maxConns > 0 {
		sqlDB.SetMaxOpenConns(int(settings.maxConns))
	}
	if settings.minConns > 0 {
		sqlDB.SetMaxIdleConns(int(settings.minConns))
	}

	return db, nil
}

// AutoMigrate uses GORM to perform schema migrations for the provided models.
func AutoMigrate(ctx context.Context, db *gorm.DB, models ...interface{}) error {
	if db == nil || len(models) == 0 {
		return nil
	}

	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("postgres: auto migrate: %w", err)
	}

	return nil
}

// Ping verifies that the database behind db answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("postgres: no database configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres: retrieve sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
