package sqlite

import (
	"fmt"

	"github.com/Carlos20473736/monetag-tracker/internal/infra/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns a gorm.DB backed by a SQLite file at path. It shares the
// Postgres GORM configuration so both drivers behave the same way.
func Open(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), postgres.GormConfig())
	if err != nil {
		return nil, fmt.Errorf("sqlite: open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite: retrieve sql db: %w", err)
	}

	// SQLite only supports one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return db, nil
}
