package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/Carlos20473736/monetag-tracker/internal/infra/postgres"
	"github.com/Carlos20473736/monetag-tracker/internal/infra/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a migrated SQLite database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "monetag.db"))
	require.NoError(t, err)
	require.NoError(t, postgres.AutoMigrate(context.Background(), db, model.Models()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func ptr(s string) *string { return &s }
