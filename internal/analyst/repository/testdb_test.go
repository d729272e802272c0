package repository

import (
	"testing"

	"dealflow-analyst/internal/entity"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB prepares an in-memory SQLite database for testing. The pool is
// capped at one connection because every :memory: connection is a separate
// database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entity.Company{}, &entity.RawDocument{}, &entity.AnalystNote{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}
