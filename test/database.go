package test

import (
	"path/filepath"
	"testing"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TmpFile returns the path to a unique file to be used in tests
func TmpFile(t *testing.T) string {
	dir := t.TempDir()
	return filepath.Join(dir, uuid.New().String())
}

// Connect opens a new database in a temporary file.
//
// The database is closed when the test finishes.
func Connect(t *testing.T) *gorm.DB {
	db, err := models.Connect(sqlite.Open(TmpFile(t)))
	require.Nil(t, err, "Database connection failed")

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// Disconnect closes the database. This enables testing the handling
// of database errors.
func Disconnect(t *testing.T, db *gorm.DB) {
	sqlDB, err := db.DB()
	require.Nil(t, err, "Failed to get database resource")
	require.Nil(t, sqlDB.Close())
}
