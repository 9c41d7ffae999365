package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestMemoryDatabasesAreIsolated(t *testing.T) {
	first := openTestDB(t)
	second := openTestDB(t)
	require.NoError(t, AutoMigrate(first))
	require.NoError(t, AutoMigrate(second))

	require.NoError(t, first.Create(&models.Role{Name: "Editor"}).Error)

	var count int64
	require.NoError(t, second.Model(&models.Role{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAutoMigrateAndSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrateAndSeed(db))
	require.NoError(t, AutoMigrateAndSeed(db))

	var role models.Role
	require.NoError(t, db.First(&role, "id = ?", AdminRoleID).Error)
	require.True(t, role.AdminAccess)

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	require.Error(t, AutoMigrateAndSeed(nil))
}

func TestOpenSQLiteFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "permissions.sqlite")
	db, err := Open(Config{Driver: "sqlite", Path: path})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	require.FileExists(t, path)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
