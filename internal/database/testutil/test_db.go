package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/database"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/models"
)

// TestDBOption customises the behaviour of MustOpenTestDB.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	autoMigrate bool
	seedData    bool
}

// WithAutoMigrate enables automatic schema migration after opening the test database.
func WithAutoMigrate() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
	}
}

// WithSeedData ensures migrations are applied and the administrator role inserted.
func WithSeedData() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.autoMigrate = true
		cfg.seedData = true
	}
}

// MustOpenTestDB opens an isolated in-memory SQLite database, closed via t.Cleanup.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := database.Open(database.Config{Driver: "sqlite"})
	require.NoError(t, err)

	if cfg.seedData {
		require.NoError(t, database.AutoMigrateAndSeed(db))
	} else if cfg.autoMigrate {
		require.NoError(t, database.AutoMigrate(db))
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// MustCreateUser inserts a user bound to roleID (empty for none) and returns it.
func MustCreateUser(t *testing.T, db *gorm.DB, email, roleID string) *models.User {
	t.Helper()

	user := &models.User{Email: email}
	if roleID != "" {
		user.RoleID = &roleID
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// MustGrant inserts a permission row. Nil fields or items are stored as NULL.
func MustGrant(t *testing.T, db *gorm.DB, roleID, collection, action string, fields, items []string) *models.Permission {
	t.Helper()

	perm := &models.Permission{
		RoleID:     roleID,
		Collection: collection,
		Action:     action,
		Fields:     models.EncodeStrings(fields),
		Items:      models.EncodeStrings(items),
	}
	require.NoError(t, db.Create(perm).Error)
	return perm
}
