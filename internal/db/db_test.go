package db

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalex7/e-plan/internal/config"
)

func TestNewSQLiteRunsMigrations(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{
			Driver: config.StoreDriverSQLite,
			Path:   filepath.Join(t.TempDir(), "nested", "maintenance.db"),
		},
	}

	database, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, database.Migrator().HasTable("kv_store"))

	// migrations are idempotent
	require.NoError(t, runMigrations(database))
}

func TestNewRejectsMemoryDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}}
	_, err := New(cfg, zerolog.Nop())
	assert.Error(t, err)
}
