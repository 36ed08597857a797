package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalex7/e-plan/internal/config"
	"github.com/evalex7/e-plan/internal/db"
	"github.com/evalex7/e-plan/internal/storage"
)

func newSQLiteStore(t *testing.T) *storage.GormStore {
	t.Helper()
	cfg := &config.Config{
		Store: config.StoreConfig{
			Driver: config.StoreDriverSQLite,
			Path:   filepath.Join(t.TempDir(), "store.db"),
		},
	}
	database, err := db.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return storage.NewGormStore(database)
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) storage.Store{
		"memory": func(t *testing.T) storage.Store { return storage.NewMemoryStore() },
		"gorm":   func(t *testing.T) storage.Store { return newSQLiteStore(t) },
	}

	for name, factory := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			_, err := store.Get(ctx, "contracts")
			assert.ErrorIs(t, err, storage.ErrKeyNotFound)

			require.NoError(t, store.Set(ctx, "contracts", []byte(`[{"id":"c1"}]`)))
			value, err := store.Get(ctx, "contracts")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"c1"}]`, string(value))

			require.NoError(t, store.Set(ctx, "contracts", []byte(`[]`)))
			value, err = store.Get(ctx, "contracts")
			require.NoError(t, err)
			assert.Equal(t, "[]", string(value))

			require.NoError(t, store.SetMany(ctx, map[string][]byte{
				"tasks":  []byte(`[{"id":"t1"}]`),
				"kanban": []byte(`[]`),
			}))
			value, err = store.Get(ctx, "tasks")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"t1"}]`, string(value))

			require.NoError(t, store.Remove(ctx, "tasks"))
			_, err = store.Get(ctx, "tasks")
			assert.ErrorIs(t, err, storage.ErrKeyNotFound)

			// removing a missing key is not an error
			require.NoError(t, store.Remove(ctx, "tasks"))
		})
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	value := []byte(`[1]`)
	require.NoError(t, store.Set(ctx, "k", value))
	value[1] = '2'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(got))
	assert.ElementsMatch(t, []string{"k"}, store.Keys())
}
