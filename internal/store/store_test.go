// ABOUTME: Runs the shared Store behavior suite against SQLite and the mock
// ABOUTME: Postgres runs the same suite from its own package

package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/store"
	"github.com/2389/promptmesh-gateway/internal/store/storetest"
)

func TestSQLiteStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestMockStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewMockStore()
	})
}
