// ABOUTME: Contract tests pinning the SQLite schema produced by migrations
// ABOUTME: Renaming or dropping a table, column, or index breaks these tests

package contract

import (
	"context"
	"database/sql"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/store"
)

// schemaContract lists the columns collaborator code reads and writes.
var schemaContract = map[string][]string{
	"organizations":        {"id", "name", "created_at", "updated_at"},
	"organization_members": {"id", "organization_id", "user_id", "role", "created_at"},
	"prompts": {
		"id", "organization_id", "name", "description",
		"creator_id", "created_at", "updated_at",
	},
	"prompt_variants": {
		"id", "prompt_id", "content", "notes",
		"is_default", "created_by", "created_at", "updated_at",
	},
	"prompt_arguments": {"id", "prompt_id", "name", "description", "required", "created_at"},
	"api_keys": {
		"id", "user_id", "organization_id", "name",
		"key_hash", "key_prefix", "created_at", "revoked_at", "last_used_at",
	},
}

// indexContract lists indexes that lookups and the one-default rule depend on.
var indexContract = []string{
	"idx_members_user",
	"idx_variants_prompt",
	"idx_variants_one_default",
	"idx_api_keys_user",
}

func migratedDB(t *testing.T) *sql.DB {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.DB()
}

// names runs query and collects the single text column it returns.
func names(t *testing.T, db *sql.DB, query string, args ...any) []string {
	t.Helper()

	rows, err := db.QueryContext(context.Background(), query, args...)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		out = append(out, n)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestSchemaColumns(t *testing.T) {
	db := migratedDB(t)

	for table, want := range schemaContract {
		t.Run(table, func(t *testing.T) {
			have := names(t, db, "SELECT name FROM pragma_table_info(?)", table)
			require.NotEmpty(t, have, "table %s missing", table)

			for _, col := range want {
				assert.Contains(t, have, col, "column %s.%s", table, col)
			}
			for _, col := range have {
				if !slices.Contains(want, col) {
					t.Logf("column %s.%s is not covered by the contract", table, col)
				}
			}
		})
	}
}

func TestSchemaTables(t *testing.T) {
	tables := names(t, migratedDB(t),
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")

	for table := range schemaContract {
		assert.Contains(t, tables, table)
	}
	assert.Contains(t, tables, "goose_db_version")
}

func TestSchemaIndexes(t *testing.T) {
	indexes := names(t, migratedDB(t), "SELECT name FROM sqlite_master WHERE type = 'index'")

	for _, idx := range indexContract {
		assert.Contains(t, indexes, idx)
	}
}
