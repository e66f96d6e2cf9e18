// ABOUTME: Tests for PostgreSQL error mapping
// ABOUTME: Verifies sentinel errors survive wrapping

package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/2389/promptmesh-gateway/internal/store"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, mapError(plain))

	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "prompts_org_name_key"}
	assert.ErrorIs(t, mapError(unique), store.ErrDuplicate)

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Detail: "Key (organization_id) is not present"}
	assert.ErrorIs(t, mapError(fk), store.ErrNotFound)

	other := &pgconn.PgError{Code: pgerrcode.DiskFull, Message: "disk full"}
	mapped := mapError(other)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(mapped, &pgErr))
	assert.NotErrorIs(t, mapped, store.ErrNotFound)
}
