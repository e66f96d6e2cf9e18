// ABOUTME: Maps PostgreSQL error codes onto store sentinel errors
// ABOUTME: Unique and foreign key violations become ErrDuplicate and ErrNotFound

package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/2389/promptmesh-gateway/internal/store"
)

// mapError maps PostgreSQL errors onto store sentinels. Errors that are not
// from the server are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, store.ErrDuplicate)

	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%s: %w", pgErr.Detail, store.ErrNotFound)

	case pgerrcode.CheckViolation:
		return fmt.Errorf("check constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)

	default:
		return fmt.Errorf("postgres error [%s]: %s: %w", pgErr.Code, pgErr.Message, err)
	}
}
