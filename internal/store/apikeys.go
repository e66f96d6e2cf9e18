// ABOUTME: SQLite API key operations
// ABOUTME: Hash lookup with revocation filter, last-used touch, issue, revoke, and list

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const apiKeyColumns = `id, user_id, organization_id, name, key_hash, key_prefix, created_at, revoked_at, last_used_at`

// GetActiveAPIKeyByHash returns the non-revoked key matching keyHash.
func (s *SQLiteStore) GetActiveAPIKeyByHash(ctx context.Context, keyHash string) (*APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = ? AND revoked_at IS NULL`

	key, err := scanAPIKey(s.db.QueryRowContext(ctx, query, keyHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying api key: %w", err)
	}
	return key, nil
}

// TouchAPIKey records at as the key's last use.
func (s *SQLiteStore) TouchAPIKey(ctx context.Context, keyHash string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = ? WHERE key_hash = ?`,
		formatTime(at), keyHash,
	)
	if err != nil {
		return fmt.Errorf("updating last used: %w", err)
	}
	return nil
}

// CreateAPIKey stores a new key. The plaintext token is never passed here.
func (s *SQLiteStore) CreateAPIKey(ctx context.Context, key *APIKey) error {
	query := `
		INSERT INTO api_keys (id, user_id, organization_id, name, key_hash, key_prefix, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		key.ID,
		key.UserID,
		key.OrganizationID,
		key.Name,
		key.KeyHash,
		key.KeyPrefix,
		formatTime(key.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting api key: %w", err)
	}
	return nil
}

// RevokeAPIKey marks the key revoked. Already revoked keys are left untouched
// and report ErrNotFound.
func (s *SQLiteStore) RevokeAPIKey(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`,
		formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("revoking api key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAPIKeys returns the user's active keys, newest first.
func (s *SQLiteStore) ListAPIKeys(ctx context.Context, userID string) ([]*APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
		WHERE user_id = ? AND revoked_at IS NULL
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying api keys: %w", err)
	}
	defer rows.Close()

	var keys []*APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning api key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating api keys: %w", err)
	}
	return keys, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAPIKey(row rowScanner) (*APIKey, error) {
	var key APIKey
	var createdAt string
	var revokedAt, lastUsedAt sql.NullString

	if err := row.Scan(
		&key.ID,
		&key.UserID,
		&key.OrganizationID,
		&key.Name,
		&key.KeyHash,
		&key.KeyPrefix,
		&createdAt,
		&revokedAt,
		&lastUsedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if key.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if key.RevokedAt, err = parseNullTime(revokedAt); err != nil {
		return nil, fmt.Errorf("parsing revoked_at: %w", err)
	}
	if key.LastUsedAt, err = parseNullTime(lastUsedAt); err != nil {
		return nil, fmt.Errorf("parsing last_used_at: %w", err)
	}
	return &key, nil
}
