// ABOUTME: PostgreSQL implementation of store.Store on a pgx connection pool
// ABOUTME: Same contract as the SQLite store; search uses ILIKE

package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/2389/promptmesh-gateway/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements store.Store using PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to PostgreSQL and applies pending migrations.
func New(ctx context.Context, cfg *PoolConfig) (*Store, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Store{
		pool:   pool,
		logger: slog.Default().With("component", "store", "driver", "postgres"),
	}

	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s.logger.Info("postgres store initialized")
	return s, nil
}

// NewWithPool wraps an existing pool without running migrations.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		logger: slog.Default().With("component", "store", "driver", "postgres"),
	}
}

// Migrate applies pending goose migrations through a database/sql view of the pool.
func (s *Store) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Debug("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// Pool exposes the underlying pool, e.g. for pool statistics.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const apiKeyColumns = `id, user_id, organization_id, name, key_hash, key_prefix, created_at, revoked_at, last_used_at`

func (s *Store) GetActiveAPIKeyByHash(ctx context.Context, keyHash string) (*store.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = $1 AND revoked_at IS NULL`

	key, err := scanAPIKey(s.pool.QueryRow(ctx, query, keyHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying api key: %w", mapError(err))
	}
	return key, nil
}

func (s *Store) TouchAPIKey(ctx context.Context, keyHash string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = $1 WHERE key_hash = $2`, at.UTC(), keyHash)
	if err != nil {
		return fmt.Errorf("updating last used: %w", mapError(err))
	}
	return nil
}

func (s *Store) CreateAPIKey(ctx context.Context, key *store.APIKey) error {
	query := `
		INSERT INTO api_keys (id, user_id, organization_id, name, key_hash, key_prefix, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		key.ID,
		key.UserID,
		key.OrganizationID,
		key.Name,
		key.KeyHash,
		key.KeyPrefix,
		key.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting api key: %w", mapError(err))
	}
	return nil
}

func (s *Store) RevokeAPIKey(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("revoking api key: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListAPIKeys(ctx context.Context, userID string) ([]*store.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys
		WHERE user_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying api keys: %w", mapError(err))
	}
	defer rows.Close()

	var keys []*store.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning api key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating api keys: %w", mapError(err))
	}
	return keys, nil
}

func scanAPIKey(row pgx.Row) (*store.APIKey, error) {
	var key store.APIKey
	err := row.Scan(
		&key.ID,
		&key.UserID,
		&key.OrganizationID,
		&key.Name,
		&key.KeyHash,
		&key.KeyPrefix,
		&key.CreatedAt,
		&key.RevokedAt,
		&key.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

const promptWithDefaultSelect = `
	SELECT p.id, p.organization_id, p.name, p.description, p.creator_id,
	       p.created_at, p.updated_at, v.id, v.content
	FROM prompts p
	JOIN prompt_variants v ON v.prompt_id = p.id AND v.is_default
`

func (s *Store) ListPromptsWithDefault(ctx context.Context, orgID string) ([]*store.PromptWithContent, error) {
	return s.queryPrompts(ctx, promptWithDefaultSelect+` WHERE p.organization_id = $1 ORDER BY p.name COLLATE "C"`, orgID)
}

func (s *Store) GetPromptWithDefaultByName(ctx context.Context, orgID, name string) (*store.PromptWithContent, error) {
	query := promptWithDefaultSelect + ` WHERE p.organization_id = $1 AND p.name = $2`

	p, err := scanPrompt(s.pool.QueryRow(ctx, query, orgID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying prompt: %w", mapError(err))
	}
	return p, nil
}

func (s *Store) SearchPromptsWithDefault(ctx context.Context, orgID, query string) ([]*store.PromptWithContent, error) {
	pattern := "%" + store.EscapeLike(query) + "%"
	q := promptWithDefaultSelect + `
		WHERE p.organization_id = $1
		  AND (p.name ILIKE $2 ESCAPE '\' OR p.description ILIKE $2 ESCAPE '\')
		ORDER BY p.name COLLATE "C"`
	return s.queryPrompts(ctx, q, orgID, pattern)
}

func (s *Store) ListPromptArguments(ctx context.Context, promptID string) ([]*store.PromptArgument, error) {
	query := `
		SELECT id, prompt_id, name, description, required, created_at
		FROM prompt_arguments
		WHERE prompt_id = $1
		ORDER BY name COLLATE "C" ASC
	`
	rows, err := s.pool.Query(ctx, query, promptID)
	if err != nil {
		return nil, fmt.Errorf("querying prompt arguments: %w", mapError(err))
	}
	defer rows.Close()

	var args []*store.PromptArgument
	for rows.Next() {
		var a store.PromptArgument
		var description *string
		if err := rows.Scan(&a.ID, &a.PromptID, &a.Name, &description, &a.Required, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning prompt argument: %w", err)
		}
		if description != nil {
			a.Description = *description
		}
		args = append(args, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prompt arguments: %w", mapError(err))
	}
	return args, nil
}

func (s *Store) queryPrompts(ctx context.Context, query string, args ...any) ([]*store.PromptWithContent, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying prompts: %w", mapError(err))
	}
	defer rows.Close()

	prompts := []*store.PromptWithContent{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prompts: %w", mapError(err))
	}
	return prompts, nil
}

func scanPrompt(row pgx.Row) (*store.PromptWithContent, error) {
	var p store.PromptWithContent
	var description *string
	err := row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.Name,
		&description,
		&p.CreatorID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.VariantID,
		&p.Content,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		p.Description = *description
	}
	return &p, nil
}

func (s *Store) CreateOrganization(ctx context.Context, org *store.Organization) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO organizations (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		org.ID, org.Name, org.CreatedAt.UTC(), org.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting organization: %w", mapError(err))
	}
	return nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (*store.Organization, error) {
	var org store.Organization
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM organizations WHERE id = $1`, id,
	).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying organization: %w", mapError(err))
	}
	return &org, nil
}

func (s *Store) AddMember(ctx context.Context, m *store.Member) error {
	if !m.Role.Valid() {
		return fmt.Errorf("invalid role %q", m.Role)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO organization_members (id, organization_id, user_id, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.OrganizationID, m.UserID, string(m.Role), m.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting member: %w", mapError(err))
	}
	return nil
}

func (s *Store) GetMember(ctx context.Context, orgID, userID string) (*store.Member, error) {
	var m store.Member
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT id, organization_id, user_id, role, created_at
		 FROM organization_members WHERE organization_id = $1 AND user_id = $2`,
		orgID, userID,
	).Scan(&m.ID, &m.OrganizationID, &m.UserID, &role, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying member: %w", mapError(err))
	}
	m.Role = store.Role(role)
	return &m, nil
}

func (s *Store) CreatePrompt(ctx context.Context, p *store.Prompt) error {
	query := `
		INSERT INTO prompts (id, organization_id, name, description, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		p.ID,
		p.OrganizationID,
		p.Name,
		nullString(p.Description),
		p.CreatorID,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting prompt: %w", mapError(err))
	}
	return nil
}

func (s *Store) CreatePromptVariant(ctx context.Context, v *store.PromptVariant) error {
	query := `
		INSERT INTO prompt_variants (id, prompt_id, content, notes, is_default, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.pool.Exec(ctx, query,
		v.ID,
		v.PromptID,
		v.Content,
		nullString(v.Notes),
		v.IsDefault,
		v.CreatedBy,
		v.CreatedAt.UTC(),
		v.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting prompt variant: %w", mapError(err))
	}
	return nil
}

func (s *Store) CreatePromptArgument(ctx context.Context, a *store.PromptArgument) error {
	query := `
		INSERT INTO prompt_arguments (id, prompt_id, name, description, required, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, query,
		a.ID,
		a.PromptID,
		a.Name,
		nullString(a.Description),
		a.Required,
		a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting prompt argument: %w", mapError(err))
	}
	return nil
}

// nullString returns nil for empty strings so they are stored as NULL
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ store.Store = (*Store)(nil)
