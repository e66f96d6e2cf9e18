// ABOUTME: SQLite organization, member, and prompt write operations
// ABOUTME: Used by operator seeding commands; the gateway itself only reads

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateOrganization inserts a new organization.
func (s *SQLiteStore) CreateOrganization(ctx context.Context, org *Organization) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		org.ID, org.Name, formatTime(org.CreatedAt), formatTime(org.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting organization: %w", err)
	}
	return nil
}

// GetOrganization retrieves an organization by ID.
func (s *SQLiteStore) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM organizations WHERE id = ?`, id,
	).Scan(&org.ID, &org.Name, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying organization: %w", err)
	}

	if org.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if org.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &org, nil
}

// AddMember adds a user to an organization.
// Returns ErrDuplicate if the user is already a member.
func (s *SQLiteStore) AddMember(ctx context.Context, m *Member) error {
	if !m.Role.Valid() {
		return fmt.Errorf("invalid role %q", m.Role)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organization_members (id, organization_id, user_id, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.OrganizationID, m.UserID, string(m.Role), formatTime(m.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("organization %s: %w", m.OrganizationID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("inserting member: %w", err)
	}
	return nil
}

// GetMember returns a user's membership in an organization.
func (s *SQLiteStore) GetMember(ctx context.Context, orgID, userID string) (*Member, error) {
	var m Member
	var role, createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, organization_id, user_id, role, created_at
		 FROM organization_members WHERE organization_id = ? AND user_id = ?`,
		orgID, userID,
	).Scan(&m.ID, &m.OrganizationID, &m.UserID, &role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying member: %w", err)
	}

	m.Role = Role(role)
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &m, nil
}

// CreatePrompt inserts a prompt. Names are unique within an organization.
func (s *SQLiteStore) CreatePrompt(ctx context.Context, p *Prompt) error {
	query := `
		INSERT INTO prompts (id, organization_id, name, description, creator_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.OrganizationID,
		p.Name,
		nullString(p.Description),
		p.CreatorID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("organization %s: %w", p.OrganizationID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("inserting prompt: %w", err)
	}
	return nil
}

// CreatePromptVariant inserts a variant. A second default variant for the
// same prompt returns ErrDuplicate.
func (s *SQLiteStore) CreatePromptVariant(ctx context.Context, v *PromptVariant) error {
	query := `
		INSERT INTO prompt_variants (id, prompt_id, content, notes, is_default, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID,
		v.PromptID,
		v.Content,
		nullString(v.Notes),
		boolToInt(v.IsDefault),
		v.CreatedBy,
		formatTime(v.CreatedAt),
		formatTime(v.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("prompt %s: %w", v.PromptID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("inserting prompt variant: %w", err)
	}
	return nil
}

// CreatePromptArgument inserts an argument definition for a prompt.
func (s *SQLiteStore) CreatePromptArgument(ctx context.Context, a *PromptArgument) error {
	query := `
		INSERT INTO prompt_arguments (id, prompt_id, name, description, required, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.PromptID,
		a.Name,
		nullString(a.Description),
		boolToInt(a.Required),
		formatTime(a.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("prompt %s: %w", a.PromptID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("inserting prompt argument: %w", err)
	}
	return nil
}
