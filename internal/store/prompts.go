// ABOUTME: SQLite prompt read operations
// ABOUTME: Organization-scoped list, name lookup, and search joined to the default variant

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const promptWithDefaultSelect = `
	SELECT p.id, p.organization_id, p.name, p.description, p.creator_id,
	       p.created_at, p.updated_at, v.id, v.content
	FROM prompts p
	JOIN prompt_variants v ON v.prompt_id = p.id AND v.is_default = 1
`

// ListPromptsWithDefault returns the organization's prompts that have a
// default variant, ordered by name.
func (s *SQLiteStore) ListPromptsWithDefault(ctx context.Context, orgID string) ([]*PromptWithContent, error) {
	query := promptWithDefaultSelect + ` WHERE p.organization_id = ? ORDER BY p.name`
	return s.queryPromptsWithDefault(ctx, query, orgID)
}

// GetPromptWithDefaultByName looks up a single prompt by exact name.
// Returns ErrNotFound if it doesn't exist or has no default variant.
func (s *SQLiteStore) GetPromptWithDefaultByName(ctx context.Context, orgID, name string) (*PromptWithContent, error) {
	query := promptWithDefaultSelect + ` WHERE p.organization_id = ? AND p.name = ?`

	p, err := scanPromptWithContent(s.db.QueryRowContext(ctx, query, orgID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying prompt: %w", err)
	}
	return p, nil
}

// SearchPromptsWithDefault matches query against name or description,
// folding case on both sides with Unicode rules.
func (s *SQLiteStore) SearchPromptsWithDefault(ctx context.Context, orgID, query string) ([]*PromptWithContent, error) {
	pattern := "%" + EscapeLike(strings.ToLower(query)) + "%"
	q := promptWithDefaultSelect + `
		WHERE p.organization_id = ?
		  AND (` + foldFunc + `(p.name) LIKE ? ESCAPE '\'
		       OR ` + foldFunc + `(p.description) LIKE ? ESCAPE '\')
		ORDER BY p.name`
	return s.queryPromptsWithDefault(ctx, q, orgID, pattern, pattern)
}

// ListPromptArguments returns a prompt's arguments ordered by name.
func (s *SQLiteStore) ListPromptArguments(ctx context.Context, promptID string) ([]*PromptArgument, error) {
	query := `
		SELECT id, prompt_id, name, description, required, created_at
		FROM prompt_arguments
		WHERE prompt_id = ?
		ORDER BY name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, promptID)
	if err != nil {
		return nil, fmt.Errorf("querying prompt arguments: %w", err)
	}
	defer rows.Close()

	var args []*PromptArgument
	for rows.Next() {
		var arg PromptArgument
		var description sql.NullString
		var required int
		var createdAt string
		if err := rows.Scan(&arg.ID, &arg.PromptID, &arg.Name, &description, &required, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning prompt argument: %w", err)
		}
		arg.Description = description.String
		arg.Required = required != 0
		if arg.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		args = append(args, &arg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prompt arguments: %w", err)
	}
	return args, nil
}

func (s *SQLiteStore) queryPromptsWithDefault(ctx context.Context, query string, args ...any) ([]*PromptWithContent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying prompts: %w", err)
	}
	defer rows.Close()

	prompts := []*PromptWithContent{}
	for rows.Next() {
		p, err := scanPromptWithContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prompts: %w", err)
	}
	return prompts, nil
}

func scanPromptWithContent(row rowScanner) (*PromptWithContent, error) {
	var p PromptWithContent
	var description sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.Name,
		&description,
		&p.CreatorID,
		&createdAt,
		&updatedAt,
		&p.VariantID,
		&p.Content,
	); err != nil {
		return nil, err
	}

	p.Description = description.String

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
