// ABOUTME: Store interfaces and data types for promptmesh persistence
// ABOUTME: Defines organizations, members, API keys, prompts, variants, and arguments

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert collides with a uniqueness rule
var ErrDuplicate = errors.New("already exists")

// Organization is the root scope for all prompt data
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member links a user to an organization with a single role
type Member struct {
	ID             string
	OrganizationID string
	UserID         string
	Role           Role
	CreatedAt      time.Time
}

// APIKey is a stored credential. Only the SHA-256 hash of the secret is kept.
type APIKey struct {
	ID             string
	UserID         string
	OrganizationID string
	Name           string
	KeyHash        string
	KeyPrefix      string // first characters of the token, for display
	CreatedAt      time.Time
	RevokedAt      *time.Time
	LastUsedAt     *time.Time
}

// Usable reports whether the key may still authenticate requests.
func (k *APIKey) Usable() bool {
	return k.RevokedAt == nil
}

// Prompt is a named prompt template owned by one organization
type Prompt struct {
	ID             string
	OrganizationID string
	Name           string
	Description    string // empty when unset
	CreatorID      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PromptVariant is one version of a prompt's content
type PromptVariant struct {
	ID        string
	PromptID  string
	Content   string
	Notes     string
	IsDefault bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PromptArgument is a named parameter a prompt accepts
type PromptArgument struct {
	ID          string
	PromptID    string
	Name        string
	Description string
	Required    bool
	CreatedAt   time.Time
}

// PromptWithContent is a prompt joined to its default variant
type PromptWithContent struct {
	Prompt
	VariantID string
	Content   string
}

// APIKeyStore is the credential side of the store.
type APIKeyStore interface {
	// GetActiveAPIKeyByHash returns the non-revoked key with the given hash.
	// Unknown and revoked keys both return ErrNotFound.
	GetActiveAPIKeyByHash(ctx context.Context, keyHash string) (*APIKey, error)

	// TouchAPIKey sets last_used_at on the key with the given hash.
	TouchAPIKey(ctx context.Context, keyHash string, at time.Time) error

	CreateAPIKey(ctx context.Context, key *APIKey) error

	// RevokeAPIKey marks an active key revoked. Revocation is terminal:
	// revoking an unknown or already revoked key returns ErrNotFound.
	RevokeAPIKey(ctx context.Context, id string, at time.Time) error

	// ListAPIKeys returns a user's active keys, newest first.
	ListAPIKeys(ctx context.Context, userID string) ([]*APIKey, error)
}

// PromptStore holds the organization-scoped prompt reads.
// Every method only returns prompts that have a default variant.
type PromptStore interface {
	ListPromptsWithDefault(ctx context.Context, orgID string) ([]*PromptWithContent, error)
	GetPromptWithDefaultByName(ctx context.Context, orgID, name string) (*PromptWithContent, error)

	// SearchPromptsWithDefault matches query as a case-insensitive substring
	// of the prompt name or description.
	SearchPromptsWithDefault(ctx context.Context, orgID, query string) ([]*PromptWithContent, error)

	// ListPromptArguments returns arguments ordered by name ascending.
	ListPromptArguments(ctx context.Context, promptID string) ([]*PromptArgument, error)
}

// DirectoryStore holds the writes used by operators to seed data.
type DirectoryStore interface {
	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id string) (*Organization, error)
	AddMember(ctx context.Context, member *Member) error
	GetMember(ctx context.Context, orgID, userID string) (*Member, error)
	CreatePrompt(ctx context.Context, prompt *Prompt) error
	CreatePromptVariant(ctx context.Context, variant *PromptVariant) error
	CreatePromptArgument(ctx context.Context, arg *PromptArgument) error
}

// Store is the full collaborator store
type Store interface {
	APIKeyStore
	PromptStore
	DirectoryStore

	// Ping checks the backing database is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
