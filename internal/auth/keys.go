// ABOUTME: API key issuance, revocation, and listing
// ABOUTME: The plaintext token is returned once at issue time and never stored

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2389/promptmesh-gateway/internal/store"
)

// KeyService manages API keys on behalf of operators.
type KeyService struct {
	keys store.APIKeyStore
	now  func() time.Time
}

// NewKeyService creates a KeyService.
func NewKeyService(keys store.APIKeyStore) *KeyService {
	return &KeyService{keys: keys, now: time.Now}
}

// IssuedKey is a newly created key plus its one-time plaintext token.
type IssuedKey struct {
	Key   *store.APIKey
	Token string
}

// Issue generates and stores a new key for userID in orgID.
func (s *KeyService) Issue(ctx context.Context, userID, orgID, name string) (*IssuedKey, error) {
	if userID == "" || orgID == "" {
		return nil, fmt.Errorf("user and organization are required")
	}
	if name == "" {
		return nil, fmt.Errorf("key name is required")
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	key := &store.APIKey{
		ID:             uuid.New().String(),
		UserID:         userID,
		OrganizationID: orgID,
		Name:           name,
		KeyHash:        HashToken(token),
		KeyPrefix:      DisplayPrefix(token),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.keys.CreateAPIKey(ctx, key); err != nil {
		return nil, fmt.Errorf("storing api key: %w", err)
	}

	return &IssuedKey{Key: key, Token: token}, nil
}

// Revoke permanently disables a key.
func (s *KeyService) Revoke(ctx context.Context, keyID string) error {
	if err := s.keys.RevokeAPIKey(ctx, keyID, s.now().UTC()); err != nil {
		return fmt.Errorf("revoking api key %s: %w", keyID, err)
	}
	return nil
}

// List returns a user's active keys, newest first.
func (s *KeyService) List(ctx context.Context, userID string) ([]*store.APIKey, error) {
	return s.keys.ListAPIKeys(ctx, userID)
}
