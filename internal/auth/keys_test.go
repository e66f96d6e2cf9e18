// ABOUTME: Tests for API key issuance and revocation
// ABOUTME: Issued tokens must authenticate until revoked

package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/store"
)

func TestKeyService_IssueAuthenticateRevoke(t *testing.T) {
	ctx := context.Background()
	s := store.NewMockStore()
	keys := NewKeyService(s)
	v := newTestVerifier(t, s, nil)

	issued, err := keys.Issue(ctx, "user-1", "org-1", "laptop")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(issued.Token, TokenPrefix))
	assert.Equal(t, HashToken(issued.Token), issued.Key.KeyHash)
	assert.Equal(t, issued.Token[:8], issued.Key.KeyPrefix)
	assert.NotContains(t, issued.Key.KeyHash, issued.Token)

	p, err := v.Authenticate(ctx, "Bearer "+issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "org-1", p.OrganizationID)
	assert.Equal(t, issued.Key.ID, p.KeyID)

	listed, err := keys.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "laptop", listed[0].Name)

	require.NoError(t, keys.Revoke(ctx, issued.Key.ID))

	_, err = v.Authenticate(ctx, "Bearer "+issued.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	err = keys.Revoke(ctx, issued.Key.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	listed, err = keys.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestKeyService_IssueValidation(t *testing.T) {
	keys := NewKeyService(store.NewMockStore())
	ctx := context.Background()

	_, err := keys.Issue(ctx, "", "org-1", "n")
	assert.Error(t, err)
	_, err = keys.Issue(ctx, "user-1", "", "n")
	assert.Error(t, err)
	_, err = keys.Issue(ctx, "user-1", "org-1", "")
	assert.Error(t, err)
}
