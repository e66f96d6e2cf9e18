// ABOUTME: Shared fixtures for mcp tests
// ABOUTME: Seeds an in-memory store with two organizations and an API key each

package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/auth"
	"github.com/2389/promptmesh-gateway/internal/prompts"
	"github.com/2389/promptmesh-gateway/internal/store"
)

const (
	acmeToken   = "pm_acme_test_token"
	globexToken = "pm_globex_test_token"
)

var acme = auth.Principal{UserID: "user-acme", OrganizationID: "acme", KeyID: "key-acme"}

func seedStore(t *testing.T) *store.MockStore {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	s := store.NewMockStore()

	for _, id := range []string{"acme", "globex"} {
		require.NoError(t, s.CreateOrganization(ctx, &store.Organization{ID: id, Name: id, CreatedAt: now, UpdatedAt: now}))
	}

	add := func(id, org, name, desc, content string) {
		require.NoError(t, s.CreatePrompt(ctx, &store.Prompt{ID: id, OrganizationID: org, Name: name, Description: desc, CreatorID: "u", CreatedAt: now, UpdatedAt: now}))
		require.NoError(t, s.CreatePromptVariant(ctx, &store.PromptVariant{ID: id + "-v", PromptID: id, Content: content, IsDefault: true, CreatedBy: "u", CreatedAt: now, UpdatedAt: now}))
	}
	add("p-greet", "acme", "Greeting", "Say hello", "Hello, {name}!")
	add("p-bye", "acme", "Farewell", "Say goodbye", "Goodbye.")
	add("p-globex", "globex", "Secret", "Globex only", "classified")

	require.NoError(t, s.CreatePromptArgument(ctx, &store.PromptArgument{ID: "a-name", PromptID: "p-greet", Name: "name", Description: "Who to greet", Required: true, CreatedAt: now}))

	for _, k := range []struct{ id, user, org, token string }{
		{"key-acme", "user-acme", "acme", acmeToken},
		{"key-globex", "user-globex", "globex", globexToken},
	} {
		require.NoError(t, s.CreateAPIKey(ctx, &store.APIKey{
			ID: k.id, UserID: k.user, OrganizationID: k.org, Name: k.id,
			KeyHash: auth.HashToken(k.token), KeyPrefix: auth.DisplayPrefix(k.token), CreatedAt: now,
		}))
	}
	return s
}

func newTestDispatcher(t *testing.T, s store.PromptStore, obs Observer) *Dispatcher {
	t.Helper()
	return NewDispatcher(NewPromptRegistry(prompts.NewResolver(s), ServerInfo{}), nil, obs)
}

// call dispatches method with params marshalled from v.
func call(t *testing.T, d *Dispatcher, p auth.Principal, method string, v any) Response {
	t.Helper()
	req := Request{JSONRPC: "2.0", Method: method, ID: json.RawMessage(`1`)}
	if v != nil {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		req.Params = raw
	}
	return d.Dispatch(context.Background(), p, req)
}

// decodeResult re-marshals resp.Result into out.
func decodeResult(t *testing.T, resp Response, out any) {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
