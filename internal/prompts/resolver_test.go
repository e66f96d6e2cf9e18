// ABOUTME: Tests for prompt resolution and search summaries
// ABOUTME: Uses the in-memory store seeded per test

package prompts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/store"
)

func seed(t *testing.T) *store.MockStore {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	s := store.NewMockStore()

	require.NoError(t, s.CreateOrganization(ctx, &store.Organization{ID: "acme", Name: "Acme", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, s.CreateOrganization(ctx, &store.Organization{ID: "globex", Name: "Globex", CreatedAt: now, UpdatedAt: now}))

	add := func(id, org, name, desc, content string, isDefault bool) {
		require.NoError(t, s.CreatePrompt(ctx, &store.Prompt{ID: id, OrganizationID: org, Name: name, Description: desc, CreatorID: "u1", CreatedAt: now, UpdatedAt: now}))
		require.NoError(t, s.CreatePromptVariant(ctx, &store.PromptVariant{ID: id + "-v", PromptID: id, Content: content, IsDefault: isDefault, CreatedBy: "u1", CreatedAt: now, UpdatedAt: now}))
	}
	add("p1", "acme", "Greeting", "Say hello", "Hello, {name}!", true)
	add("p2", "acme", "Farewell", "", "Goodbye.", true)
	add("p3", "acme", "Draft", "unfinished", "wip", false)
	add("p4", "globex", "Greeting", "Globex hello", "Hi from Globex", true)

	require.NoError(t, s.CreatePromptArgument(ctx, &store.PromptArgument{ID: "a1", PromptID: "p1", Name: "name", Description: "who to greet", Required: true, CreatedAt: now}))
	require.NoError(t, s.CreatePromptArgument(ctx, &store.PromptArgument{ID: "a2", PromptID: "p1", Name: "language", CreatedAt: now}))
	return s
}

func TestResolver_List(t *testing.T) {
	r := NewResolver(seed(t))

	list, err := r.List(context.Background(), "acme")
	require.NoError(t, err)

	var names []string
	for _, p := range list {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"Greeting", "Farewell"}, names)
}

func TestResolver_Get(t *testing.T) {
	r := NewResolver(seed(t))

	got, err := r.Get(context.Background(), "acme", "Greeting")
	require.NoError(t, err)
	assert.Equal(t, "Hello, {name}!", got.Content)
	assert.Equal(t, "Say hello", got.Description)
	require.Len(t, got.Arguments, 2)
	assert.Equal(t, "language", got.Arguments[0].Name)
	assert.Equal(t, "name", got.Arguments[1].Name)
	assert.True(t, got.Arguments[1].Required)
}

func TestResolver_Get_OrganizationScoped(t *testing.T) {
	r := NewResolver(seed(t))

	got, err := r.Get(context.Background(), "globex", "Greeting")
	require.NoError(t, err)
	assert.Equal(t, "Hi from Globex", got.Content)
	assert.Empty(t, got.Arguments)
	assert.NotNil(t, got.Arguments)
}

func TestResolver_Get_NotFound(t *testing.T) {
	r := NewResolver(seed(t))
	ctx := context.Background()

	_, err := r.Get(ctx, "acme", "Missing")
	assert.ErrorIs(t, err, ErrPromptNotFound)

	_, err = r.Get(ctx, "acme", "Draft")
	assert.ErrorIs(t, err, ErrPromptNotFound, "no default variant")

	_, err = r.Get(ctx, "globex", "Farewell")
	assert.ErrorIs(t, err, ErrPromptNotFound, "other organization's prompt")
}

func TestResolver_Get_StoreError(t *testing.T) {
	s := seed(t)
	boom := errors.New("db down")
	s.SetError("ListPromptArguments", boom)

	_, err := NewResolver(s).Get(context.Background(), "acme", "Greeting")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPromptNotFound)
}

func TestResolver_Search(t *testing.T) {
	r := NewResolver(seed(t))
	ctx := context.Background()

	got, err := r.Search(ctx, "acme", "HELLO")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Greeting", got[0].Name)

	none, err := r.Search(ctx, "acme", "unfinished")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFormatSearchSummary(t *testing.T) {
	matches := []*store.PromptWithContent{
		{Prompt: store.Prompt{Name: "Greeting", Description: "Say hello"}},
		{Prompt: store.Prompt{Name: "Farewell"}},
	}

	want := "Found 2 prompts matching \"e\":\n\n" +
		"**Greeting**\nSay hello\n" +
		"\n" +
		"**Farewell**\n\n"
	assert.Equal(t, want, FormatSearchSummary("e", matches))
}

func TestFormatSearchSummary_NoMatches(t *testing.T) {
	assert.Equal(t, "Found 0 prompts matching \"zzz\":\n\n", FormatSearchSummary("zzz", nil))
}
