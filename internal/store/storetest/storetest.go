// ABOUTME: Shared behavioral tests run against every Store implementation
// ABOUTME: SQLite, Postgres, and the mock all have to agree on these rules

package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/store"
)

// Factory returns a fresh, empty store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Fixture holds the IDs seeded by Seed.
type Fixture struct {
	OrgID      string
	OtherOrgID string
	ReviewID   string
	SummaryID  string
	DraftID    string
}

// Seed creates two organizations with a small prompt catalogue:
//
//	org:   code-review (default), summarize (default), draft (no default)
//	other: code-review (default, different content)
func Seed(t *testing.T, s store.Store) Fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	f := Fixture{
		OrgID:      uuid.New().String(),
		OtherOrgID: uuid.New().String(),
	}

	for _, org := range []*store.Organization{
		{ID: f.OrgID, Name: "Acme", CreatedAt: now, UpdatedAt: now},
		{ID: f.OtherOrgID, Name: "Globex", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, s.CreateOrganization(ctx, org))
	}

	f.ReviewID = createPrompt(t, s, f.OrgID, "code-review", "Review code for bugs", "Review this diff.", true)
	f.SummaryID = createPrompt(t, s, f.OrgID, "summarize", "Condense 100% of a document", "Summarize the text.", true)
	f.DraftID = createPrompt(t, s, f.OrgID, "draft", "Not ready yet", "WIP", false)
	createPrompt(t, s, f.OtherOrgID, "code-review", "Globex review", "Globex content", true)

	return f
}

func createPrompt(t *testing.T, s store.Store, orgID, name, description, content string, isDefault bool) string {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	p := &store.Prompt{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Name:           name,
		Description:    description,
		CreatorID:      "user-1",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, s.CreatePrompt(ctx, p))
	require.NoError(t, s.CreatePromptVariant(ctx, &store.PromptVariant{
		ID:        uuid.New().String(),
		PromptID:  p.ID,
		Content:   content,
		IsDefault: isDefault,
		CreatedBy: "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	}))
	return p.ID
}

// Run exercises the full Store contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("ListOnlyDefaultVariants", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("GetByName", func(t *testing.T) { testGet(t, newStore(t)) })
	t.Run("Search", func(t *testing.T) { testSearch(t, newStore(t)) })
	t.Run("SearchFoldsUnicodeCase", func(t *testing.T) { testSearchUnicodeCase(t, newStore(t)) })
	t.Run("ArgumentsOrderedByName", func(t *testing.T) { testArguments(t, newStore(t)) })
	t.Run("SingleDefaultVariant", func(t *testing.T) { testSingleDefault(t, newStore(t)) })
	t.Run("Members", func(t *testing.T) { testMembers(t, newStore(t)) })
	t.Run("DuplicatePromptName", func(t *testing.T) { testDuplicatePrompt(t, newStore(t)) })
	t.Run("APIKeyLifecycle", func(t *testing.T) { testAPIKeys(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(context.Background()))
	})
}

func names(prompts []*store.PromptWithContent) []string {
	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, p.Name)
	}
	return out
}

func testList(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	prompts, err := s.ListPromptsWithDefault(ctx, f.OrgID)
	require.NoError(t, err)
	assert.Equal(t, []string{"code-review", "summarize"}, names(prompts))
	assert.Equal(t, "Review this diff.", prompts[0].Content)
	assert.Equal(t, f.OrgID, prompts[0].OrganizationID)
	assert.NotEmpty(t, prompts[0].VariantID)

	empty, err := s.ListPromptsWithDefault(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	p, err := s.GetPromptWithDefaultByName(ctx, f.OrgID, "code-review")
	require.NoError(t, err)
	assert.Equal(t, f.ReviewID, p.ID)
	assert.Equal(t, "Review code for bugs", p.Description)
	assert.Equal(t, "Review this diff.", p.Content)

	other, err := s.GetPromptWithDefaultByName(ctx, f.OtherOrgID, "code-review")
	require.NoError(t, err)
	assert.Equal(t, "Globex content", other.Content)

	_, err = s.GetPromptWithDefaultByName(ctx, f.OrgID, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetPromptWithDefaultByName(ctx, f.OrgID, "draft")
	assert.ErrorIs(t, err, store.ErrNotFound, "prompt without a default variant is not visible")

	_, err = s.GetPromptWithDefaultByName(ctx, f.OrgID, "Code-Review")
	assert.ErrorIs(t, err, store.ErrNotFound, "name lookup is exact")
}

func testSearch(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	tests := []struct {
		query string
		want  []string
	}{
		{"REVIEW", []string{"code-review"}},
		{"document", []string{"summarize"}},
		{"e", []string{"code-review", "summarize"}},
		{"100%", []string{"summarize"}},
		{"%", []string{"summarize"}},
		{"code_review", []string{}},
		{"not ready", []string{}},
		{"nothing matches", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.SearchPromptsWithDefault(ctx, f.OrgID, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func testSearchUnicodeCase(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	createPrompt(t, s, f.OrgID, "Café Menu", "Crème brûlée specials", "Today's menu.", true)

	for _, q := range []string{"CAFÉ", "café", "CRÈME BRÛLÉE", "Menu"} {
		got, err := s.SearchPromptsWithDefault(ctx, f.OrgID, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"Café Menu"}, names(got), "query %q", q)
	}
}

func testArguments(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	now := time.Now().UTC()

	for _, a := range []struct {
		name     string
		required bool
	}{{"tone", false}, {"audience", true}, {"Zeta", false}, {"language", false}} {
		require.NoError(t, s.CreatePromptArgument(ctx, &store.PromptArgument{
			ID:          uuid.New().String(),
			PromptID:    f.ReviewID,
			Name:        a.name,
			Description: "the " + a.name,
			Required:    a.required,
			CreatedAt:   now,
		}))
	}

	args, err := s.ListPromptArguments(ctx, f.ReviewID)
	require.NoError(t, err)
	require.Len(t, args, 4)
	// Byte order: upper case sorts before lower case on every store.
	assert.Equal(t, "Zeta", args[0].Name)
	assert.Equal(t, "audience", args[1].Name)
	assert.True(t, args[1].Required)
	assert.Equal(t, "the audience", args[1].Description)
	assert.Equal(t, "language", args[2].Name)
	assert.Equal(t, "tone", args[3].Name)
	assert.False(t, args[3].Required)

	none, err := s.ListPromptArguments(ctx, f.SummaryID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testSingleDefault(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	now := time.Now().UTC()

	err := s.CreatePromptVariant(ctx, &store.PromptVariant{
		ID:        uuid.New().String(),
		PromptID:  f.ReviewID,
		Content:   "second default",
		IsDefault: true,
		CreatedBy: "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = s.CreatePromptVariant(ctx, &store.PromptVariant{
		ID:        uuid.New().String(),
		PromptID:  f.ReviewID,
		Content:   "alternative",
		IsDefault: false,
		CreatedBy: "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	p, err := s.GetPromptWithDefaultByName(ctx, f.OrgID, "code-review")
	require.NoError(t, err)
	assert.Equal(t, "Review this diff.", p.Content)
}

func testMembers(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)

	m := &store.Member{
		ID:             uuid.New().String(),
		OrganizationID: f.OrgID,
		UserID:         "user-1",
		Role:           store.RoleAdmin,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, s.AddMember(ctx, m))

	got, err := s.GetMember(ctx, f.OrgID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, got.Role)

	dup := *m
	dup.ID = uuid.New().String()
	dup.Role = store.RoleViewer
	assert.ErrorIs(t, s.AddMember(ctx, &dup), store.ErrDuplicate)

	_, err = s.GetMember(ctx, f.OtherOrgID, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	org, err := s.GetOrganization(ctx, f.OrgID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
}

func testDuplicatePrompt(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	now := time.Now().UTC()

	err := s.CreatePrompt(ctx, &store.Prompt{
		ID:             uuid.New().String(),
		OrganizationID: f.OrgID,
		Name:           "summarize",
		CreatorID:      "user-2",
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func testAPIKeys(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := Seed(t, s)
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := &store.APIKey{
		ID:             uuid.New().String(),
		UserID:         "user-1",
		OrganizationID: f.OrgID,
		Name:           "laptop",
		KeyHash:        "hash-older",
		KeyPrefix:      "pm_aaaaa",
		CreatedAt:      base.Add(-time.Hour),
	}
	newer := &store.APIKey{
		ID:             uuid.New().String(),
		UserID:         "user-1",
		OrganizationID: f.OrgID,
		Name:           "ci",
		KeyHash:        "hash-newer",
		KeyPrefix:      "pm_bbbbb",
		CreatedAt:      base,
	}
	require.NoError(t, s.CreateAPIKey(ctx, older))
	require.NoError(t, s.CreateAPIKey(ctx, newer))

	clash := *newer
	clash.ID = uuid.New().String()
	assert.ErrorIs(t, s.CreateAPIKey(ctx, &clash), store.ErrDuplicate)

	got, err := s.GetActiveAPIKeyByHash(ctx, "hash-older")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, f.OrgID, got.OrganizationID)
	assert.Nil(t, got.LastUsedAt)
	assert.True(t, got.Usable())

	_, err = s.GetActiveAPIKeyByHash(ctx, "hash-unknown")
	assert.ErrorIs(t, err, store.ErrNotFound)

	touched := base.Add(time.Minute)
	require.NoError(t, s.TouchAPIKey(ctx, "hash-older", touched))
	got, err = s.GetActiveAPIKeyByHash(ctx, "hash-older")
	require.NoError(t, err)
	require.NotNil(t, got.LastUsedAt)
	assert.WithinDuration(t, touched, *got.LastUsedAt, time.Millisecond)

	keys, err := s.ListAPIKeys(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, newer.ID, keys[0].ID, "newest first")
	assert.Equal(t, older.ID, keys[1].ID)

	require.NoError(t, s.RevokeAPIKey(ctx, older.ID, base.Add(2*time.Minute)))
	_, err = s.GetActiveAPIKeyByHash(ctx, "hash-older")
	assert.ErrorIs(t, err, store.ErrNotFound, "revoked key no longer authenticates")

	assert.ErrorIs(t, s.RevokeAPIKey(ctx, older.ID, base), store.ErrNotFound, "revocation is terminal")
	assert.ErrorIs(t, s.RevokeAPIKey(ctx, "no-such-key", base), store.ErrNotFound)

	keys, err = s.ListAPIKeys(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, newer.ID, keys[0].ID)
}
