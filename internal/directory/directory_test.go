// ABOUTME: Tests for directory seeding against the in-memory store
// ABOUTME: Covers validation, default variant creation, and argument parsing

package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/store"
)

func newService(t *testing.T) (*Service, *store.MockStore) {
	t.Helper()
	s := store.NewMockStore()
	return NewService(s), s
}

func TestCreateOrganization(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()

	org, err := svc.CreateOrganization(ctx, NewOrganization{Name: "  Acme  "})
	require.NoError(t, err)
	assert.NotEmpty(t, org.ID)
	assert.Equal(t, "Acme", org.Name)

	got, err := s.GetOrganization(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	fixed, err := svc.CreateOrganization(ctx, NewOrganization{ID: "org-fixed", Name: "Globex"})
	require.NoError(t, err)
	assert.Equal(t, "org-fixed", fixed.ID)

	_, err = svc.CreateOrganization(ctx, NewOrganization{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddMember(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()
	org, err := svc.CreateOrganization(ctx, NewOrganization{Name: "Acme"})
	require.NoError(t, err)

	m, err := svc.AddMember(ctx, NewMember{OrganizationID: org.ID, UserID: "u-1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, m.Role)

	got, err := s.GetMember(ctx, org.ID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, got.Role)

	_, err = svc.AddMember(ctx, NewMember{OrganizationID: org.ID, UserID: "u-1", Role: "viewer"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = svc.AddMember(ctx, NewMember{OrganizationID: org.ID, UserID: "u-2", Role: "superuser"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddMember(ctx, NewMember{OrganizationID: "", UserID: "u-2", Role: "viewer"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreatePrompt(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()
	org, err := svc.CreateOrganization(ctx, NewOrganization{Name: "Acme"})
	require.NoError(t, err)

	created, err := svc.CreatePrompt(ctx, NewPrompt{
		OrganizationID: org.ID,
		Name:           "code-review",
		Description:    "Review a diff",
		Content:        "Review {diff} for {focus}.",
		CreatorID:      "u-1",
		Arguments: []NewArgument{
			{Name: "focus", Description: "What to look for"},
			{Name: "diff", Description: "The diff", Required: true},
		},
	})
	require.NoError(t, err)
	assert.True(t, created.Variant.IsDefault)
	assert.Len(t, created.Arguments, 2)

	got, err := s.GetPromptWithDefaultByName(ctx, org.ID, "code-review")
	require.NoError(t, err)
	assert.Equal(t, "Review {diff} for {focus}.", got.Content)
	assert.Equal(t, created.Variant.ID, got.VariantID)

	args, err := s.ListPromptArguments(ctx, created.Prompt.ID)
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, "diff", args[0].Name)
	assert.True(t, args[0].Required)
}

func TestCreatePrompt_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	valid := NewPrompt{OrganizationID: "org", Name: "p", Content: "c", CreatorID: "u"}

	tests := []struct {
		name   string
		mutate func(*NewPrompt)
	}{
		{"missing org", func(p *NewPrompt) { p.OrganizationID = "" }},
		{"blank name", func(p *NewPrompt) { p.Name = "  " }},
		{"missing content", func(p *NewPrompt) { p.Content = "" }},
		{"missing creator", func(p *NewPrompt) { p.CreatorID = "" }},
		{"unnamed argument", func(p *NewPrompt) { p.Arguments = []NewArgument{{Name: ""}} }},
		{"duplicate argument", func(p *NewPrompt) { p.Arguments = []NewArgument{{Name: "a"}, {Name: "a"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.CreatePrompt(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreatePrompt_UnknownOrganization(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreatePrompt(context.Background(), NewPrompt{OrganizationID: "missing", Name: "p", Content: "c", CreatorID: "u"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

func TestParseArgument(t *testing.T) {
	tests := []struct {
		in      string
		want    NewArgument
		wantErr bool
	}{
		{"name", NewArgument{Name: "name"}, false},
		{"name:required", NewArgument{Name: "name", Required: true}, false},
		{"name:optional:Who to greet", NewArgument{Name: "name", Description: "Who to greet"}, false},
		{"url:req:A link like https://x", NewArgument{Name: "url", Required: true, Description: "A link like https://x"}, false},
		{"name::desc", NewArgument{Name: "name", Description: "desc"}, false},
		{":required", NewArgument{}, true},
		{"name:maybe", NewArgument{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseArgument(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
