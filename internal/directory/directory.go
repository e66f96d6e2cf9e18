// ABOUTME: Operator-facing seeding of organizations, members, and prompts
// ABOUTME: Validates input with struct tags before touching the store

package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/2389/promptmesh-gateway/internal/store"
)

var validate = validator.New()

// ErrInvalidInput wraps every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Service creates directory records.
type Service struct {
	store store.DirectoryStore
	now   func() time.Time
}

// NewService creates a Service over s.
func NewService(s store.DirectoryStore) *Service {
	return &Service{store: s, now: time.Now}
}

// NewOrganization is the input for CreateOrganization.
type NewOrganization struct {
	ID   string // optional, generated when empty
	Name string `validate:"required,max=200"`
}

// CreateOrganization stores a new organization.
func (s *Service) CreateOrganization(ctx context.Context, in NewOrganization) (*store.Organization, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	org := &store.Organization{
		ID:        orGenerate(in.ID),
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateOrganization(ctx, org); err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}
	return org, nil
}

// NewMember is the input for AddMember.
type NewMember struct {
	OrganizationID string `validate:"required"`
	UserID         string `validate:"required"`
	Role           string `validate:"required,oneof=owner admin viewer"`
}

// AddMember grants a user a role in an organization.
func (s *Service) AddMember(ctx context.Context, in NewMember) (*store.Member, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	role, err := store.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m := &store.Member{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		UserID:         in.UserID,
		Role:           role,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.AddMember(ctx, m); err != nil {
		return nil, fmt.Errorf("adding member: %w", err)
	}
	return m, nil
}

// NewArgument declares one prompt argument.
type NewArgument struct {
	Name        string `validate:"required"`
	Description string
	Required    bool
}

// NewPrompt is the input for CreatePrompt. Content becomes the default variant.
type NewPrompt struct {
	OrganizationID string `validate:"required"`
	Name           string `validate:"required,max=200"`
	Description    string
	Content        string `validate:"required"`
	Notes          string
	CreatorID      string        `validate:"required"`
	Arguments      []NewArgument `validate:"dive"`
}

// CreatedPrompt is everything CreatePrompt stored.
type CreatedPrompt struct {
	Prompt    *store.Prompt
	Variant   *store.PromptVariant
	Arguments []*store.PromptArgument
}

// CreatePrompt stores a prompt, its default variant, and its arguments.
// The writes are not transactional; a failure part way leaves the earlier
// records in place.
func (s *Service) CreatePrompt(ctx context.Context, in NewPrompt) (*CreatedPrompt, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	seen := make(map[string]struct{}, len(in.Arguments))
	for _, a := range in.Arguments {
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("%w: argument %q declared twice", ErrInvalidInput, a.Name)
		}
		seen[a.Name] = struct{}{}
	}

	now := s.now().UTC()
	out := &CreatedPrompt{
		Prompt: &store.Prompt{
			ID:             uuid.New().String(),
			OrganizationID: in.OrganizationID,
			Name:           in.Name,
			Description:    in.Description,
			CreatorID:      in.CreatorID,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
	if err := s.store.CreatePrompt(ctx, out.Prompt); err != nil {
		return nil, fmt.Errorf("creating prompt: %w", err)
	}

	out.Variant = &store.PromptVariant{
		ID:        uuid.New().String(),
		PromptID:  out.Prompt.ID,
		Content:   in.Content,
		Notes:     in.Notes,
		IsDefault: true,
		CreatedBy: in.CreatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreatePromptVariant(ctx, out.Variant); err != nil {
		return nil, fmt.Errorf("creating default variant: %w", err)
	}

	for _, a := range in.Arguments {
		arg := &store.PromptArgument{
			ID:          uuid.New().String(),
			PromptID:    out.Prompt.ID,
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
			CreatedAt:   now,
		}
		if err := s.store.CreatePromptArgument(ctx, arg); err != nil {
			return nil, fmt.Errorf("creating argument %q: %w", a.Name, err)
		}
		out.Arguments = append(out.Arguments, arg)
	}

	return out, nil
}

// ParseArgument parses "name[:required|optional[:description]]". The
// description may itself contain colons.
func ParseArgument(s string) (NewArgument, error) {
	parts := strings.SplitN(s, ":", 3)

	arg := NewArgument{Name: strings.TrimSpace(parts[0])}
	if arg.Name == "" {
		return NewArgument{}, fmt.Errorf("%w: argument name is empty in %q", ErrInvalidInput, s)
	}

	if len(parts) > 1 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "required", "req":
			arg.Required = true
		case "optional", "opt", "":
		default:
			return NewArgument{}, fmt.Errorf("%w: argument %q must be required or optional, got %q", ErrInvalidInput, arg.Name, parts[1])
		}
	}
	if len(parts) > 2 {
		arg.Description = parts[2]
	}
	return arg, nil
}

func orGenerate(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}
