// ABOUTME: Organization-scoped prompt resolution over the prompt store
// ABOUTME: List, get-by-name with arguments, and substring search

package prompts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/promptmesh-gateway/internal/store"
)

// ErrPromptNotFound is returned when no prompt with a default variant matches.
var ErrPromptNotFound = errors.New("prompt not found")

// Resolved is a prompt with its default content and argument definitions.
type Resolved struct {
	*store.PromptWithContent
	Arguments []*store.PromptArgument
}

// Resolver reads prompts for a single organization at a time.
type Resolver struct {
	prompts store.PromptStore
}

// NewResolver creates a Resolver.
func NewResolver(prompts store.PromptStore) *Resolver {
	return &Resolver{prompts: prompts}
}

// List returns every prompt in the organization that has a default variant.
func (r *Resolver) List(ctx context.Context, orgID string) ([]*store.PromptWithContent, error) {
	list, err := r.prompts.ListPromptsWithDefault(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	return list, nil
}

// Get looks up a prompt by exact name and loads its arguments.
func (r *Resolver) Get(ctx context.Context, orgID, name string) (*Resolved, error) {
	p, err := r.prompts.GetPromptWithDefaultByName(ctx, orgID, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPromptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting prompt %q: %w", name, err)
	}

	args, err := r.prompts.ListPromptArguments(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("loading arguments for %q: %w", name, err)
	}
	if args == nil {
		args = []*store.PromptArgument{}
	}

	return &Resolved{PromptWithContent: p, Arguments: args}, nil
}

// Search returns prompts whose name or description contains query,
// ignoring case. No matches is an empty slice.
func (r *Resolver) Search(ctx context.Context, orgID, query string) ([]*store.PromptWithContent, error) {
	matches, err := r.prompts.SearchPromptsWithDefault(ctx, orgID, query)
	if err != nil {
		return nil, fmt.Errorf("searching prompts: %w", err)
	}
	if matches == nil {
		matches = []*store.PromptWithContent{}
	}
	return matches, nil
}
