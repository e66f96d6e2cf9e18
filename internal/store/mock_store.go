// ABOUTME: Mock Store implementation for testing
// ABOUTME: In-memory maps with the same uniqueness and revocation rules as SQLiteStore

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu        sync.RWMutex
	orgs      map[string]*Organization
	members   map[string]*Member           // keyed by "orgID:userID"
	prompts   map[string]*Prompt           // keyed by prompt ID
	variants  map[string][]*PromptVariant  // keyed by prompt ID
	arguments map[string][]*PromptArgument // keyed by prompt ID
	keys      map[string]*APIKey           // keyed by key ID
	errs      map[string]error             // injected failures keyed by method name
	touches   int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		orgs:      make(map[string]*Organization),
		members:   make(map[string]*Member),
		prompts:   make(map[string]*Prompt),
		variants:  make(map[string][]*PromptVariant),
		arguments: make(map[string][]*PromptArgument),
		keys:      make(map[string]*APIKey),
		errs:      make(map[string]error),
	}
}

// SetError makes every subsequent call to the named method return err.
// Pass a nil err to clear it.
func (m *MockStore) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, method)
		return
	}
	m.errs[method] = err
}

// TouchCount reports how many successful TouchAPIKey calls were made.
func (m *MockStore) TouchCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.touches
}

// failure must be called with mu held.
func (m *MockStore) failure(method string) error {
	return m.errs[method]
}

// GetActiveAPIKeyByHash finds a non-revoked key by hash.
func (m *MockStore) GetActiveAPIKeyByHash(ctx context.Context, keyHash string) (*APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("GetActiveAPIKeyByHash"); err != nil {
		return nil, err
	}
	for _, k := range m.keys {
		if k.KeyHash == keyHash && k.RevokedAt == nil {
			return copyAPIKey(k), nil
		}
	}
	return nil, ErrNotFound
}

// TouchAPIKey updates last_used_at for the key with the given hash.
func (m *MockStore) TouchAPIKey(ctx context.Context, keyHash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("TouchAPIKey"); err != nil {
		return err
	}
	for _, k := range m.keys {
		if k.KeyHash == keyHash {
			t := at
			k.LastUsedAt = &t
		}
	}
	m.touches++
	return nil
}

// CreateAPIKey stores a key. Hashes must be unique.
func (m *MockStore) CreateAPIKey(ctx context.Context, key *APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("CreateAPIKey"); err != nil {
		return err
	}
	if _, ok := m.keys[key.ID]; ok {
		return ErrDuplicate
	}
	for _, k := range m.keys {
		if k.KeyHash == key.KeyHash {
			return ErrDuplicate
		}
	}
	m.keys[key.ID] = copyAPIKey(key)
	return nil
}

// RevokeAPIKey marks an active key revoked.
func (m *MockStore) RevokeAPIKey(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("RevokeAPIKey"); err != nil {
		return err
	}
	k, ok := m.keys[id]
	if !ok || k.RevokedAt != nil {
		return ErrNotFound
	}
	t := at
	k.RevokedAt = &t
	return nil
}

// ListAPIKeys returns a user's active keys, newest first.
func (m *MockStore) ListAPIKeys(ctx context.Context, userID string) ([]*APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("ListAPIKeys"); err != nil {
		return nil, err
	}
	var keys []*APIKey
	for _, k := range m.keys {
		if k.UserID == userID && k.RevokedAt == nil {
			keys = append(keys, copyAPIKey(k))
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

// ListPromptsWithDefault returns the organization's prompts with a default variant.
func (m *MockStore) ListPromptsWithDefault(ctx context.Context, orgID string) ([]*PromptWithContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("ListPromptsWithDefault"); err != nil {
		return nil, err
	}
	return m.matchPrompts(orgID, func(*Prompt) bool { return true }), nil
}

// GetPromptWithDefaultByName finds a prompt by exact name.
func (m *MockStore) GetPromptWithDefaultByName(ctx context.Context, orgID, name string) (*PromptWithContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("GetPromptWithDefaultByName"); err != nil {
		return nil, err
	}
	matches := m.matchPrompts(orgID, func(p *Prompt) bool { return p.Name == name })
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return matches[0], nil
}

// SearchPromptsWithDefault performs a case-insensitive substring match on
// name or description.
func (m *MockStore) SearchPromptsWithDefault(ctx context.Context, orgID, query string) ([]*PromptWithContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("SearchPromptsWithDefault"); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	return m.matchPrompts(orgID, func(p *Prompt) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	}), nil
}

// ListPromptArguments returns a prompt's arguments ordered by name.
func (m *MockStore) ListPromptArguments(ctx context.Context, promptID string) ([]*PromptArgument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("ListPromptArguments"); err != nil {
		return nil, err
	}
	args := make([]*PromptArgument, 0, len(m.arguments[promptID]))
	for _, a := range m.arguments[promptID] {
		c := *a
		args = append(args, &c)
	}
	sort.Slice(args, func(i, j int) bool { return args[i].Name < args[j].Name })
	return args, nil
}

// matchPrompts must be called with mu held.
func (m *MockStore) matchPrompts(orgID string, keep func(*Prompt) bool) []*PromptWithContent {
	out := []*PromptWithContent{}
	for _, p := range m.prompts {
		if p.OrganizationID != orgID || !keep(p) {
			continue
		}
		for _, v := range m.variants[p.ID] {
			if v.IsDefault {
				out = append(out, &PromptWithContent{Prompt: *p, VariantID: v.ID, Content: v.Content})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CreateOrganization stores an organization.
func (m *MockStore) CreateOrganization(ctx context.Context, org *Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("CreateOrganization"); err != nil {
		return err
	}
	if _, ok := m.orgs[org.ID]; ok {
		return ErrDuplicate
	}
	o := *org
	m.orgs[o.ID] = &o
	return nil
}

// GetOrganization retrieves an organization by ID.
func (m *MockStore) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("GetOrganization"); err != nil {
		return nil, err
	}
	o, ok := m.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *o
	return &c, nil
}

// AddMember adds a user to an organization.
func (m *MockStore) AddMember(ctx context.Context, member *Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("AddMember"); err != nil {
		return err
	}
	if _, ok := m.orgs[member.OrganizationID]; !ok {
		return ErrNotFound
	}
	key := member.OrganizationID + ":" + member.UserID
	if _, ok := m.members[key]; ok {
		return ErrDuplicate
	}
	c := *member
	m.members[key] = &c
	return nil
}

// GetMember returns a user's membership in an organization.
func (m *MockStore) GetMember(ctx context.Context, orgID, userID string) (*Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failure("GetMember"); err != nil {
		return nil, err
	}
	mem, ok := m.members[orgID+":"+userID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *mem
	return &c, nil
}

// CreatePrompt stores a prompt. Names are unique per organization.
func (m *MockStore) CreatePrompt(ctx context.Context, prompt *Prompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("CreatePrompt"); err != nil {
		return err
	}
	if _, ok := m.orgs[prompt.OrganizationID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.prompts[prompt.ID]; ok {
		return ErrDuplicate
	}
	for _, p := range m.prompts {
		if p.OrganizationID == prompt.OrganizationID && p.Name == prompt.Name {
			return ErrDuplicate
		}
	}
	c := *prompt
	m.prompts[c.ID] = &c
	return nil
}

// CreatePromptVariant stores a variant. Only one default per prompt.
func (m *MockStore) CreatePromptVariant(ctx context.Context, variant *PromptVariant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("CreatePromptVariant"); err != nil {
		return err
	}
	if _, ok := m.prompts[variant.PromptID]; !ok {
		return ErrNotFound
	}
	for _, v := range m.variants[variant.PromptID] {
		if v.ID == variant.ID || (v.IsDefault && variant.IsDefault) {
			return ErrDuplicate
		}
	}
	c := *variant
	m.variants[c.PromptID] = append(m.variants[c.PromptID], &c)
	return nil
}

// CreatePromptArgument stores an argument definition.
func (m *MockStore) CreatePromptArgument(ctx context.Context, arg *PromptArgument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failure("CreatePromptArgument"); err != nil {
		return err
	}
	if _, ok := m.prompts[arg.PromptID]; !ok {
		return ErrNotFound
	}
	for _, a := range m.arguments[arg.PromptID] {
		if a.Name == arg.Name {
			return ErrDuplicate
		}
	}
	c := *arg
	m.arguments[c.PromptID] = append(m.arguments[c.PromptID], &c)
	return nil
}

// Ping always succeeds unless an error was injected.
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failure("Ping")
}

// Close is a no-op for MockStore.
func (m *MockStore) Close() error {
	return nil
}

func copyAPIKey(k *APIKey) *APIKey {
	c := *k
	if k.RevokedAt != nil {
		t := *k.RevokedAt
		c.RevokedAt = &t
	}
	if k.LastUsedAt != nil {
		t := *k.LastUsedAt
		c.LastUsedAt = &t
	}
	return &c
}

// Compile-time check that MockStore implements Store
var _ Store = (*MockStore)(nil)
