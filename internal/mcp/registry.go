// ABOUTME: Method and tool registries keyed by name
// ABOUTME: Bind decodes and validates typed params before a handler runs

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/2389/promptmesh-gateway/internal/auth"
)

var validate = validator.New()

// Handler serves one method (or tool) for an authenticated caller.
type Handler func(ctx context.Context, p auth.Principal, params json.RawMessage) (any, error)

// Bind adapts a typed handler. Params are decoded into P and checked against
// its `validate` struct tags; any failure becomes BadRequest(invalidMsg).
// Absent or null params decode to the zero value before validation.
func Bind[P any](invalidMsg string, fn func(ctx context.Context, p auth.Principal, params P) (any, error)) Handler {
	return func(ctx context.Context, p auth.Principal, raw json.RawMessage) (any, error) {
		var params P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &params); err != nil {
				return nil, BadRequest(invalidMsg)
			}
		}
		if err := validate.Struct(params); err != nil {
			return nil, BadRequest(invalidMsg)
		}
		return fn(ctx, p, params)
	}
}

// Registry maps method names to handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler. Registering the same method twice panics.
func (r *Registry) Register(method string, h Handler) {
	if _, exists := r.handlers[method]; exists {
		panic(fmt.Sprintf("mcp: method %q registered twice", method))
	}
	r.handlers[method] = h
}

// Lookup returns the handler for method.
func (r *Registry) Lookup(method string) (Handler, bool) {
	h, ok := r.handlers[method]
	return h, ok
}

// Methods returns registered method names in sorted order.
func (r *Registry) Methods() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tool is a callable tool and its advertised definition.
type Tool struct {
	Info    ToolInfo
	Handler Handler
}

// ToolRegistry maps tool names to tools, preserving registration order
// for tools/list.
type ToolRegistry struct {
	tools map[string]Tool
	order []string
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering the same name twice panics.
func (r *ToolRegistry) Register(t Tool) {
	if _, exists := r.tools[t.Info.Name]; exists {
		panic(fmt.Sprintf("mcp: tool %q registered twice", t.Info.Name))
	}
	r.tools[t.Info.Name] = t
	r.order = append(r.order, t.Info.Name)
}

// Lookup returns the tool called name.
func (r *ToolRegistry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns tool definitions in registration order.
func (r *ToolRegistry) List() []ToolInfo {
	infos := make([]ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.tools[name].Info)
	}
	return infos
}
