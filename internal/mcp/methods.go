// ABOUTME: MCP method handlers for initialize, prompts, and tools
// ABOUTME: Every prompt read is scoped to the caller's organization

package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/2389/promptmesh-gateway/internal/auth"
	"github.com/2389/promptmesh-gateway/internal/prompts"
	"github.com/2389/promptmesh-gateway/internal/store"
)

// Method names.
const (
	MethodInitialize  = "initialize"
	MethodPromptsList = "prompts/list"
	MethodPromptsGet  = "prompts/get"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
)

// ToolSearchPrompts is the only built-in tool.
const ToolSearchPrompts = "search_prompts"

var searchPromptsSchema = json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"Search query to find prompts"}},"required":["query"]}`)

// GetPromptParams are the params for prompts/get.
type GetPromptParams struct {
	Name string `json:"name" validate:"required"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// SearchPromptsArgs are the arguments for the search_prompts tool.
type SearchPromptsArgs struct {
	Query string `json:"query" validate:"required"`
}

// NewPromptRegistry builds the method registry served by the gateway.
func NewPromptRegistry(resolver *prompts.Resolver, info ServerInfo) *Registry {
	if info.Name == "" {
		info.Name = DefaultServerInfo.Name
	}
	if info.Version == "" {
		info.Version = DefaultServerInfo.Version
	}

	h := &promptHandlers{resolver: resolver, info: info, tools: NewToolRegistry()}
	h.tools.Register(Tool{
		Info: ToolInfo{
			Name:        ToolSearchPrompts,
			Description: "Search for prompts in the organization",
			InputSchema: searchPromptsSchema,
		},
		Handler: Bind("Search query is required", h.searchPrompts),
	})

	reg := NewRegistry()
	reg.Register(MethodInitialize, h.initialize)
	reg.Register(MethodPromptsList, h.listPrompts)
	reg.Register(MethodPromptsGet, Bind("Prompt name is required", h.getPrompt))
	reg.Register(MethodToolsList, h.listTools)
	reg.Register(MethodToolsCall, Bind("Invalid tool call parameters", h.callTool))
	return reg
}

type promptHandlers struct {
	resolver *prompts.Resolver
	info     ServerInfo
	tools    *ToolRegistry
}

func (h *promptHandlers) initialize(ctx context.Context, p auth.Principal, _ json.RawMessage) (any, error) {
	return &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: Capabilities{
			Prompts: ListChanged{ListChanged: true},
			Tools:   ListChanged{ListChanged: true},
		},
		ServerInfo: h.info,
	}, nil
}

func (h *promptHandlers) listPrompts(ctx context.Context, p auth.Principal, _ json.RawMessage) (any, error) {
	list, err := h.resolver.List(ctx, p.OrganizationID)
	if err != nil {
		return nil, err
	}

	result := &ListPromptsResult{Prompts: make([]PromptInfo, len(list))}
	for i, pr := range list {
		// Arguments are only resolved by prompts/get.
		result.Prompts[i] = PromptInfo{
			Name:        pr.Name,
			Description: pr.Description,
			Arguments:   []PromptArgument{},
		}
	}
	return result, nil
}

func (h *promptHandlers) getPrompt(ctx context.Context, p auth.Principal, params GetPromptParams) (any, error) {
	resolved, err := h.resolver.Get(ctx, p.OrganizationID, params.Name)
	if errors.Is(err, prompts.ErrPromptNotFound) {
		return nil, NotFound("Prompt not found")
	}
	if err != nil {
		return nil, err
	}

	return &GetPromptResult{
		Description: resolved.Description,
		Arguments:   toPromptArguments(resolved.Arguments),
		Prompt: PromptMessage{
			Role:    "user",
			Content: TextContent{Type: "text", Text: resolved.Content},
		},
	}, nil
}

func (h *promptHandlers) listTools(ctx context.Context, p auth.Principal, _ json.RawMessage) (any, error) {
	return &ListToolsResult{Tools: h.tools.List()}, nil
}

func (h *promptHandlers) callTool(ctx context.Context, p auth.Principal, params CallToolParams) (any, error) {
	tool, ok := h.tools.Lookup(params.Name)
	if !ok {
		return nil, UnknownTool(params.Name)
	}
	return tool.Handler(ctx, p, params.Arguments)
}

func (h *promptHandlers) searchPrompts(ctx context.Context, p auth.Principal, args SearchPromptsArgs) (any, error) {
	matches, err := h.resolver.Search(ctx, p.OrganizationID, args.Query)
	if err != nil {
		return nil, err
	}
	return textResult(prompts.FormatSearchSummary(args.Query, matches)), nil
}

func toPromptArguments(args []*store.PromptArgument) []PromptArgument {
	out := make([]PromptArgument, len(args))
	for i, a := range args {
		out[i] = PromptArgument{
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
		}
	}
	return out
}
