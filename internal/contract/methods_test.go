// ABOUTME: Contract tests for the MCP method and tool surface.
// ABOUTME: Fails when a method or tool is removed or renamed.

package contract

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/auth"
	"github.com/2389/promptmesh-gateway/internal/mcp"
	"github.com/2389/promptmesh-gateway/internal/prompts"
	"github.com/2389/promptmesh-gateway/internal/store"
)

var expectedMethods = []string{
	"initialize",
	"prompts/get",
	"prompts/list",
	"tools/call",
	"tools/list",
}

var expectedTools = map[string][]string{
	"search_prompts": {"query"},
}

func TestMethodSurface(t *testing.T) {
	reg := mcp.NewPromptRegistry(prompts.NewResolver(store.NewMockStore()), mcp.ServerInfo{})
	assert.Equal(t, expectedMethods, reg.Methods())
}

func TestToolSurface(t *testing.T) {
	reg := mcp.NewPromptRegistry(prompts.NewResolver(store.NewMockStore()), mcp.ServerInfo{})
	d := mcp.NewDispatcher(reg, nil, nil)

	resp := d.Dispatch(context.Background(), auth.Principal{OrganizationID: "org"}, mcp.Request{
		JSONRPC: "2.0",
		Method:  "tools/list",
		ID:      json.RawMessage(`1`),
	})
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(*mcp.ListToolsResult)
	require.True(t, ok, "tools/list result type %T", resp.Result)

	got := make(map[string][]string, len(result.Tools))
	for _, tool := range result.Tools {
		var schema struct {
			Required []string `json:"required"`
		}
		require.NoError(t, json.Unmarshal(tool.InputSchema, &schema), "tool %s schema", tool.Name)
		got[tool.Name] = schema.Required
	}
	assert.Equal(t, expectedTools, got)
}

func TestProtocolConstants(t *testing.T) {
	assert.Equal(t, "2024-11-05", mcp.ProtocolVersion)
	assert.Equal(t, -32000, mcp.CodeDomainError)
	assert.Equal(t, -32603, mcp.CodeInternalError)
}
