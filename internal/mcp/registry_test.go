// ABOUTME: Tests for method and tool registries and typed param binding
// ABOUTME: Covers validation failures, null params, and duplicate registration

package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/auth"
)

type echoParams struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func echoHandler() Handler {
	return Bind("Name is required", func(ctx context.Context, p auth.Principal, params echoParams) (any, error) {
		return params.Name, nil
	})
}

func TestBind_DecodesAndValidates(t *testing.T) {
	h := echoHandler()
	ctx := context.Background()

	got, err := h(ctx, acme, json.RawMessage(`{"name":"x","count":2}`))
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	tests := map[string]string{
		"absent":        ``,
		"null":          `null`,
		"empty object":  `{}`,
		"empty name":    `{"name":""}`,
		"wrong type":    `{"name":42}`,
		"not an object": `["x"]`,
		"failed rule":   `{"name":"x","count":-1}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := h(ctx, acme, json.RawMessage(raw))
			de, ok := AsDomainError(err)
			require.True(t, ok, "expected domain error, got %v", err)
			assert.Equal(t, KindBadRequest, de.Kind)
			assert.Equal(t, "Name is required", de.Message)
		})
	}
}

func TestRegistry_RegisterLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", echoHandler())
	reg.Register("a", echoHandler())

	_, ok := reg.Lookup("a")
	assert.True(t, ok)
	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, reg.Methods())

	assert.Panics(t, func() { reg.Register("a", echoHandler()) })
}

func TestToolRegistry_PreservesOrder(t *testing.T) {
	tools := NewToolRegistry()
	tools.Register(Tool{Info: ToolInfo{Name: "zeta"}, Handler: echoHandler()})
	tools.Register(Tool{Info: ToolInfo{Name: "alpha"}, Handler: echoHandler()})

	list := tools.List()
	require.Len(t, list, 2)
	assert.Equal(t, "zeta", list[0].Name)
	assert.Equal(t, "alpha", list[1].Name)

	assert.Panics(t, func() { tools.Register(Tool{Info: ToolInfo{Name: "zeta"}}) })
}
