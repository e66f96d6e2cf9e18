// ABOUTME: JSON-RPC 2.0 envelope types and MCP result shapes
// ABOUTME: Shared by the dispatcher, the method handlers, and the HTTP transport

package mcp

import (
	"encoding/json"
)

// ProtocolVersion is the MCP version advertised by initialize.
const ProtocolVersion = "2024-11-05"

// jsonrpcVersion tags every response envelope.
const jsonrpcVersion = "2.0"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// JSON-RPC error codes used on the wire.
const (
	// CodeDomainError covers caller-visible failures: not found, unknown
	// method or tool, and missing parameters.
	CodeDomainError = -32000

	// CodeInternalError covers everything unexpected.
	CodeInternalError = -32603
)

// internalErrorMessage is the only message sent with CodeInternalError.
const internalErrorMessage = "Internal error"

// Request represents a JSON-RPC 2.0 request.
// The version tag is not enforced.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// UnmarshalJSON accepts any JSON value for method and jsonrpc. A method that
// is not a string keeps its JSON text, so it is answered as an unknown method
// instead of failing the whole request. The body must still be an object.
func (r *Request) UnmarshalJSON(data []byte) error {
	var wire struct {
		JSONRPC json.RawMessage `json:"jsonrpc"`
		Method  json.RawMessage `json:"method"`
		Params  json.RawMessage `json:"params"`
		ID      json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = Request{
		JSONRPC: looseString(wire.JSONRPC),
		Method:  looseString(wire.Method),
		Params:  wire.Params,
		ID:      wire.ID,
	}
	return nil
}

func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Response represents a JSON-RPC 2.0 response. ID is echoed verbatim and
// omitted when the request had none.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ServerInfo identifies this server in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Default server identity.
var DefaultServerInfo = ServerInfo{
	Name:    "PromptMesh MCP Server",
	Version: "1.0.0",
}

// ListChanged advertises change notifications for a capability.
type ListChanged struct {
	ListChanged bool `json:"listChanged"`
}

// Capabilities lists what the server supports.
type Capabilities struct {
	Prompts ListChanged `json:"prompts"`
	Tools   ListChanged `json:"tools"`
}

// InitializeResult is the result for initialize.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// PromptInfo is one entry in prompts/list.
type PromptInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
}

// ListPromptsResult is the result for prompts/list.
type ListPromptsResult struct {
	Prompts []PromptInfo `json:"prompts"`
}

// PromptArgument describes a prompt parameter.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// TextContent is a typed text payload.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PromptMessage is the single message returned by prompts/get.
type PromptMessage struct {
	Role    string      `json:"role"`
	Content TextContent `json:"content"`
}

// GetPromptResult is the result for prompts/get.
type GetPromptResult struct {
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
	Prompt      PromptMessage    `json:"prompt"`
}

// ToolInfo is an MCP tool definition.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ListToolsResult is the result for tools/list.
type ListToolsResult struct {
	Tools []ToolInfo `json:"tools"`
}

// CallToolResult is the result for tools/call.
type CallToolResult struct {
	Content []TextContent `json:"content"`
}

// textResult wraps text as a single-item tool result.
func textResult(text string) *CallToolResult {
	return &CallToolResult{Content: []TextContent{{Type: "text", Text: text}}}
}
