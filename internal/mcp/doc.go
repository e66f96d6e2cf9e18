// Package mcp implements the Model Context Protocol endpoint for external tools.
//
// # Protocol
//
// Requests are JSON-RPC 2.0 over HTTP. Endpoints, relative to the base path
// (default /mcp):
//
//   - POST /mcp - one JSON-RPC request per call
//   - GET /mcp/stream - server-sent events; announces the connection and
//     then stays open
//   - OPTIONS on any path - unauthenticated preflight, answered with "ok"
//
// # Authentication
//
// Every other request carries an API key:
//
//	Authorization: Bearer pm_<token>
//
// The key resolves to an organization, and every method only sees that
// organization's prompts.
//
// # Methods
//
//   - initialize
//   - prompts/list
//   - prompts/get {"name": "..."}
//   - tools/list
//   - tools/call {"name": "search_prompts", "arguments": {"query": "..."}}
//
// Handlers are registered in a Registry. Bind decodes params into a typed
// struct and validates it with validator struct tags:
//
//	reg.Register("prompts/get", mcp.Bind("Prompt name is required", h.getPrompt))
//
// # Errors
//
// Handler errors built with BadRequest, NotFound, UnknownMethod, or
// UnknownTool are returned with code -32000 and their message. Any other
// error, or a panic, is returned as -32603 "Internal error" and logged. A
// body that cannot be parsed gets HTTP 500 with the same -32603 envelope.
//
// # Example
//
//	{"jsonrpc":"2.0","method":"prompts/get","params":{"name":"Greeting"},"id":1}
//
//	{"jsonrpc":"2.0","result":{"description":"...","arguments":[...],
//	 "prompt":{"role":"user","content":{"type":"text","text":"Hello, {name}!"}}},"id":1}
package mcp
