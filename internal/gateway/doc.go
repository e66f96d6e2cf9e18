// Package gateway orchestrates the promptmesh-gateway server components.
//
// # Overview
//
// The gateway package opens the configured store and builds the pieces that
// sit on top of it: the bearer token verifier, the prompt resolver, the MCP
// method registry and dispatcher, the MCP HTTP transport, and the Prometheus
// collectors. It owns the single HTTP server that exposes them.
//
// # HTTP Surface
//
//   - POST /mcp - JSON-RPC calls (bearer auth)
//   - GET /mcp/stream - server-sent events channel (bearer auth)
//   - OPTIONS on any path - preflight, 200 "ok", no auth
//   - GET /health - liveness check
//   - GET /health/ready - readiness check (store ping)
//   - GET /metrics - Prometheus metrics, when metrics.enabled
//
// Any other path is handed to the MCP server, which authenticates before
// routing and answers 404 once authenticated.
//
// # Lifecycle
//
// Start the gateway:
//
//	gw, err := gateway.New(ctx, cfg, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	go gw.Run(ctx)
//
// Canceling the context ends open streams, drains in-flight requests and
// last-used updates, then closes the store. Shutdown may also be called
// directly and is safe to call more than once.
package gateway
