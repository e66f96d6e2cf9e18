// Package config handles configuration loading for promptmesh-gateway.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. The syntax is picked from the file extension: .toml is TOML,
// anything else is YAML. Missing values take defaults and the result is
// validated before use.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from PROMPTMESH_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/promptmesh/gateway.yaml
//  3. ~/.config/promptmesh/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	database:
//	  driver: "postgres"
//	  dsn: "${PROMPTMESH_DATABASE_URL}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// After parsing, PROMPTMESH_DB_PATH selects SQLite at that path and
// PROMPTMESH_DATABASE_URL selects PostgreSQL with that DSN. The database URL
// wins when both are set.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	server:
//	  shutdown_timeout: "15s"
//	  touch_timeout: "5s"
//
// # Configuration Structure
//
//	server:
//	  http_addr: "localhost:8080"
//	  base_path: "/mcp"
//	  read_header_timeout: "10s"
//	  shutdown_timeout: "15s"
//	  touch_timeout: "5s"
//
//	database:
//	  driver: "sqlite"   # or postgres
//	  path: "promptmesh.db"
//	  dsn: ""
//	  max_conns: 10
//	  min_conns: 1
//
//	mcp:
//	  server_name: "PromptMesh MCP Server"
//	  server_version: "1.0.0"
//
//	cors:
//	  allowed_origins: ["*"]
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # text, json
//
//	metrics:
//	  enabled: false
//	  path: "/metrics"
//
// # Usage
//
//	cfg, err := config.Load(config.ResolvePath())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
