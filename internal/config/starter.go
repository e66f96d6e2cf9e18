// ABOUTME: Starter configuration written by the init command
// ABOUTME: Refuses to overwrite an existing file

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrConfigExists is returned by WriteStarter when the target already exists.
var ErrConfigExists = errors.New("config file already exists")

// StarterYAML is a commented configuration with every default spelled out.
const StarterYAML = `# promptmesh-gateway configuration

server:
  http_addr: "localhost:8080"
  base_path: "/mcp"
  read_header_timeout: "10s"
  shutdown_timeout: "15s"
  touch_timeout: "5s"

database:
  # sqlite or postgres
  driver: "sqlite"
  path: "promptmesh.db"
  # dsn: "${PROMPTMESH_DATABASE_URL}"
  max_conns: 10
  min_conns: 1

mcp:
  server_name: "PromptMesh MCP Server"
  server_version: "1.0.0"

cors:
  allowed_origins:
    - "*"

logging:
  # debug, info, warn, error
  level: "info"
  # text or json
  format: "text"

metrics:
  enabled: false
  path: "/metrics"
`

// WriteStarter writes StarterYAML to path, creating parent directories.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(StarterYAML), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
