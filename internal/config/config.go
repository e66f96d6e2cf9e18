// ABOUTME: Configuration loading and parsing for promptmesh-gateway
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load and ResolvePath.
const (
	EnvConfigPath  = "PROMPTMESH_CONFIG"
	EnvDBPath      = "PROMPTMESH_DB_PATH"
	EnvDatabaseURL = "PROMPTMESH_DATABASE_URL"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Config represents the complete promptmesh-gateway configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	MCP      MCPConfig      `yaml:"mcp" toml:"mcp"`
	CORS     CORSConfig     `yaml:"cors" toml:"cors"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
	BasePath string `yaml:"base_path" toml:"base_path"`

	ReadHeaderTimeout time.Duration `yaml:"-" toml:"-"`
	ShutdownTimeout   time.Duration `yaml:"-" toml:"-"`
	TouchTimeout      time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	ReadHeaderTimeoutRaw string `yaml:"read_header_timeout" toml:"read_header_timeout"`
	ShutdownTimeoutRaw   string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	TouchTimeoutRaw      string `yaml:"touch_timeout" toml:"touch_timeout"`
}

// DatabaseConfig selects and configures the store
type DatabaseConfig struct {
	Driver   string `yaml:"driver" toml:"driver"`
	Path     string `yaml:"path" toml:"path"` // sqlite
	DSN      string `yaml:"dsn" toml:"dsn"`   // postgres
	MaxConns int32  `yaml:"max_conns" toml:"max_conns"`
	MinConns int32  `yaml:"min_conns" toml:"min_conns"`
}

// MCPConfig holds the identity reported by initialize
type MCPConfig struct {
	ServerName    string `yaml:"server_name" toml:"server_name"`
	ServerVersion string `yaml:"server_version" toml:"server_version"`
}

// CORSConfig holds cross-origin configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Defaults.
const (
	DefaultHTTPAddr          = "localhost:8080"
	DefaultBasePath          = "/mcp"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultTouchTimeout      = 5 * time.Second
	DefaultDBPath            = "promptmesh.db"
	DefaultMaxConns          = 10
	DefaultMinConns          = 1
	DefaultMetricsPath       = "/metrics"
)

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// The syntax is chosen from the file extension. Environment variables in the
// format ${VAR_NAME} are expanded, then PROMPTMESH_DB_PATH and
// PROMPTMESH_DATABASE_URL override the database section.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Parse decodes data in the given format, expands environment variables,
// parses durations, and applies defaults. It does not validate.
func Parse(data []byte, format Format) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// FormatFromPath picks TOML for .toml files and YAML for everything else.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// ResolvePath returns the config file location: PROMPTMESH_CONFIG if set,
// otherwise gateway.yaml under the XDG config directory.
func ResolvePath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "promptmesh", "gateway.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "promptmesh", "gateway.yaml")
	}
	return filepath.Join(home, ".config", "promptmesh", "gateway.yaml")
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = DefaultBasePath
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.TouchTimeout == 0 {
		c.Server.TouchTimeout = DefaultTouchTimeout
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	if c.MCP.ServerName == "" {
		c.MCP.ServerName = "PromptMesh MCP Server"
	}
	if c.MCP.ServerVersion == "" {
		c.MCP.ServerVersion = "1.0.0"
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv(EnvDBPath); p != "" {
		c.Database.Driver = DriverSQLite
		c.Database.Path = p
	}
	if dsn := os.Getenv(EnvDatabaseURL); dsn != "" {
		c.Database.Driver = DriverPostgres
		c.Database.DSN = dsn
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path must start with /, got %q", c.Server.BasePath)
	}
	if c.Server.ReadHeaderTimeout < 0 || c.Server.ShutdownTimeout < 0 || c.Server.TouchTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("database.min_conns (%d) cannot exceed database.max_conns (%d)",
				c.Database.MinConns, c.Database.MaxConns)
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}

	if !slices.Contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", validLevels, c.Logging.Level)
	}
	if !slices.Contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v, got %q", validFormats, c.Logging.Format)
	}

	if c.Metrics.Enabled {
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
		}
		if c.Metrics.Path == c.Server.BasePath {
			return fmt.Errorf("metrics.path conflicts with server.base_path")
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"read_header_timeout", cfg.Server.ReadHeaderTimeoutRaw, &cfg.Server.ReadHeaderTimeout},
		{"shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"touch_timeout", cfg.Server.TouchTimeoutRaw, &cfg.Server.TouchTimeout},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
