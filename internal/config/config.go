// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/mcp-relay/config.toml",
	"configs/config.toml",
}

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config   string           `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	URL      string           `kong:"help='Destination endpoint URL (overrides config).',env='MCP_URL'"`
	APIKey   string           `kong:"help='Token sent in the MCP-API-Key header (overrides config).',env='MCP_API_KEY'"`
	Timeout  int              `kong:"help='Exchange timeout in seconds; 0 waits forever (overrides config).',env='RELAY_TIMEOUT_SECONDS'"`
	LogLevel string           `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
	Version  kong.VersionFlag `kong:"help='Print version and exit.'"`
}

// Config is the top-level application configuration.
type Config struct {
	Endpoint EndpointConfig `toml:"endpoint"`
	Log      LogConfig      `toml:"log"`

	filePath string // resolved config file path (unexported)
}

// EndpointConfig holds the destination endpoint settings and credential.
type EndpointConfig struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"` // 0 means wait forever
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Load reads the optional TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/mcp-relay/config.toml then configs/config.toml. A missing file is not
// an error: the relay can be configured entirely from environment variables,
// as long as the endpoint URL and API key end up set.
func Load(cli *CLI) (*Config, error) {
	var cfg Config

	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.URL != "" {
		c.Endpoint.URL = cli.URL
	}
	if cli.APIKey != "" {
		c.Endpoint.APIKey = cli.APIKey
	}
	if cli.Timeout != 0 {
		c.Endpoint.TimeoutSeconds = cli.Timeout
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	// Endpoint URL: required and must be HTTPS. Catching a bad URL here
	// fails the invocation before any connection attempt is made.
	if c.Endpoint.URL == "" {
		return fmt.Errorf("endpoint.url is required (set it or MCP_URL)")
	}
	u, err := url.Parse(c.Endpoint.URL)
	if err != nil {
		return fmt.Errorf("endpoint.url is not a valid URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("endpoint.url must use HTTPS; got %q", c.Endpoint.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint.url has no host; got %q", c.Endpoint.URL)
	}

	// Credential: required by the remote service to authorize the call.
	if c.Endpoint.APIKey == "" {
		return fmt.Errorf("endpoint.api_key is required (set it or MCP_API_KEY)")
	}
	if c.Endpoint.APIKey == "YOUR_API_KEY_HERE" {
		return fmt.Errorf("endpoint.api_key contains placeholder value; set a real key")
	}

	if c.Endpoint.TimeoutSeconds < 0 {
		return fmt.Errorf("endpoint.timeout_seconds must be non-negative; got %d", c.Endpoint.TimeoutSeconds)
	}

	// Log fields.
	level := strings.ToLower(c.Log.Level)
	switch level {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	format := strings.ToLower(c.Log.Format)
	switch format {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// Endpoint.TimeoutSeconds is deliberately left at 0: the default is an
// unbounded wait on the exchange, and a timeout only applies when one is
// configured explicitly.
func (c *Config) setDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// WarnPermissions logs a warning if the config file is readable by group or
// others. The file holds the endpoint credential, so loose permissions leak it.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
