// Package config handles configuration for the studio CLI.
package config

import (
	"os"
	"path/filepath"
)

// Config holds runtime settings for the studio CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the studio server HTTP API.
//   - TokenFile: where the access token is cached between invocations.
type Config struct {
	ServerEndpointAddr string
	TokenFile          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.TokenFile = filepath.Join(home, ".imagestudio", "token")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and environment variables. Later sources take precedence
// over earlier ones. Command-line overrides are applied by the CLI itself.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	return cfg
}

// parseEnv overlays values from the environment.
//
// Supported variables:
//
//	STUDIO_SERVER_ADDR  base URL of the studio server
//	STUDIO_TOKEN_FILE   access token cache location
func parseEnv(cfg *Config) {
	if v := os.Getenv("STUDIO_SERVER_ADDR"); v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v := os.Getenv("STUDIO_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
}
