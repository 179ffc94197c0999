// Package config loads and validates patchbay configuration.
//
// Configuration is applied in order of increasing precedence: hardcoded
// defaults, the user config file (~/.config/patchbay/config.yaml), then
// PATCHBAY_* environment variables. Connector credentials resolve through
// the same chain, with per-credential environment variables declared by
// each connector.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete patchbay configuration.
type Config struct {
	Version    int                        `yaml:"version" json:"version"`
	Server     ServerConfig               `yaml:"server" json:"server"`
	Search     SearchConfig               `yaml:"search" json:"search"`
	Connectors map[string]ConnectorConfig `yaml:"connectors" json:"connectors"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Transport selects how the server speaks MCP: "stdio" or "http".
	Transport string `yaml:"transport" json:"transport"`
	// Addr is the listen address for the http transport (ignored for stdio).
	Addr     string `yaml:"addr" json:"addr"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// SearchConfig carries the default ranking options used by connectors that
// search fetched records (threshold, result cap, BM25 parameters).
type SearchConfig struct {
	Threshold  float64 `yaml:"threshold" json:"threshold"`
	MaxResults int     `yaml:"max_results" json:"max_results"`
	K1         float64 `yaml:"k1" json:"k1"`
	B          float64 `yaml:"b" json:"b"`
}

// ConnectorConfig configures a single connector.
type ConnectorConfig struct {
	// Enabled must be set to true for the connector to be served.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Credentials maps credential keys declared by the connector to values.
	// Values left empty here may still resolve via environment variables.
	Credentials map[string]string `yaml:"credentials" json:"credentials"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Transport: "stdio",
			Addr:      ":8700",
			LogLevel:  "info",
		},
		Search: SearchConfig{
			Threshold:  0,
			MaxResults: 50,
			K1:         1.2,
			B:          0.75,
		},
		Connectors: map[string]ConnectorConfig{},
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/patchbay/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/patchbay/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "patchbay", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "patchbay", "config.yaml")
	}
	return filepath.Join(home, ".config", "patchbay", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration with the standard precedence chain.
// When explicitPath is non-empty that file must exist; otherwise the user
// config is loaded if present and defaults are used if not.
func Load(explicitPath string) (*Config, error) {
	cfg := NewConfig()

	path := explicitPath
	if path == "" {
		path = GetUserConfigPath()
		if !fileExists(path) {
			path = ""
		}
	} else if !fileExists(path) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Parse into a scratch struct so defaults survive unset keys
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}

	// Threshold zero is the default, so only the others merge by non-zero
	if other.Search.Threshold != 0 {
		c.Search.Threshold = other.Search.Threshold
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.K1 != 0 {
		c.Search.K1 = other.Search.K1
	}
	if other.Search.B != 0 {
		c.Search.B = other.Search.B
	}

	for name, cc := range other.Connectors {
		c.Connectors[name] = cc
	}
}

// applyEnvOverrides applies PATCHBAY_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PATCHBAY_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
	if v := os.Getenv("PATCHBAY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PATCHBAY_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Credential resolves a credential value for a connector.
// Order: connector config value, then the envVar declared by the connector.
func (c *Config) Credential(connector, key, envVar string) string {
	if cc, ok := c.Connectors[connector]; ok {
		if v := cc.Credentials[key]; v != "" {
			return v
		}
	}
	if envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}

// EnabledConnectors returns the names of connectors marked enabled.
func (c *Config) EnabledConnectors() []string {
	var names []string
	for name, cc := range c.Connectors {
		if cc.Enabled {
			names = append(names, name)
		}
	}
	return names
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	validTransports := map[string]bool{"stdio": true, "http": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio' or 'http', got %s", c.Server.Transport)
	}

	if strings.ToLower(c.Server.Transport) == "http" && c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required for the http transport")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be non-negative, got %d", c.Search.MaxResults)
	}
	if c.Search.K1 < 0 {
		return fmt.Errorf("search.k1 must be non-negative, got %f", c.Search.K1)
	}
	if c.Search.B < 0 || c.Search.B > 1 {
		return fmt.Errorf("search.b must be between 0 and 1, got %f", c.Search.B)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file, creating the parent
// directory if needed. The file may hold credentials, so it is written
// owner-only.
func (c *Config) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
