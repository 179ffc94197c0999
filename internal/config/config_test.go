package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration file exists
	cfg := NewConfig()

	// Then: all defaults should be applied
	require.NotNil(t, cfg)

	// Server defaults
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, ":8700", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Server.LogLevel)

	// Search defaults mirror the ranking library defaults
	assert.Equal(t, 0.0, cfg.Search.Threshold)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	assert.Equal(t, 1.2, cfg.Search.K1)
	assert.Equal(t, 0.75, cfg.Search.B)

	// No connectors are enabled out of the box
	assert.Empty(t, cfg.Connectors)
}

func TestLoad_MissingUserConfigUsesDefaults(t *testing.T) {
	// Given: XDG_CONFIG_HOME points at an empty directory
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// When: loading without an explicit path
	cfg, err := Load("")

	// Then: defaults are returned without error
	require.NoError(t, err)
	assert.Equal(t, "stdio", cfg.Server.Transport)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	// When: loading a nonexistent explicit path
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	// Then: it fails
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	// Given: a config file that sets some keys
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  transport: http
  addr: ":9100"
search:
  max_results: 10
connectors:
  whapi:
    enabled: true
    credentials:
      api_token: tok-123
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When: loading it
	cfg, err := Load(path)
	require.NoError(t, err)

	// Then: file values win where set
	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Search.MaxResults)

	// And: unset keys keep defaults
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 1.2, cfg.Search.K1)

	// And: connectors come through
	require.Contains(t, cfg.Connectors, "whapi")
	assert.True(t, cfg.Connectors["whapi"].Enabled)
	assert.Equal(t, "tok-123", cfg.Connectors["whapi"].Credentials["api_token"])
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	// Given: a config file and conflicting env vars
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  transport: stdio\n"), 0o644))

	t.Setenv("PATCHBAY_TRANSPORT", "http")
	t.Setenv("PATCHBAY_ADDR", ":9999")
	t.Setenv("PATCHBAY_LOG_LEVEL", "debug")

	// When: loading
	cfg, err := Load(path)
	require.NoError(t, err)

	// Then: env wins
	assert.Equal(t, "http", cfg.Server.Transport)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoad_RejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestValidate_RejectsUnknownTransport(t *testing.T) {
	cfg := NewConfig()
	cfg.Server.Transport = "carrier-pigeon"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport")
}

func TestValidate_HTTPRequiresAddr(t *testing.T) {
	cfg := NewConfig()
	cfg.Server.Transport = "http"
	cfg.Server.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "addr")
}

func TestValidate_RejectsBadSearchValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative max_results", func(c *Config) { c.Search.MaxResults = -1 }},
		{"negative k1", func(c *Config) { c.Search.K1 = -0.1 }},
		{"b above one", func(c *Config) { c.Search.B = 1.5 }},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCredential_ConfigValueWins(t *testing.T) {
	// Given: a credential in config and a different one in env
	cfg := NewConfig()
	cfg.Connectors["github"] = ConnectorConfig{
		Enabled:     true,
		Credentials: map[string]string{"token": "from-config"},
	}
	t.Setenv("PATCHBAY_GITHUB_TOKEN", "from-env")

	// Then: config wins
	assert.Equal(t, "from-config", cfg.Credential("github", "token", "PATCHBAY_GITHUB_TOKEN"))
}

func TestCredential_FallsBackToEnv(t *testing.T) {
	cfg := NewConfig()
	cfg.Connectors["github"] = ConnectorConfig{Enabled: true}
	t.Setenv("PATCHBAY_GITHUB_TOKEN", "from-env")

	assert.Equal(t, "from-env", cfg.Credential("github", "token", "PATCHBAY_GITHUB_TOKEN"))
}

func TestCredential_MissingEverywhereIsEmpty(t *testing.T) {
	cfg := NewConfig()
	assert.Empty(t, cfg.Credential("notion", "api_token", "PATCHBAY_TEST_UNSET_VAR"))
}

func TestEnabledConnectors_FiltersDisabled(t *testing.T) {
	cfg := NewConfig()
	cfg.Connectors["whapi"] = ConnectorConfig{Enabled: true}
	cfg.Connectors["notion"] = ConnectorConfig{Enabled: false}
	cfg.Connectors["github"] = ConnectorConfig{Enabled: true}

	names := cfg.EnabledConnectors()
	assert.ElementsMatch(t, []string{"whapi", "github"}, names)
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	// Given: a config with a connector
	cfg := NewConfig()
	cfg.Server.Transport = "http"
	cfg.Connectors["pinecone"] = ConnectorConfig{
		Enabled:     true,
		Credentials: map[string]string{"api_key": "pc-key"},
	}

	// When: writing and reloading
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	// Then: the values survive
	assert.Equal(t, "http", loaded.Server.Transport)
	assert.Equal(t, "pc-key", loaded.Connectors["pinecone"].Credentials["api_key"])
}

func TestGetUserConfigPath_RespectsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := GetUserConfigPath()
	assert.Equal(t, filepath.Join(dir, "patchbay", "config.yaml"), path)
}
