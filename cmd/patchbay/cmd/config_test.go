package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbaylabs/patchbay/internal/config"
)

func runConfigCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"config"}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitCmd_CreatesFileFromTemplate(t *testing.T) {
	// Given: a home without a config file
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configHome := filepath.Join(tmpDir, "config")
	t.Setenv("XDG_CONFIG_HOME", configHome)

	// When: running config init
	out, err := runConfigCmd(t, "init")

	// Then: the template lands at the XDG path
	require.NoError(t, err)
	assert.Contains(t, out, "[ok] Created configuration")
	assert.Contains(t, out, "patchbay setup")

	data, err := os.ReadFile(filepath.Join(configHome, "patchbay", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# patchbay configuration")
	assert.Contains(t, string(data), "connectors:")
}

func TestConfigInitCmd_RefusesToOverwriteWithoutForce(t *testing.T) {
	// Given: an existing config file
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configHome := filepath.Join(tmpDir, "config")
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "patchbay")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("version: 1\n# mine\n"), 0o600))

	// When: running config init again
	out, err := runConfigCmd(t, "init")

	// Then: the existing file is untouched
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# mine")
}

func TestConfigInitCmd_ForceKeepsBackup(t *testing.T) {
	// Given: an existing config file with local edits
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configHome := filepath.Join(tmpDir, "config")
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "patchbay")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("version: 1\n# mine\n"), 0o600))

	// When: running config init --force
	out, err := runConfigCmd(t, "init", "--force")

	// Then: the template replaces the file and the edits survive in a backup
	require.NoError(t, err)
	assert.Contains(t, out, "Backup:")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# patchbay configuration")

	backups, err := filepath.Glob(cfgPath + ".bak.*")
	require.NoError(t, err)
	require.NotEmpty(t, backups, "A backup of the replaced file should exist")

	backup, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Contains(t, string(backup), "# mine")
}

func TestConfigShowCmd_RedactsCredentials(t *testing.T) {
	// Given: a config with a real-looking token
	clearConnectorEnv(t)
	writeUserConfig(t, `connectors:
  github:
    enabled: true
    credentials:
      token: ghp_secret_value
`)

	// When: showing the config
	out, err := runConfigCmd(t, "show")

	// Then: the token never reaches the terminal
	require.NoError(t, err)
	assert.NotContains(t, out, "ghp_secret_value")
	assert.Contains(t, out, "[set]")
}

func TestConfigShowCmd_JSONMergesDefaults(t *testing.T) {
	// Given: a config that only enables a connector
	clearConnectorEnv(t)
	writeUserConfig(t, `connectors:
  github:
    enabled: true
    credentials:
      token: ghp_secret_value
`)

	// When: showing the config as JSON
	out, err := runConfigCmd(t, "show", "--json")

	// Then: defaults fill the unset sections and credentials stay redacted
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	require.Contains(t, cfg.Connectors, "github")
	assert.True(t, cfg.Connectors["github"].Enabled)
	assert.Equal(t, "[set]", cfg.Connectors["github"].Credentials["token"])
}

func TestConfigPathCmd_PrintsUserPath(t *testing.T) {
	// Given: a hermetic config home
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configHome := filepath.Join(tmpDir, "config")
	t.Setenv("XDG_CONFIG_HOME", configHome)

	// When: printing the path
	out, err := runConfigCmd(t, "path")

	// Then: the XDG path is printed
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(configHome, "patchbay", "config.yaml"))
}

func TestConfigPathCmd_HonorsExplicitConfigFlag(t *testing.T) {
	// Given: an explicit --config path
	explicit := filepath.Join(t.TempDir(), "elsewhere.yaml")

	// When: printing the path with the flag set
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "path", "--config", explicit})

	err := cmd.Execute()

	// Then: the explicit path wins
	require.NoError(t, err)
	assert.Contains(t, buf.String(), explicit)
}
