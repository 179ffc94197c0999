package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/setupui"
)

// The wizard itself is exercised in the setupui package; here we only
// check the command wiring, since the interactive flow needs a TTY.

func TestSetupCmd_ShowsHelp(t *testing.T) {
	// When: executing setup --help
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"setup", "--help"})

	err := cmd.Execute()

	// Then: the help names the wizard and the config file it writes
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "setup")
	assert.Contains(t, output, "config")
}

func TestSetupCmd_RejectsArgs(t *testing.T) {
	// When: passing a positional argument
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"setup", "github"})

	err := cmd.Execute()

	// Then: the wizard takes no arguments
	require.Error(t, err)
}

func TestApplySetupResult_MergesCredentials(t *testing.T) {
	// Given: a config where pagerduty already has two values
	cfg := config.NewConfig()
	cfg.Connectors["pagerduty"] = config.ConnectorConfig{
		Credentials: map[string]string{
			"api_key":    "pd_old",
			"from_email": "oncall@example.com",
		},
	}

	// When: applying a wizard result that only replaces the key
	applySetupResult(cfg, setupui.Result{
		Connector:   "pagerduty",
		Credentials: map[string]string{"api_key": "pd_new"},
	})

	// Then: the new value lands, untouched keys survive, connector enables
	cc := cfg.Connectors["pagerduty"]
	assert.True(t, cc.Enabled)
	assert.Equal(t, "pd_new", cc.Credentials["api_key"])
	assert.Equal(t, "oncall@example.com", cc.Credentials["from_email"])
}

func TestApplySetupResult_NewConnectorFromNilMaps(t *testing.T) {
	// Given: a config with no connectors section at all
	cfg := config.NewConfig()
	cfg.Connectors = nil

	// When: applying a first-time wizard result
	applySetupResult(cfg, setupui.Result{
		Connector:   "github",
		Credentials: map[string]string{"token": "ghp_new"},
	})

	// Then: maps materialize and the connector is enabled
	cc := cfg.Connectors["github"]
	assert.True(t, cc.Enabled)
	assert.Equal(t, "ghp_new", cc.Credentials["token"])
}
