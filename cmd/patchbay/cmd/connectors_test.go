package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearConnectorEnv blanks every credential env var so a developer's real
// tokens cannot leak into listing assertions.
func clearConnectorEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"WHAPI_API_TOKEN",
		"HUBSPOT_ACCESS_TOKEN",
		"PAGERDUTY_API_KEY",
		"PAGERDUTY_FROM_EMAIL",
		"NOTION_API_TOKEN",
		"GITHUB_TOKEN",
		"PINECONE_API_KEY",
		"PINECONE_INDEX_HOST",
		"REPLICATE_API_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func runConnectorsCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"connectors"}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

func TestConnectorsCmd_ListsWholeCatalog(t *testing.T) {
	// Given: no config and no credential env vars
	clearConnectorEnv(t)

	// When: listing connectors
	out, err := runConnectorsCmd(t)

	// Then: every shipped connector appears under the table header
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "CREDENTIALS")
	for _, name := range []string{"whapi", "hubspot", "pagerduty", "notion", "github", "pinecone", "replicate"} {
		assert.Contains(t, out, name, "Catalog listing should include %s", name)
	}
}

func TestConnectorsCmd_UnconfiguredShowsMissingCredentials(t *testing.T) {
	// Given: no credentials anywhere
	clearConnectorEnv(t)

	// When: listing connectors
	out, err := runConnectorsCmd(t)

	// Then: credential gaps are named and tool counts are unknown
	require.NoError(t, err)
	assert.Contains(t, out, "missing: token", "GitHub's required key should be named")
	assert.NotContains(t, out, " ok ", "No connector should report resolved credentials")
}

func TestConnectorsCmd_EnvCredentialCountsTools(t *testing.T) {
	// Given: a GitHub token in the environment only
	clearConnectorEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	// When: listing connectors
	out, err := runConnectorsCmd(t)

	// Then: the github row resolves credentials and counts its tools
	require.NoError(t, err)

	var githubLine string
	for _, line := range bytes.Split([]byte(out), []byte("\n")) {
		if bytes.HasPrefix(line, []byte("github")) {
			githubLine = string(line)
		}
	}
	require.NotEmpty(t, githubLine, "Listing should have a github row")
	assert.Contains(t, githubLine, "ok")
	assert.Contains(t, githubLine, "3", "GitHub ships three tools")
}

func TestConnectorsDescribe_UnknownConnectorErrors(t *testing.T) {
	clearConnectorEnv(t)

	_, err := runConnectorsCmd(t, "describe", "fax-machine")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown connector")
	assert.Contains(t, err.Error(), "github", "Error should list known connectors")
}

func TestConnectorsDescribe_ShowsCredentialSpecs(t *testing.T) {
	// Given: no credentials
	clearConnectorEnv(t)

	// When: describing github
	out, err := runConnectorsCmd(t, "describe", "github")

	// Then: the credential spec and its env var are shown, tools are not
	require.NoError(t, err)
	assert.Contains(t, out, "token")
	assert.Contains(t, out, "GITHUB_TOKEN")
	assert.Contains(t, out, "required")
	assert.Contains(t, out, "unset")
	assert.Contains(t, out, "unavailable until credentials are configured")
}

func TestConnectorsDescribe_WithCredentialListsTools(t *testing.T) {
	// Given: a GitHub token in the environment
	clearConnectorEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	// When: describing github
	out, err := runConnectorsCmd(t, "describe", "github")

	// Then: the tool listing is real, not a placeholder
	require.NoError(t, err)
	assert.Contains(t, out, "set")
	assert.Contains(t, out, "github_get_repository")
	assert.Contains(t, out, "github_search_issues")
	assert.Contains(t, out, "github_list_pull_requests")
	assert.NotContains(t, out, "unavailable")
}
