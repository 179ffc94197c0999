package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchbaylabs/patchbay/pkg/version"
)

func runVersionCmd(t *testing.T, args ...string) string {
	t.Helper()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"version"}, args...))

	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestVersionCmd_Default(t *testing.T) {
	// When: printing the version
	out := runVersionCmd(t)

	// Then: the full build string is shown
	assert.Contains(t, out, "patchbay")
	assert.Contains(t, out, version.Version)
	assert.Contains(t, out, "commit:")
}

func TestVersionCmd_Short(t *testing.T) {
	// When: printing with --short
	out := runVersionCmd(t, "--short")

	// Then: only the bare version
	assert.Equal(t, version.Version, strings.TrimSpace(out))
}

func TestVersionCmd_JSON(t *testing.T) {
	// When: printing with --json
	out := runVersionCmd(t, "--json")

	// Then: structured build info decodes
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.OS)
	assert.NotEmpty(t, info.Arch)
}

func TestVersionCmd_ShortBeatsJSON(t *testing.T) {
	// When: passing both --short and --json
	out := runVersionCmd(t, "--short", "--json")

	// Then: short output wins
	assert.Equal(t, version.Version, strings.TrimSpace(out))
}
