package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeServerLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.log")
	var content string
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func serverLogLine(level, msg string) string {
	return fmt.Sprintf(`{"time":"2026-08-25T10:00:00.000Z","level":%q,"msg":%q}`, level, msg)
}

func runLogsCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"logs"}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

func TestLogsCmd_TailsExistingFile(t *testing.T) {
	// Given: a log file with three entries
	path := writeServerLog(t,
		serverLogLine("INFO", "server started"),
		serverLogLine("INFO", "connector registered"),
		serverLogLine("WARN", "slow tool call"),
	)

	// When: tailing the last two lines
	out, err := runLogsCmd(t, "--file", path, "--no-color", "-n", "2")

	// Then: only the last two entries appear, after the file banner
	require.NoError(t, err)
	assert.Contains(t, out, "Log file: "+path)
	assert.NotContains(t, out, "server started")
	assert.Contains(t, out, "connector registered")
	assert.Contains(t, out, "slow tool call")
}

func TestLogsCmd_FiltersByLevel(t *testing.T) {
	// Given: a log file mixing info and error entries
	path := writeServerLog(t,
		serverLogLine("INFO", "routine work"),
		serverLogLine("ERROR", "github call failed"),
	)

	// When: asking for errors only
	out, err := runLogsCmd(t, "--file", path, "--no-color", "--level", "error")

	// Then: the info entry is dropped
	require.NoError(t, err)
	assert.NotContains(t, out, "routine work")
	assert.Contains(t, out, "github call failed")
}

func TestLogsCmd_FiltersByPattern(t *testing.T) {
	// Given: entries from two connectors
	path := writeServerLog(t,
		serverLogLine("INFO", "hubspot sync done"),
		serverLogLine("INFO", "notion sync done"),
	)

	// When: filtering on a connector name
	out, err := runLogsCmd(t, "--file", path, "--no-color", "--filter", "hubspot")

	// Then: only matching entries remain
	require.NoError(t, err)
	assert.Contains(t, out, "hubspot sync done")
	assert.NotContains(t, out, "notion sync done")
}

func TestLogsCmd_MissingFileErrors(t *testing.T) {
	// Given: a path with no log file behind it
	missing := filepath.Join(t.TempDir(), "absent.log")

	// When: tailing it
	_, err := runLogsCmd(t, "--file", missing)

	// Then: the error points at serve
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no log file at")
	assert.Contains(t, err.Error(), "patchbay serve")
}

func TestLogsCmd_DefaultPathUnderHome(t *testing.T) {
	// Given: a hermetic HOME with no logs written yet

	// When: running without --file
	_, err := runLogsCmd(t)

	// Then: the reported default path lives under ~/.patchbay/logs
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Join(".patchbay", "logs", "server.log"))
}

func TestLogsCmd_InvalidFilterErrors(t *testing.T) {
	// Given: a real log file but a broken regex
	path := writeServerLog(t, serverLogLine("INFO", "fine"))

	// When: passing an unclosed character class
	_, err := runLogsCmd(t, "--file", path, "--filter", "[")

	// Then: the error names the filter
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestLogsCmd_FollowStopsOnCanceledContext(t *testing.T) {
	// Given: a log file and an already-canceled context
	path := writeServerLog(t, serverLogLine("INFO", "old entry"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"logs", "--file", path, "--no-color", "-f"})

	// When: following with no chance to block
	err := cmd.ExecuteContext(ctx)

	// Then: the command exits cleanly
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Following...")
}

func TestLogsCmd_FlagDefaults(t *testing.T) {
	// Given: the logs command
	cmd := NewRootCmd()
	logsCmd, _, err := cmd.Find([]string{"logs"})
	require.NoError(t, err)

	// Then: defaults match the documented behavior
	tests := []struct {
		flag string
		want string
	}{
		{"follow", "false"},
		{"lines", "50"},
		{"level", ""},
		{"filter", ""},
		{"no-color", "false"},
		{"file", ""},
	}
	for _, tt := range tests {
		f := logsCmd.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "missing flag --%s", tt.flag)
		assert.Equal(t, tt.want, f.DefValue, "--%s default", tt.flag)
	}
}
