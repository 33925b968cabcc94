package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "quadgrid", cmd.Use)
	assert.Contains(t, cmd.Long, "word-grouping")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"sync", "resolve", "serve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, _, err := execute(t, "resolve", "--format", "yaml", "--cache-dir", t.TempDir(), "2024-06-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("QUADGRID_FORMAT", "yaml")

	_, _, err := execute(t, "resolve", "--cache-dir", t.TempDir(), "2024-06-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("QUADGRID_FORMAT", "yaml")

	// An explicit flag wins over the environment; the failure is then
	// the empty cache dir, not the format.
	_, _, err := execute(t, "resolve", "--format", "text", "--cache-dir", t.TempDir(), "2024-06-01")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "invalid format")
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	portFlag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, portFlag)
	assert.Equal(t, "p", portFlag.Shorthand)
	assert.Equal(t, "8080", portFlag.DefValue)

	assert.NotNil(t, serveCmd.Flags().Lookup("strict-lock"))
}

func TestSyncCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	syncCmd, _, err := cmd.Find([]string{"sync"})
	require.NoError(t, err)

	for _, name := range []string{"config", "cache-dir", "base-url", "timezone", "from", "to", "timeout"} {
		assert.NotNil(t, syncCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}
