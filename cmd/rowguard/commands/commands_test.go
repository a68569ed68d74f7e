package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := GetRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	t.Cleanup(func() {
		cfgFile = ""
		outputFormat = "table"
		cmd.SetArgs(nil)
	})
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rowguard dev")
}

func TestInitCreatesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = run(t, "init", "--config", path)
	assert.Error(t, err, "init must not overwrite without --force")
}

func TestUserListOnFreshDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	_, err := run(t, "init", "--config", path)
	require.NoError(t, err)

	t.Setenv("ROWGUARD_DATABASE_SQLITE_PATH", filepath.Join(dir, "rowguard.db"))
	t.Setenv("ROWGUARD_LOGGING_OUTPUT", "stderr")

	out, err := run(t, "user", "list", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	_, err := run(t, "completion", "tcsh")
	assert.Error(t, err)
}
