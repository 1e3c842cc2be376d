package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitConfigWritesSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, initConfig(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[search]")
	require.Contains(t, string(data), "[[groups]]")
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# hand-edited\n"), 0644))

	err := initConfig(path, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "--force")

	// The existing file is untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# hand-edited\n", string(data))
}

func TestInitConfigForceOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# hand-edited\n"), 0644))

	require.NoError(t, initConfig(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[search]")
}
