package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	assert.NoError(t, run([]string{"-version"}))
}

func TestRun_UnknownFlag(t *testing.T) {
	assert.Error(t, run([]string{"-bogus"}))
}

func TestRun_InvalidMode(t *testing.T) {
	dir := t.TempDir()
	env := "DB_DRIVER=sqlite\nDB_SQLITE_PATH=" + filepath.Join(dir, "users.db") + "\nLOG_OUTPUT_PATH=stderr\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o600))

	err := run([]string{"-config", dir, "-mode", "grpc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_MODE")
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, ".", defaultConfigPath())

	t.Setenv("CONFIG_PATH", "/etc/usersvc")
	assert.Equal(t, "/etc/usersvc", defaultConfigPath())
}
