package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHomeFollowsHOME(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, home, UserHome())
}

func TestCheckFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "common.yaml")
	require.NoError(t, os.WriteFile(file, []byte("options: {}\n"), 0o644))

	assert.True(t, CheckFileExists(file))
	assert.True(t, CheckFileExists(dir))
	assert.False(t, CheckFileExists(filepath.Join(dir, "missing.yaml")))
}

func TestCheckDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "board.yaml")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.True(t, CheckDirExists(dir))
	assert.False(t, CheckDirExists(file))
	assert.False(t, CheckDirExists(filepath.Join(dir, "missing")))
}
