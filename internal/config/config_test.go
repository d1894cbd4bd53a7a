package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSetAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, Set(path, "region", "eu-central-1"))
	require.NoError(t, Set(path, "output", "true"))
	require.NoError(t, Set(path, "env_file", "/srv/app/.env"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		EnvFile: "/srv/app/.env",
		Region:  "eu-central-1",
		Output:  true,
	}, cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSetRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	assert.ErrorContains(t, Set(path, "colour", "blue"), "unknown config key")
	assert.ErrorContains(t, Set(path, "output", "maybe"), "output must be true or false")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestKeysSorted(t *testing.T) {
	assert.Equal(t, []string{"auth_profile", "credentials_file", "env_file", "output", "region"}, Keys())
}
