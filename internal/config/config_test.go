package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{"TOT_SPEC_ROOT", "TOT_BACKEND", "TOT_LOG_LEVEL", "TOT_LOG_FORMAT"}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.SpecRoot)
	assert.Equal(t, "rs", cfg.Backend)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "auto", cfg.Color)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := "spec_root = \"specs\"\nlog_level = \"DEBUG\"\nlog_format = \"json\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "specs"), cfg.SpecRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOT_SPEC_ROOT", "/tmp/specs")
	t.Setenv("TOT_LOG_LEVEL", "info")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/specs", cfg.SpecRoot)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadCalls(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `crate = "my_crate"

[calls."a::b::sync_func"]
sync = true

[calls.log]
path = "tracing::info"
sync = true
infallible = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "my_crate", cfg.Crate)
	assert.Equal(t, map[string]CallConfig{
		"a::b::sync_func": {Sync: true},
		"log":             {Path: "tracing::info", Sync: true, Infallible: true},
	}, cfg.Calls)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("color = \"sometimes\"\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid color")
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), nil, 0644))

	found, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), found)
}

func TestIsScalarTypeName(t *testing.T) {
	for _, name := range ScalarTypeNames {
		assert.True(t, IsScalarTypeName(name), name)
	}
	assert.False(t, IsScalarTypeName("list"))
	assert.False(t, IsScalarTypeName("Foo"))
}
