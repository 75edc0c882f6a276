package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 30*time.Second, cfg.Handshake.IODeadline)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xdaa.yaml")
	contents := []byte(`
handshake:
  io_deadline: 5s
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Handshake.IODeadline)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset fields still get defaults.
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadFromFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xdaa.json")
	contents := []byte(`{"logging": {"level": "warn"}}`)
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/xdaa.yaml")
	require.Error(t, err)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("XDAA_TEST_ADDR", ":7070")

	assert.Equal(t, ":7070", SubstituteEnvVars("${XDAA_TEST_ADDR}"))
	assert.Equal(t, "fallback", SubstituteEnvVars("${XDAA_TEST_UNSET:fallback}"))
	assert.Equal(t, "plain", SubstituteEnvVars("plain"))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("XDAA_ENV", "Production")
	assert.Equal(t, "production", GetEnvironment())
	assert.True(t, IsProduction())
}
