package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 0, cfg.Pipeline.QueueCapacity)
	assert.Equal(t, "block", cfg.Pipeline.FullPolicy)
	assert.True(t, cfg.Pipeline.DrainOnShutdown)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "tesseract", cfg.OCR.Engine)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
pipeline:
  workers: 5
  queue_capacity: 100
  full_policy: reject
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Pipeline.Workers)
	assert.Equal(t, 100, cfg.Pipeline.QueueCapacity)
	assert.Equal(t, "reject", cfg.Pipeline.FullPolicy)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("QUEUE_CAPACITY", "50")
	t.Setenv("DATABASE_PATH", "/tmp/other.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, 50, cfg.Pipeline.QueueCapacity)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
}

func TestEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "not-a-number")
	t.Setenv("QUEUE_CAPACITY", "-5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.Equal(t, 0, cfg.Pipeline.QueueCapacity)
}
