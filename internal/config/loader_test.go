package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9191
database:
  host: localhost
  name: docrisk
cache:
  backend: memory
  ttl: 2m
retrieval:
  backing_url: http://scores.internal:8080
  prefetch_next_page: true
worker:
  concurrency: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "http://scores.internal:8080", cfg.Retrieval.BackingURL)
	assert.True(t, cfg.Retrieval.PrefetchNextPage)
	assert.Equal(t, 4, cfg.Worker.Concurrency)

	// Unset keys still receive defaults.
	assert.Equal(t, DefaultMaxRetries, cfg.Retrieval.MaxRetries)
	assert.Equal(t, DefaultRetryBaseDelay, cfg.Retrieval.RetryBaseDelay)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: localhost
  name: docrisk
cache:
  backend: memcached
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.backend")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: localhost
  name: docrisk
server:
  port: 8080
`)
	t.Setenv("DOCRISK_SERVER_PORT", "9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestWatchRequiresPath(t *testing.T) {
	err := Watch("", func(*Config) {})
	assert.Error(t, err)
}

func TestWatchDeliversValidUpdates(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: localhost
  name: docrisk
server:
  port: 8080
`)

	var got atomic.Pointer[Config]
	require.NoError(t, Watch(path, func(cfg *Config) { got.Store(cfg) }))

	require.NoError(t, os.WriteFile(path, []byte(`
database:
  host: localhost
  name: docrisk
server:
  port: 9090
`), 0o644))

	require.Eventually(t, func() bool {
		cfg := got.Load()
		return cfg != nil && cfg.Server.Port == 9090
	}, 3*time.Second, 25*time.Millisecond)
}
