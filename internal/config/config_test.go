package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/outlet/internal/errors"
	"github.com/vango-dev/outlet/pkg/loader"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))
	return dir
}

func TestNewDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, DefaultAddress, cfg.Address)
	assert.Equal(t, DefaultManifest, cfg.Manifest)
	assert.Equal(t, loader.Waterfall, cfg.Strategy())
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
	require.NoError(t, cfg.Validate())

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, DefaultCacheTTL, ttl)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultAddress, cfg.Address)
	assert.Equal(t, filepath.Join(dir, DefaultManifest), cfg.ManifestPath())
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, `{
		"address": ":8080",
		"manifest": "app/routes.yaml",
		"loader": {"strategy": "Parallel", "concurrency": 4},
		"log": {"level": "debug", "format": "json"},
		"cache": {"backend": "REDIS", "addr": "localhost:6379", "ttl": "1h"},
		"shutdownTimeout": "3s"
	}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, filepath.Join(dir, "app", "routes.yaml"), cfg.ManifestPath())
	assert.Equal(t, loader.Parallel, cfg.Strategy())
	assert.Equal(t, 4, cfg.Loader.Concurrency)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "outlet:data:", cfg.Cache.Prefix)
	assert.Equal(t, "outlet", cfg.Metrics.Namespace)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.Path())

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)
	shutdown, err := cfg.ShutdownDuration()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, shutdown)
}

func TestLoadEmptiedFieldsGetDefaults(t *testing.T) {
	dir := writeConfig(t, `{"address": "", "log": {"level": ""}, "cache": {"backend": ""}}`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultAddress, cfg.Address)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := writeConfig(t, `{"address": `)
	_, err := Load(dir)
	require.Error(t, err)

	var oe *errors.OutletError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "E101", oe.Code)
}

func TestLoadFileUnreadable(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	var oe *errors.OutletError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "E100", oe.Code)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		code   string
	}{
		{"unknown strategy", func(c *Config) { c.Loader.Strategy = "eager" }, "E102"},
		{"negative concurrency", func(c *Config) { c.Loader.Concurrency = -1 }, "E103"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "E104"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "E105"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "E105"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = BackendRedis }, "E106"},
		{"bad ttl", func(c *Config) { c.Cache.TTL = "forever" }, ""},
		{"bad shutdown", func(c *Config) { c.ShutdownTimeout = "soon" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var oe *errors.OutletError
			require.ErrorAs(t, err, &oe)
			assert.Equal(t, tt.code, oe.Code)
		})
	}
}

func TestSaveTo(t *testing.T) {
	cfg := New()
	cfg.Address = ":9000"
	cfg.Loader.Strategy = "parallel"

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, cfg.SaveTo(path))
	assert.Equal(t, path, cfg.Path())

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", loaded.Address)
	assert.Equal(t, loader.Parallel, loaded.Strategy())
}
