package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("should write defaults when the file is missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "petsurf", "config.yaml")

		cfg, err := LoadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Sites, cfg.Sites)
		assert.Equal(t, BackendSQLite, cfg.StoreBackend)
		assert.Equal(t, path, cfg.Path())

		_, err = os.Stat(path)
		assert.NoError(t, err, "default config saved")
	})

	t.Run("should read yaml and keep defaults for missing fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("theme: nord\nstore_backend: bolt\nchrome:\n  headless: true\n"), 0o644))

		cfg, err := LoadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, "nord", cfg.Theme)
		assert.Equal(t, BackendBolt, cfg.StoreBackend)
		assert.True(t, cfg.Chrome.Headless)
		assert.Equal(t, 50, cfg.CacheSize)
	})

	t.Run("should let the environment override the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("theme: nord\n"), 0o644))
		t.Setenv("PETSURF_THEME", "dracula")
		t.Setenv("PETSURF_SITES", "a.example,b.example")

		cfg, err := LoadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, "dracula", cfg.Theme)
		assert.Equal(t, []string{"a.example", "b.example"}, cfg.Sites)
	})

	t.Run("should reject malformed environment values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		t.Setenv("PETSURF_CACHE_SIZE", "lots")

		_, err := LoadConfigFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env:")
	})

	t.Run("should reject unknown backends", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store_backend: redis\n"), 0o644))

		_, err := LoadConfigFile(path)
		require.ErrorIs(t, err, ErrUnknownBackend)
	})

	t.Run("should reject invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("theme: [\n"), 0o644))

		_, err := LoadConfigFile(path)
		require.Error(t, err)
	})
}

func TestOpenBackend(t *testing.T) {
	for _, name := range []string{BackendSQLite, BackendBolt} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.StoreBackend = name

			backend, db, err := cfg.OpenBackend(t.TempDir())
			require.NoError(t, err)
			defer backend.Close()

			assert.Equal(t, name == BackendSQLite, db != nil)
			require.NoError(t, backend.Origin(testOrigin).SetItem("k", "v"))
		})
	}

	cfg := DefaultConfig()
	cfg.StoreBackend = "redis"
	_, _, err := cfg.OpenBackend(t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
