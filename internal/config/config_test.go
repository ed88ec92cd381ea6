package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelf/internal/blob"
	"github.com/lepinkainen/shelf/internal/testutil"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, blob.BackendFS, cfg.Store.Backend)
	assert.Equal(t, "books", cfg.Store.Namespace)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Resolver.Timeout)
	assert.Equal(t, []string{ProviderOpenLibrary, ProviderGoogleBooks, ProviderISBNdb}, cfg.Resolver.Providers)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 720*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 600, cfg.Covers.Width)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/books")
	t.Setenv("PORT", "8080")
	t.Setenv("SHELF_STORE_BACKEND", "memory")
	t.Setenv("SHELF_RESOLVER_TIMEOUT", "250ms")
	t.Setenv("ISBNDB_API_KEY", "secret")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "/srv/books", cfg.DataDir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, blob.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Resolver.Timeout)
	assert.Equal(t, "secret", cfg.ISBNdbAPIKey)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{name: "backend", key: "store.backend", value: "mongo", want: "unknown store.backend"},
		{name: "namespace", key: "store.namespace", value: "../x", want: "namespace"},
		{name: "postgres without dsn", key: "store.backend", value: "postgres", want: "postgres_dsn"},
		{name: "port", key: "server.port", value: 0, want: "out of range"},
		{name: "timeout", key: "resolver.timeout", value: "soon", want: "invalid resolver.timeout"},
		{name: "zero timeout", key: "resolver.timeout", value: "0s", want: "must be positive"},
		{name: "provider", key: "resolver.providers", value: []string{"amazon"}, want: "unknown resolver provider"},
		{name: "ttl", key: "cache.ttl", value: "forever", want: "invalid cache.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBlobOptions(t *testing.T) {
	v := newViper()
	v.Set("data_dir", "/tmp/shelf")
	v.Set("store.backend", "sqlite")

	cfg, err := Load(v)
	require.NoError(t, err)

	opts := cfg.BlobOptions()
	assert.Equal(t, blob.BackendSQLite, opts.Backend)
	assert.Equal(t, "/tmp/shelf", opts.DataDir)
	assert.Equal(t, "books", opts.Namespace)
	assert.Equal(t, "./shelf.db", opts.SQLitePath)
}

func TestLoadDotEnv(t *testing.T) {
	env := testutil.NewTestEnv(t)

	// Missing files are skipped
	require.NoError(t, LoadDotEnv(env.Path("missing.env")))

	t.Setenv("SHELF_TEST_DOTENV_KEPT", "kept")
	path := env.WriteFileString("test.env", "SHELF_TEST_DOTENV_KEPT=overwritten\nSHELF_TEST_DOTENV_NEW=loaded\n")
	t.Cleanup(func() { _ = os.Unsetenv("SHELF_TEST_DOTENV_NEW") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "kept", os.Getenv("SHELF_TEST_DOTENV_KEPT"))
	assert.Equal(t, "loaded", os.Getenv("SHELF_TEST_DOTENV_NEW"))
}
