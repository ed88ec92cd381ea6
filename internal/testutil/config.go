package testutil

import (
	"testing"

	"github.com/spf13/viper"
)

// ResetViper clears viper now and again when the test completes.
func ResetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
}

// SetViperValues resets viper and applies values for the duration of the test.
func SetViperValues(t *testing.T, values map[string]any) {
	t.Helper()

	ResetViper(t)
	for k, v := range values {
		viper.Set(k, v)
	}
}

// ConfigureSandbox points every path setting at the test environment.
func ConfigureSandbox(t *testing.T, env *TestEnv) {
	t.Helper()

	SetViperValues(t, map[string]any{
		"data_dir":           env.Path("data"),
		"store.sqlite_path":  env.Path("shelf.db"),
		"cache.dbfile":       env.Path("cache.db"),
		"covers.dir":         env.Path("covers"),
		"export.dbfile":      env.Path("export.db"),
		"resolver.providers": []string{},
	})
}
