// Package config turns viper settings into the explicit configuration handed
// to the store, resolver and server constructors.
package config

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lepinkainen/shelf/internal/blob"
)

// Provider names accepted in resolver.providers.
const (
	ProviderOpenLibrary = "openlibrary"
	ProviderGoogleBooks = "googlebooks"
	ProviderISBNdb      = "isbndb"
)

// Config is the resolved application configuration.
type Config struct {
	DataDir  string
	Store    StoreConfig
	Server   ServerConfig
	Resolver ResolverConfig
	Cache    CacheConfig
	Covers   CoversConfig
	Export   ExportConfig

	GoogleBooksAPIKey string
	ISBNdbAPIKey      string
}

type StoreConfig struct {
	Backend     string
	Namespace   string
	SQLitePath  string
	PostgresDSN string
}

type ServerConfig struct {
	Port int
}

type ResolverConfig struct {
	Timeout time.Duration
	// Providers lists lookup sources in priority order.
	Providers []string
}

type CacheConfig struct {
	Enabled bool
	DBFile  string
	TTL     time.Duration
}

type CoversConfig struct {
	Dir   string
	Width int
}

type ExportConfig struct {
	DBFile         string
	DatasetteURL   string
	DatasetteToken string
}

// SetDefaults registers every default and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")
	v.SetDefault("store.backend", blob.BackendFS)
	v.SetDefault("store.namespace", "books")
	v.SetDefault("store.sqlite_path", "./shelf.db")
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("server.port", 3000)
	v.SetDefault("resolver.timeout", "5s")
	v.SetDefault("resolver.providers", []string{ProviderOpenLibrary, ProviderGoogleBooks, ProviderISBNdb})
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dbfile", "./cache.db")
	v.SetDefault("cache.ttl", "720h") // 30 days
	v.SetDefault("covers.dir", "./covers")
	v.SetDefault("covers.width", 600)
	v.SetDefault("export.dbfile", "./shelf-export.db")
	v.SetDefault("googlebooks.api_key", "")
	v.SetDefault("isbndb.api_key", "")
	v.SetDefault("datasette.url", "")
	v.SetDefault("datasette.token", "")

	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments.
	_ = v.BindEnv("data_dir", "SHELF_DATA_DIR", "DATA_DIR")
	_ = v.BindEnv("server.port", "SHELF_SERVER_PORT", "PORT")
	_ = v.BindEnv("googlebooks.api_key", "SHELF_GOOGLEBOOKS_API_KEY", "GOOGLE_BOOKS_API_KEY")
	_ = v.BindEnv("isbndb.api_key", "SHELF_ISBNDB_API_KEY", "ISBNDB_API_KEY")
}

// Load reads the configuration from v.
func Load(v *viper.Viper) (Config, error) {
	timeout, err := parseDuration(v, "resolver.timeout")
	if err != nil {
		return Config{}, err
	}
	ttl, err := parseDuration(v, "cache.ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DataDir: v.GetString("data_dir"),
		Store: StoreConfig{
			Backend:     v.GetString("store.backend"),
			Namespace:   v.GetString("store.namespace"),
			SQLitePath:  v.GetString("store.sqlite_path"),
			PostgresDSN: v.GetString("store.postgres_dsn"),
		},
		Server: ServerConfig{Port: v.GetInt("server.port")},
		Resolver: ResolverConfig{
			Timeout:   timeout,
			Providers: v.GetStringSlice("resolver.providers"),
		},
		Cache: CacheConfig{
			Enabled: v.GetBool("cache.enabled"),
			DBFile:  v.GetString("cache.dbfile"),
			TTL:     ttl,
		},
		Covers: CoversConfig{
			Dir:   v.GetString("covers.dir"),
			Width: v.GetInt("covers.width"),
		},
		Export: ExportConfig{
			DBFile:         v.GetString("export.dbfile"),
			DatasetteURL:   v.GetString("datasette.url"),
			DatasetteToken: v.GetString("datasette.token"),
		},
		GoogleBooksAPIKey: v.GetString("googlebooks.api_key"),
		ISBNdbAPIKey:      v.GetString("isbndb.api_key"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations no component can run with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case blob.BackendFS, blob.BackendSQLite, blob.BackendPostgres, blob.BackendMemory:
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if err := blob.ValidateNamespace(c.Store.Namespace); err != nil {
		return err
	}
	if c.Store.Backend == blob.BackendPostgres && c.Store.PostgresDSN == "" {
		return fmt.Errorf("store.postgres_dsn is required for the postgres backend")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Resolver.Timeout <= 0 {
		return fmt.Errorf("resolver.timeout must be positive")
	}
	for _, name := range c.Resolver.Providers {
		switch name {
		case ProviderOpenLibrary, ProviderGoogleBooks, ProviderISBNdb:
		default:
			return fmt.Errorf("unknown resolver provider %q", name)
		}
	}
	return nil
}

// BlobOptions maps the store settings onto blob.Open options.
func (c Config) BlobOptions() blob.Options {
	return blob.Options{
		Backend:     c.Store.Backend,
		DataDir:     c.DataDir,
		Namespace:   c.Store.Namespace,
		SQLitePath:  c.Store.SQLitePath,
		PostgresDSN: c.Store.PostgresDSN,
	}
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Missing files
// are skipped and existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if stdErrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
