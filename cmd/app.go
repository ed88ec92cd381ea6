package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/viper"

	"github.com/lepinkainen/shelf/internal/blob"
	"github.com/lepinkainen/shelf/internal/cache"
	"github.com/lepinkainen/shelf/internal/catalog"
	"github.com/lepinkainen/shelf/internal/config"
	"github.com/lepinkainen/shelf/internal/enrichment/book"
	"github.com/lepinkainen/shelf/internal/enrichment/book/enrichers"
	"github.com/lepinkainen/shelf/internal/store"
)

// app holds the services one command invocation needs.
type app struct {
	cfg      config.Config
	store    *store.Store
	cache    *cache.DB
	resolver *book.Resolver
	catalog  *catalog.Service
}

// loadConfig reads the configuration from the global viper instance.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// openApp wires the store, lookup cache, resolver and catalog from the
// current configuration.
var openApp = func(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	bucket, err := blob.Open(ctx, cfg.BlobOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	a := &app{cfg: cfg, store: store.New(bucket)}

	if cfg.Cache.Enabled {
		a.cache, err = cache.Open(cfg.Cache.DBFile, cfg.Cache.TTL)
		if err != nil {
			// Lookups still work without the cache.
			slog.Warn("Lookup cache unavailable", "path", cfg.Cache.DBFile, "error", err)
			a.cache = nil
		}
	}

	providers := enrichers.Providers(cfg.Resolver.Providers, enrichers.Settings{
		GoogleBooksAPIKey: cfg.GoogleBooksAPIKey,
		ISBNdbAPIKey:      cfg.ISBNdbAPIKey,
		Cache:             a.cache,
		UserAgent:         userAgent(),
		HTTPClient:        &http.Client{Timeout: cfg.Resolver.Timeout},
	})
	a.resolver = book.NewResolver(cfg.Resolver.Timeout, providers...)
	a.catalog = catalog.New(a.store, a.resolver)

	slog.Debug("Catalog opened",
		"backend", cfg.Store.Backend,
		"namespace", cfg.Store.Namespace,
		"providers", a.resolver.ProviderNames())
	return a, nil
}

// Close releases the store and cache.
func (a *app) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.store.Close())
	return stdErrors.Join(errs...)
}

// withApp opens the app, runs fn and closes the app.
func withApp(ctx context.Context, fn func(*app) error) (err error) {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = stdErrors.Join(err, a.Close())
	}()
	return fn(a)
}
