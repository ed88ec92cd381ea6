package cmd

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/lepinkainen/shelf/internal/cache"
)

// CacheCmd groups cache maintenance subcommands
type CacheCmd struct {
	Invalidate InvalidateCacheCmd `cmd:"" help:"Drop cached lookups of one provider"`
}

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: openlibrary, googlebooks, isbndb" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tableName, ok := cache.SourceTables[i.Source]
	if !ok {
		sources := slices.Sorted(maps.Keys(cache.SourceTables))
		return fmt.Errorf("invalid cache source '%s'; valid sources are: %s", i.Source, strings.Join(sources, ", "))
	}

	db, err := cache.Open(cfg.Cache.DBFile, cfg.Cache.TTL)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = db.Close() }()

	slog.Info("Invalidating cache", "source", i.Source, "database", db.Path())

	rowsDeleted, err := db.Invalidate(tableName)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	_, err = fmt.Fprintf(stdout, "removed %d cached lookups for %s\n", rowsDeleted, i.Source)
	return err
}
