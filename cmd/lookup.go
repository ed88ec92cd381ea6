package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/lepinkainen/shelf/internal/errors"
)

// LookupCmd resolves metadata for an ISBN without storing anything
type LookupCmd struct {
	ISBN   string `arg:"" help:"ISBN-10 or ISBN-13, hyphens allowed"`
	Format string `short:"o" help:"Output format" enum:"table,json,yaml" default:"table"`
}

func (l *LookupCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		result := a.resolver.ResolveDetailed(ctx, l.ISBN)
		if !result.Found() {
			return fmt.Errorf("no metadata for %s after %d providers: %w", l.ISBN, result.Attempts, errors.ErrNotFound)
		}

		if l.Format != formatTable {
			return writeValue(stdout, l.Format, result)
		}
		_, err := fmt.Fprintf(stdout, "title\t%s\nauthors\t%s\ncover\t%s\nsource\t%s\n",
			result.Metadata.Title, strings.Join(result.Metadata.Authors, ", "), result.Metadata.Cover, result.Source)
		return err
	})
}
