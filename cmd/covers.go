package cmd

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/shelf/internal/catalog"
	"github.com/lepinkainen/shelf/internal/errors"
	"github.com/lepinkainen/shelf/internal/fileutil"
	"github.com/lepinkainen/shelf/internal/record"
)

// CoversCmd downloads remote covers and rewrites records to the local copy
type CoversCmd struct {
	Dir   string `help:"Directory for cover files (default covers.dir)"`
	Width int    `help:"Maximum width in pixels (default covers.width)"`
	Force bool   `help:"Re-download covers that already exist"`
}

// coverStats counts what localizeCovers did.
type coverStats struct {
	Downloaded int
	Existing   int
	Failed     int
}

func (c *CoversCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		dir := c.Dir
		if dir == "" {
			dir = a.cfg.Covers.Dir
		}
		width := c.Width
		if width == 0 {
			width = a.cfg.Covers.Width
		}

		stats, err := localizeCovers(ctx, a.catalog, dir, width, c.Force)
		if err != nil {
			return err
		}
		slog.Info("Covers localized", "downloaded", stats.Downloaded, "existing", stats.Existing, "failed", stats.Failed)
		return nil
	})
}

// localizeCovers saves every remote cover under dir and points the record
// at the local file. A failed download or a record that no longer passes
// validation is logged and skipped.
func localizeCovers(ctx context.Context, svc *catalog.Service, dir string, width int, force bool) (coverStats, error) {
	var stats coverStats

	records, err := svc.List(ctx, catalog.Query{})
	if err != nil {
		return stats, err
	}

	for _, r := range records {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if !fileutil.IsRemoteURL(r.Cover) {
			continue
		}

		result, err := fileutil.LocalizeCover(ctx, fileutil.CoverOptions{
			URL:      r.Cover,
			Dir:      dir,
			ID:       r.ID,
			MaxWidth: width,
			Force:    force,
		})
		if err != nil {
			slog.Warn("Cover download failed", "id", r.ID, "url", r.Cover, "error", err)
			stats.Failed++
			continue
		}

		if _, err := svc.UpdateOne(ctx, r.ID, record.Patch{Cover: record.String(result.LocalPath)}); err != nil {
			if verr, ok := errors.AsValidationError(err); ok {
				slog.Warn("Skipping cover of invalid record", "id", r.ID, "problems", verr.Problems)
				stats.Failed++
				continue
			}
			return stats, err
		}
		if result.Downloaded {
			stats.Downloaded++
		} else {
			stats.Existing++
		}
	}
	return stats, nil
}
