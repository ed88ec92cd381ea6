package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lepinkainen/shelf/internal/errors"
	"github.com/lepinkainen/shelf/internal/importer"
	"github.com/lepinkainen/shelf/internal/tui"
)

var reviewImport = tui.Review

// ImportCmd groups the bulk import subcommands
type ImportCmd struct {
	Preview ImportPreviewCmd `cmd:"" help:"Validate a CSV/JSON file without storing anything"`
	Commit  ImportCommitCmd  `cmd:"" help:"Store the rows of a CSV/JSON file"`
}

// ImportPreviewCmd validates an import file
type ImportPreviewCmd struct {
	File   string `arg:"" help:"CSV or JSON file" type:"existingfile"`
	Format string `short:"o" help:"Output format" enum:"table,json,yaml" default:"table"`
}

func (p *ImportPreviewCmd) Run() error {
	outcomes, err := previewFile(p.File)
	if err != nil {
		return err
	}
	if p.Format == formatTable {
		_, err = fmt.Fprint(stdout, tui.RenderPreview(outcomes, 100))
		return err
	}
	return writeValue(stdout, p.Format, map[string]any{"rows": outcomes})
}

// ImportCommitCmd stores the rows of an import file
type ImportCommitCmd struct {
	File   string `arg:"" help:"CSV or JSON file" type:"existingfile"`
	All    bool   `help:"Also store rows that fail validation"`
	Review bool   `help:"Choose interactively what to commit"`
	Format string `short:"o" help:"Output format" enum:"table,json,yaml" default:"table"`
}

func (c *ImportCommitCmd) Run(ctx context.Context) error {
	outcomes, err := previewFile(c.File)
	if err != nil {
		return err
	}

	onlyValid := !c.All
	if c.Review {
		result, err := reviewImport(filepath.Base(c.File), outcomes)
		if err != nil {
			return err
		}
		switch result.Action {
		case tui.ActionCommitAll:
			onlyValid = false
		case tui.ActionCommitValid:
			onlyValid = true
		default:
			return errors.NewStopProcessingError("import aborted")
		}
	}

	valid, invalid := importer.Summary(outcomes)
	if onlyValid && invalid > 0 {
		slog.Warn("Skipping rows that failed validation", "invalid", invalid, "valid", valid)
	}

	return withApp(ctx, func(a *app) error {
		result, err := a.catalog.CommitImport(ctx, importer.Patches(outcomes, onlyValid))
		if err != nil {
			slog.Error("Import stopped", "imported", result.Imported, "error", err)
			return err
		}
		if c.Format == formatTable {
			if err := writeRecords(stdout, formatTable, result.Records); err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout, "imported %d\n", result.Imported)
			return err
		}
		return writeValue(stdout, c.Format, result)
	})
}

func previewFile(path string) ([]importer.Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	outcomes, err := importer.Preview(data, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return outcomes, nil
}
