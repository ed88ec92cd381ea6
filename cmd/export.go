package cmd

import (
	"context"
	"fmt"

	"github.com/lepinkainen/shelf/internal/catalog"
	"github.com/lepinkainen/shelf/internal/datastore"
	"github.com/lepinkainen/shelf/internal/fileutil"
)

// ExportCmd writes every record to SQLite, Datasette or a JSON file
type ExportCmd struct {
	DB           string `help:"SQLite file to write (default export.dbfile)"`
	DatasetteURL string `help:"Datasette base URL; takes precedence over --db"`
	Database     string `help:"Datasette database name" default:"shelf"`
	JSON         string `help:"Also write a JSON backup to this path"`
	Overwrite    bool   `help:"Overwrite an existing JSON backup"`
}

func (e *ExportCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		records, err := a.catalog.List(ctx, catalog.Query{})
		if err != nil {
			return err
		}

		if e.JSON != "" {
			if _, err := fileutil.WriteJSONFile(records, e.JSON, e.Overwrite); err != nil {
				return err
			}
		}

		target, desc := e.target(a)
		if err := datastore.Export(target, e.Database, records); err != nil {
			return fmt.Errorf("export to %s: %w", desc, err)
		}
		_, err = fmt.Fprintf(stdout, "exported %d records to %s\n", len(records), desc)
		return err
	})
}

func (e *ExportCmd) target(a *app) (datastore.Store, string) {
	url := e.DatasetteURL
	if url == "" {
		url = a.cfg.Export.DatasetteURL
	}
	if url != "" {
		return datastore.NewDatasetteClient(url, a.cfg.Export.DatasetteToken), url
	}

	dbFile := e.DB
	if dbFile == "" {
		dbFile = a.cfg.Export.DBFile
	}
	return datastore.NewSQLiteStore(dbFile), dbFile
}
