package datastore

import (
	stdErrors "errors"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/shelf/internal/record"
)

const (
	// BooksTable receives exported records.
	BooksTable = "books"
	// DefaultDatabase names the Datasette database.
	DefaultDatabase = "shelf"
	// batchSize bounds rows per insert call.
	batchSize = 500
)

// BooksSchema is the SQLite schema of the export table.
const BooksSchema = `CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY,
	isbn TEXT,
	title TEXT,
	authors TEXT,
	location TEXT,
	cover TEXT,
	notes TEXT,
	created_at TEXT,
	updated_at TEXT
)`

const dropBooks = `DROP TABLE IF EXISTS books`

// RecordRow flattens r into an export row. Authors are joined with ", ".
func RecordRow(r record.Record) map[string]any {
	return StructToRow(r, RowOptions{SliceSeparator: ", "})
}

// Export replaces the books table of s with records. s is connected and
// closed here.
func Export(s Store, database string, records []record.Record) (err error) {
	if err := s.Connect(); err != nil {
		return err
	}
	defer func() {
		err = stdErrors.Join(err, s.Close())
	}()

	if err := s.CreateTable(dropBooks); err != nil {
		return err
	}
	if err := s.CreateTable(BooksSchema); err != nil {
		return err
	}

	rows := make([]map[string]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, RecordRow(r))
	}

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if err := s.BatchInsert(database, BooksTable, rows[start:end]); err != nil {
			return fmt.Errorf("exporting rows %d-%d: %w", start+1, end, err)
		}
	}

	slog.Info("Exported records", "count", len(rows), "table", BooksTable)
	return nil
}
