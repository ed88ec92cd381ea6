package cache

// Provider lookup tables. Every table uses cache_key as primary key.
const (
	OpenLibraryTable = "openlibrary_cache"
	GoogleBooksTable = "googlebooks_cache"
	ISBNdbTable      = "isbndb_cache"
)

const tableSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_cached_at ON %[1]s(cached_at);
`

// ValidTableNames whitelists the tables that queries may name.
var ValidTableNames = map[string]bool{
	OpenLibraryTable: true,
	GoogleBooksTable: true,
	ISBNdbTable:      true,
}

// SourceTables maps a provider name to its cache table.
var SourceTables = map[string]string{
	"openlibrary": OpenLibraryTable,
	"googlebooks": GoogleBooksTable,
	"isbndb":      ISBNdbTable,
}
