// Package datastore exports catalog records to SQLite files or a Datasette
// instance.
package datastore

// Store is an export destination.
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable runs a DDL statement such as CREATE TABLE or DROP TABLE
	CreateTable(schema string) error

	// BatchInsert inserts multiple rows into the specified table
	BatchInsert(database string, table string, rows []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}
