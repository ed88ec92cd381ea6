package blob

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBucket keeps documents in a single table named after the namespace.
type SQLiteBucket struct {
	db    *sql.DB
	table string
	path  string
}

// NewSQLiteBucket opens (creating if needed) the database file at dbPath.
func NewSQLiteBucket(dbPath, namespace string) (*SQLiteBucket, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, stdErrors.Join(fmt.Errorf("failed to connect to store database: %w", err), closeErr)
	}

	return &SQLiteBucket{db: db, table: namespace, path: dbPath}, nil
}

func (b *SQLiteBucket) Init(ctx context.Context) error {
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	key TEXT PRIMARY KEY NOT NULL,
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, b.table)
	if _, err := b.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create table %s: %w", b.table, err)
	}
	return nil
}

func (b *SQLiteBucket) Get(ctx context.Context, key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, notFound(key)
	}
	var data []byte
	err := b.db.QueryRowContext(ctx, fmt.Sprintf("SELECT data FROM %s WHERE key = ?", b.table), key).Scan(&data)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (b *SQLiteBucket) Put(ctx context.Context, key string, data []byte) error {
	if !ValidKey(key) {
		return invalidKey(key)
	}
	query := fmt.Sprintf(`INSERT INTO %s (key, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`, b.table)
	if _, err := b.db.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (b *SQLiteBucket) Delete(ctx context.Context, key string) (bool, error) {
	if !ValidKey(key) {
		return false, nil
	}
	result, err := b.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE key = ?", b.table), key)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", key, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (b *SQLiteBucket) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, fmt.Sprintf("SELECT key FROM %s ORDER BY key", b.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (b *SQLiteBucket) Close() error {
	return b.db.Close()
}
