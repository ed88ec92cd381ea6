// Package cache stores provider lookup responses in SQLite with a TTL.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// DefaultTTL applies to successful lookups (30 days)
	DefaultTTL = 720 * time.Hour
	// NegativeTTL applies to "not found" lookups (7 days)
	NegativeTTL = 168 * time.Hour
)

// FetchFunc fetches a value from the external source.
type FetchFunc[T any] func() (T, error)

// DB is a lookup cache backed by one SQLite file.
type DB struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	ttl  time.Duration
	now  func() time.Time
}

// Open opens the cache at dbPath and creates every provider table.
// A non-positive ttl selects DefaultTTL.
func Open(dbPath string, ttl time.Duration) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), closeErr)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &DB{db: db, path: dbPath, ttl: ttl, now: time.Now}

	tables := make([]string, 0, len(ValidTableNames))
	for table := range ValidTableNames {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		if err := c.CreateTable(table); err != nil {
			closeErr := c.Close()
			return nil, errors.Join(err, closeErr)
		}
	}
	return c, nil
}

// Path returns the database file location.
func (c *DB) Path() string {
	return c.path
}

// CreateTable creates a cache table if it does not exist.
func (c *DB) CreateTable(tableName string) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(fmt.Sprintf(tableSchema, tableName)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *DB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns a cached value if one exists and is younger than ttl.
func (c *DB) Get(tableName, key string, ttl time.Duration) (string, bool, error) {
	if err := validateTableName(tableName); err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	query := fmt.Sprintf(`SELECT data, cached_at FROM %s WHERE cache_key = ?`, tableName)

	var data string
	var cachedAt time.Time
	err := c.db.QueryRow(query, key).Scan(&data, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query cache: %w", err)
	}

	if age := c.now().UTC().Sub(cachedAt); age > ttl {
		slog.Debug("Cache expired", "table", tableName, "key", key, "age", age)
		return "", false, nil
	}
	return data, true, nil
}

// Set stores a value, replacing any previous entry.
func (c *DB) Set(tableName, key, data string) error {
	return c.setAt(tableName, key, data, c.now())
}

func (c *DB) setAt(tableName, key, data string, at time.Time) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, data, cached_at) VALUES (?, ?, ?)`, tableName)
	if _, err := c.db.Exec(query, key, data, at.UTC()); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Invalidate deletes every entry of a table and returns the number removed.
func (c *DB) Invalidate(tableName string) (int64, error) {
	if err := validateTableName(tableName); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.Exec(fmt.Sprintf("DELETE FROM %s", tableName))
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Debug("Cache table cleared", "table", tableName, "rows_deleted", rows)
	return rows, nil
}

func validateTableName(tableName string) error {
	if !ValidTableNames[tableName] {
		return fmt.Errorf("invalid cache table name: %s", tableName)
	}
	return nil
}

// TTL returns the lifetime configured for successful lookups.
func (c *DB) TTL() time.Duration {
	if c == nil || c.ttl <= 0 {
		return DefaultTTL
	}
	return c.ttl
}

// SelectNegativeTTL caches "not found" results for NegativeTTL and everything
// else for the TTL c was opened with. Misses never outlive hits.
func SelectNegativeTTL[T any](c *DB, isNotFound func(T) bool) func(T) time.Duration {
	positive := c.TTL()
	negative := min(NegativeTTL, positive)
	return func(result T) time.Duration {
		if isNotFound(result) {
			return negative
		}
		return positive
	}
}

// GetOrFetch returns the cached value for key or calls fetch and stores its
// result. A nil cache fetches directly. Fetch errors are never cached.
//
// ttlFor picks the lifetime of a fresh value; stored entries are looked up
// against that same selector applied to the cached value.
func GetOrFetch[T any](c *DB, tableName, key string, fetch FetchFunc[T], ttlFor func(T) time.Duration) (T, bool, error) {
	var zero T

	if c == nil {
		data, err := fetch()
		return data, false, err
	}
	if ttlFor == nil {
		ttlFor = func(T) time.Duration { return c.TTL() }
	}

	cached, found, err := c.Get(tableName, key, c.maxTTL())
	if err != nil {
		slog.Warn("Cache lookup failed, fetching directly", "table", tableName, "key", key, "error", err)
	}
	if found {
		var result T
		if err := json.Unmarshal([]byte(cached), &result); err != nil {
			slog.Warn("Failed to unmarshal cached data, will refetch", "table", tableName, "key", key, "error", err)
		} else if c.fresh(tableName, key, ttlFor(result)) {
			slog.Debug("Cache hit", "table", tableName, "key", key)
			return result, true, nil
		}
	}

	slog.Debug("Cache miss, fetching data", "table", tableName, "key", key)
	data, err := fetch()
	if err != nil {
		return zero, false, err
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "table", tableName, "key", key, "error", err)
		return data, false, nil
	}
	if err := c.Set(tableName, key, string(encoded)); err != nil {
		slog.Warn("Failed to cache data", "table", tableName, "key", key, "error", err)
	}
	return data, false, nil
}

func (c *DB) maxTTL() time.Duration {
	if c.ttl > DefaultTTL {
		return c.ttl
	}
	return DefaultTTL
}

func (c *DB) fresh(tableName, key string, ttl time.Duration) bool {
	_, ok, err := c.Get(tableName, key, ttl)
	return err == nil && ok
}
