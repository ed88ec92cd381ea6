package blob

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBucket keeps documents in a table named after the namespace.
type PostgresBucket struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresBucket connects to the database described by dsn.
func NewPostgresBucket(ctx context.Context, dsn, namespace string) (*PostgresBucket, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresBucket{pool: pool, table: namespace}, nil
}

func (b *PostgresBucket) Init(ctx context.Context) error {
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	key TEXT PRIMARY KEY,
	data BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, b.table)
	if _, err := b.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create table %s: %w", b.table, err)
	}
	return nil
}

func (b *PostgresBucket) Get(ctx context.Context, key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, notFound(key)
	}
	var data []byte
	err := b.pool.QueryRow(ctx, fmt.Sprintf("SELECT data FROM %s WHERE key = $1", b.table), key).Scan(&data)
	if err != nil {
		if stdErrors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (b *PostgresBucket) Put(ctx context.Context, key string, data []byte) error {
	if !ValidKey(key) {
		return invalidKey(key)
	}
	query := fmt.Sprintf(`INSERT INTO %s (key, data, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, b.table)
	if _, err := b.pool.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (b *PostgresBucket) Delete(ctx context.Context, key string) (bool, error) {
	if !ValidKey(key) {
		return false, nil
	}
	tag, err := b.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE key = $1", b.table), key)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (b *PostgresBucket) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.pool.Query(ctx, fmt.Sprintf("SELECT key FROM %s ORDER BY key", b.table))
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	return keys, nil
}

func (b *PostgresBucket) Close() error {
	b.pool.Close()
	return nil
}
