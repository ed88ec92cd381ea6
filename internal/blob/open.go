package blob

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

// Backend names accepted by Open.
const (
	BackendFS       = "fs"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures a bucket backend.
type Options struct {
	Backend     string
	DataDir     string
	Namespace   string
	SQLitePath  string
	PostgresDSN string
}

// Open builds the configured backend and initializes it.
func Open(ctx context.Context, opts Options) (Bucket, error) {
	var (
		bucket Bucket
		err    error
	)

	switch opts.Backend {
	case "", BackendFS:
		bucket, err = NewFSBucket(afero.NewOsFs(), opts.DataDir, opts.Namespace)
	case BackendSQLite:
		bucket, err = NewSQLiteBucket(opts.SQLitePath, opts.Namespace)
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires a dsn")
		}
		bucket, err = NewPostgresBucket(ctx, opts.PostgresDSN, opts.Namespace)
	case BackendMemory:
		bucket, err = NewMemoryBucket(opts.Namespace)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := bucket.Init(ctx); err != nil {
		_ = bucket.Close()
		return nil, err
	}
	return bucket, nil
}
