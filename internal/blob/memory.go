package blob

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sort"
	"strings"

	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	dssync "github.com/ipfs/go-datastore/sync"
)

// MemoryBucket keeps documents in an in-process datastore under /<namespace>/<key>.
type MemoryBucket struct {
	store  ds.Datastore
	prefix string
}

// NewMemoryBucket creates an empty in-memory bucket.
func NewMemoryBucket(namespace string) (*MemoryBucket, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	return &MemoryBucket{
		store:  dssync.MutexWrap(ds.NewMapDatastore()),
		prefix: "/" + namespace,
	}, nil
}

func (b *MemoryBucket) key(key string) ds.Key {
	return ds.NewKey(b.prefix + "/" + key)
}

func (b *MemoryBucket) Init(_ context.Context) error {
	return nil
}

func (b *MemoryBucket) Get(ctx context.Context, key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, notFound(key)
	}
	data, err := b.store.Get(ctx, b.key(key))
	if err != nil {
		if stdErrors.Is(err, ds.ErrNotFound) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return append([]byte(nil), data...), nil
}

func (b *MemoryBucket) Put(ctx context.Context, key string, data []byte) error {
	if !ValidKey(key) {
		return invalidKey(key)
	}
	return b.store.Put(ctx, b.key(key), append([]byte(nil), data...))
}

func (b *MemoryBucket) Delete(ctx context.Context, key string) (bool, error) {
	if !ValidKey(key) {
		return false, nil
	}
	exists, err := b.store.Has(ctx, b.key(key))
	if err != nil || !exists {
		return false, err
	}
	if err := b.store.Delete(ctx, b.key(key)); err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return true, nil
}

func (b *MemoryBucket) Keys(ctx context.Context) ([]string, error) {
	res, err := b.store.Query(ctx, query.Query{Prefix: b.prefix, KeysOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to query datastore: %w", err)
	}
	defer res.Close()

	entries, err := res.Rest()
	if err != nil {
		return nil, fmt.Errorf("failed to query datastore: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, strings.TrimPrefix(entry.Key, b.prefix+"/"))
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *MemoryBucket) Close() error {
	return b.store.Close()
}
