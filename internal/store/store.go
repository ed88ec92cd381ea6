// Package store persists catalog records, one JSON document per record id.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lepinkainen/shelf/internal/blob"
	"github.com/lepinkainen/shelf/internal/errors"
	"github.com/lepinkainen/shelf/internal/record"
)

// Store reads and writes records through a blob bucket.
type Store struct {
	bucket blob.Bucket

	initMu      sync.Mutex
	initialized bool
}

// New wraps bucket in a record store.
func New(bucket blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

// Init prepares the underlying storage. Concurrent and repeated calls are
// safe; a failed attempt is retried on the next call.
func (s *Store) Init(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized {
		return nil
	}
	if err := s.bucket.Init(ctx); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// List returns every readable record, newest first. Unreadable entries are
// logged and skipped.
func (s *Store) List(ctx context.Context) ([]record.Record, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}

	keys, err := s.bucket.Keys(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]record.Record, 0, len(keys))
	for _, key := range keys {
		data, err := s.bucket.Get(ctx, key)
		if err != nil {
			if !errors.IsNotFound(err) {
				slog.Warn("Skipping unreadable record", "id", key, "error", err)
			}
			continue
		}

		var r record.Record
		if err := json.Unmarshal(data, &r); err != nil {
			slog.Warn("Skipping invalid record", "id", key, "error", err)
			continue
		}
		records = append(records, r)
	}

	record.SortNewestFirst(records)
	return records, nil
}

// Read returns the record stored under id.
func (s *Store) Read(ctx context.Context, id string) (record.Record, error) {
	if err := s.Init(ctx); err != nil {
		return record.Record{}, err
	}

	data, err := s.bucket.Get(ctx, id)
	if err != nil {
		return record.Record{}, err
	}

	var r record.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return record.Record{}, fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return r, nil
}

// Write creates or fully replaces the record under r.ID.
func (s *Store) Write(ctx context.Context, r record.Record) (record.Record, error) {
	if r.ID == "" {
		return record.Record{}, fmt.Errorf("%w: record id is required", errors.ErrInvalidArgument)
	}
	if err := s.Init(ctx); err != nil {
		return record.Record{}, err
	}
	if r.Authors == nil {
		r.Authors = []string{}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to encode record %s: %w", r.ID, err)
	}
	if err := s.bucket.Put(ctx, r.ID, data); err != nil {
		return record.Record{}, err
	}
	return r, nil
}

// Delete removes the record under id, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.Init(ctx); err != nil {
		return false, err
	}
	return s.bucket.Delete(ctx, id)
}

// Close releases the underlying bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}
