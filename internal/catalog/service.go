// Package catalog implements the record operations: single creates and
// updates, bulk import commits, deletion and search.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lepinkainen/shelf/internal/enrichment/book"
	"github.com/lepinkainen/shelf/internal/errors"
	"github.com/lepinkainen/shelf/internal/record"
	"github.com/lepinkainen/shelf/internal/store"
)

// MetadataResolver completes records that only carry an identifier.
type MetadataResolver interface {
	Resolve(ctx context.Context, identifier string) book.Metadata
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// Service ties the store, resolver and merge policy together.
type Service struct {
	store    *store.Store
	resolver MetadataResolver
	now      func() time.Time
	newID    func() string

	mu        sync.Mutex
	lastStamp time.Time
}

// New creates a Service. resolver may be nil, in which case records are
// never completed from external metadata.
func New(st *store.Store, resolver MetadataResolver, opts ...Option) *Service {
	s := &Service{
		store:    st,
		resolver: resolver,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stamp returns the current time formatted for persistence. Successive
// stamps from one Service are strictly increasing.
func (s *Service) stamp() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = now
	return record.FormatTime(now)
}

func (s *Service) resolve(ctx context.Context, p record.Patch) record.Record {
	if s.resolver == nil || !NeedsResolution(p) {
		return Merge(nil, p)
	}
	meta := s.resolver.Resolve(ctx, record.Value(p.ISBN))
	return Merge(&meta, p)
}

func (s *Service) create(ctx context.Context, r record.Record) (record.Record, error) {
	r.ID = s.newID()
	r.CreatedAt = s.stamp()
	r.UpdatedAt = r.CreatedAt
	return s.store.Write(ctx, r)
}

// CreateOne merges p with resolved metadata when needed, validates the result
// and stores it under a fresh id.
func (s *Service) CreateOne(ctx context.Context, p record.Patch) (record.Record, error) {
	r := s.resolve(ctx, p)
	if problems := r.Validate(); len(problems) > 0 {
		return record.Record{}, errors.NewValidationError(problems)
	}
	created, err := s.create(ctx, r)
	if err != nil {
		return record.Record{}, err
	}
	slog.Debug("Record created", "id", created.ID, "isbn", created.ISBN)
	return created, nil
}

// UpdateOne overlays p onto the stored record. The id and creation time never
// change and no metadata is resolved.
func (s *Service) UpdateOne(ctx context.Context, id string, p record.Patch) (record.Record, error) {
	existing, err := s.store.Read(ctx, id)
	if err != nil {
		return record.Record{}, err
	}

	p.Apply(&existing)
	if problems := existing.Validate(); len(problems) > 0 {
		return record.Record{}, errors.NewValidationError(problems)
	}

	stamp := s.stamp()
	if stamp < existing.UpdatedAt {
		stamp = existing.UpdatedAt
	}
	existing.UpdatedAt = stamp

	return s.store.Write(ctx, existing)
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (record.Record, error) {
	return s.store.Read(ctx, id)
}

// Delete removes one record, reporting whether it existed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.Delete(ctx, id)
}

// ImportResult reports a committed batch.
type ImportResult struct {
	Imported int             `json:"imported"`
	Records  []record.Record `json:"books"`
}

// CommitImport stores each entry in order, resolving metadata where needed.
// Entries are not validated; a failing entry is stored and logged. Lookup
// failures never abort the batch. A store failure stops the batch and the
// records written so far are returned with the error.
func (s *Service) CommitImport(ctx context.Context, entries []record.Patch) (ImportResult, error) {
	result := ImportResult{Records: make([]record.Record, 0, len(entries))}

	for i, entry := range entries {
		r := s.resolve(ctx, entry)
		if problems := r.Validate(); len(problems) > 0 {
			slog.Warn("Importing entry that fails validation", "entry", i+1, "problems", problems)
		}

		created, err := s.create(ctx, r)
		if err != nil {
			return result, fmt.Errorf("entry %d: %w", i+1, err)
		}
		result.Records = append(result.Records, created)
		result.Imported++
	}

	slog.Info("Import committed", "imported", result.Imported)
	return result, nil
}
