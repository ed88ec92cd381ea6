package book

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/shelf/internal/record"
)

// DefaultTimeout bounds each provider call.
const DefaultTimeout = 5 * time.Second

const fallbackCoverURL = "https://covers.openlibrary.org/b/isbn/%s-L.jpg"

// FallbackCoverURL is the cover used when the matching provider had none.
func FallbackCoverURL(isbn string) string {
	return fmt.Sprintf(fallbackCoverURL, isbn)
}

// Resolver tries providers strictly in order and returns the first match.
type Resolver struct {
	providers []Provider
	timeout   time.Duration
}

// NewResolver creates a resolver. A non-positive timeout selects DefaultTimeout.
func NewResolver(timeout time.Duration, providers ...Provider) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{providers: providers, timeout: timeout}
}

// ProviderNames lists the providers in lookup order.
func (r *Resolver) ProviderNames() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, ProviderName(p))
	}
	return names
}

// Resolve returns metadata for identifier. It never fails: when nothing
// matches, or the identifier has no ISBN characters, the result is empty.
func (r *Resolver) Resolve(ctx context.Context, identifier string) Metadata {
	return r.ResolveDetailed(ctx, identifier).Metadata
}

// ResolveDetailed is Resolve that also reports which provider matched.
func (r *Resolver) ResolveDetailed(ctx context.Context, identifier string) Result {
	isbn := record.SanitizeISBN(identifier)
	if isbn == "" || r == nil {
		return Result{}
	}

	var result Result
	for _, p := range r.providers {
		result.Attempts++
		name := ProviderName(p)

		meta, err := r.lookup(ctx, p, isbn)
		if err != nil {
			slog.Debug("Metadata lookup failed", "provider", name, "isbn", isbn, "error", err)
			continue
		}
		if meta == nil {
			slog.Debug("No match from provider", "provider", name, "isbn", isbn)
			continue
		}

		result.Metadata = *meta
		result.Source = name
		if result.Metadata.Cover == "" {
			result.Metadata.Cover = FallbackCoverURL(isbn)
		}
		return result
	}

	slog.Debug("No provider matched", "isbn", isbn, "attempts", result.Attempts)
	return result
}

type lookupOutcome struct {
	meta *Metadata
	err  error
}

// lookup runs one provider call under the per-provider timeout. A provider
// that ignores its context is abandoned when the deadline passes.
func (r *Resolver) lookup(ctx context.Context, p Provider, isbn string) (*Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan lookupOutcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- lookupOutcome{err: fmt.Errorf("provider panicked: %v", rec)}
			}
		}()
		meta, err := p.Lookup(ctx, isbn)
		done <- lookupOutcome{meta: meta, err: err}
	}()

	select {
	case out := <-done:
		return out.meta, out.err
	case <-ctx.Done():
		return nil, fmt.Errorf("lookup abandoned: %w", ctx.Err())
	}
}
