// Package book resolves bibliographic metadata for an ISBN by consulting an
// ordered list of external providers.
package book

import (
	"context"
)

// Metadata is what a provider knows about a book.
type Metadata struct {
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Cover   string   `json:"cover,omitempty"`
}

// IsEmpty reports whether no field is set.
func (m Metadata) IsEmpty() bool {
	return m.Title == "" && len(m.Authors) == 0 && m.Cover == ""
}

// Provider looks up a sanitized ISBN.
//
// Returns nil, nil when the source has no match so the next provider can try.
// Returns nil, error for network failures, rate limits and bad responses.
type Provider interface {
	Lookup(ctx context.Context, isbn string) (*Metadata, error)
}

// Named is implemented by providers that report a display name for logs.
type Named interface {
	Name() string
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, isbn string) (*Metadata, error)

func (f ProviderFunc) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	return f(ctx, isbn)
}

// ProviderName returns p's display name, or "provider" when it has none.
func ProviderName(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return "provider"
}
