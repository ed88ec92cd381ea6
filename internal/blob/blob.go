// Package blob provides keyed storage of opaque documents grouped under a
// namespace. Each backend stores one document per key.
package blob

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lepinkainen/shelf/internal/errors"
)

// Bucket stores documents by key within one namespace.
type Bucket interface {
	// Init prepares the backing storage. Safe to call repeatedly.
	Init(ctx context.Context) error
	// Get returns the document for key or errors.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put creates or replaces the document for key.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Keys lists every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

var namespacePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidKey reports whether key can address a document in every backend.
// Keys starting with a dot are reserved for the filesystem backend's
// temporary files.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, ".") || !utf8.ValidString(key) {
		return false
	}
	return !strings.ContainsFunc(key, func(r rune) bool {
		return r == '/' || r == '\\' || unicode.IsControl(r)
	})
}

// ValidateNamespace checks that a namespace is usable as a directory and table name.
func ValidateNamespace(namespace string) error {
	if !namespacePattern.MatchString(namespace) {
		return fmt.Errorf("%w: namespace %q must be a plain identifier", errors.ErrInvalidArgument, namespace)
	}
	return nil
}

func invalidKey(key string) error {
	return fmt.Errorf("%w: key %q", errors.ErrInvalidArgument, key)
}

func notFound(key string) error {
	return fmt.Errorf("%s: %w", key, errors.ErrNotFound)
}
