package catalog

import (
	"github.com/lepinkainen/shelf/internal/enrichment/book"
	"github.com/lepinkainen/shelf/internal/record"
)

// NeedsResolution reports whether p should be completed from external
// metadata: it carries a non-empty isbn and lacks a title, authors or cover.
func NeedsResolution(p record.Patch) bool {
	if record.Value(p.ISBN) == "" {
		return false
	}
	return p.Title == nil || *p.Title == "" || !p.HasAuthors() || p.Cover == nil
}

// Merge builds a record body from resolved metadata overlaid with every field
// present in p. Present fields win even when empty. resolved may be nil.
func Merge(resolved *book.Metadata, p record.Patch) record.Record {
	var r record.Record
	if resolved != nil {
		r.Title = resolved.Title
		if resolved.Authors != nil {
			r.Authors = append([]string{}, resolved.Authors...)
		}
		r.Cover = resolved.Cover
	}
	p.Apply(&r)
	return r
}
