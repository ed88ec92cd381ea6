package catalog

import (
	"context"
	"strings"

	"github.com/lepinkainen/shelf/internal/record"
)

// Query filters a listing. An empty Q matches everything.
type Query struct {
	Q     string
	Field string
}

// List returns the records matching q, newest first. Every call scans the
// full listing.
func (s *Service) List(ctx context.Context, q Query) ([]record.Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if q.Q == "" {
		return records, nil
	}

	needle := strings.ToLower(q.Q)
	matched := make([]record.Record, 0, len(records))
	for _, r := range records {
		if matches(r, q.Field, needle) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// matches checks the named field when the record has a value for it,
// otherwise the default text fields.
func matches(r record.Record, field, needle string) bool {
	if value, ok := fieldValue(r, field); ok && value != "" {
		return strings.Contains(strings.ToLower(value), needle)
	}

	for _, value := range []string{r.Title, strings.Join(r.Authors, " "), r.ISBN, r.Location, r.Notes} {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

func fieldValue(r record.Record, field string) (string, bool) {
	switch field {
	case "id":
		return r.ID, true
	case "isbn":
		return r.ISBN, true
	case "title":
		return r.Title, true
	case "authors":
		return strings.Join(r.Authors, ","), true
	case "location":
		return r.Location, true
	case "cover":
		return r.Cover, true
	case "notes":
		return r.Notes, true
	case "created_at":
		return r.CreatedAt, true
	case "updated_at":
		return r.UpdatedAt, true
	}
	return "", false
}
