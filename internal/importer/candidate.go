package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lepinkainen/shelf/internal/record"
)

// Candidate is a row reduced to the record attributes the catalog knows.
type Candidate struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	ISBN     string   `json:"isbn"`
	Location string   `json:"location"`
	Notes    string   `json:"notes"`
	Cover    string   `json:"cover,omitempty"`
}

var (
	titleKeys    = []string{"title", "Title", "name", "Name"}
	authorKeys   = []string{"authors", "Authors", "author", "Author"}
	isbnKeys     = []string{"isbn", "ISBN"}
	locationKeys = []string{"location", "Location"}
	notesKeys    = []string{"notes", "Notes"}
	coverKeys    = []string{"cover", "Cover"}
)

// CandidateFromRow picks each attribute from the first alias with a
// non-empty value. Authors are split on commas.
func CandidateFromRow(row Row) Candidate {
	return Candidate{
		Title:    row.first(titleKeys),
		Authors:  record.SplitAuthors(row.first(authorKeys)),
		ISBN:     row.first(isbnKeys),
		Location: row.first(locationKeys),
		Notes:    row.first(notesKeys),
		Cover:    row.first(coverKeys),
	}
}

// Patch converts the candidate into a commit entry. Empty attributes are left
// absent so resolved metadata can fill them.
func (c Candidate) Patch() record.Patch {
	var p record.Patch
	if c.Title != "" {
		p.Title = record.String(c.Title)
	}
	if c.ISBN != "" {
		p.ISBN = record.String(c.ISBN)
	}
	if len(c.Authors) > 0 {
		p.Authors = append([]string{}, c.Authors...)
	}
	if c.Location != "" {
		p.Location = record.String(c.Location)
	}
	if c.Notes != "" {
		p.Notes = record.String(c.Notes)
	}
	if c.Cover != "" {
		p.Cover = record.String(c.Cover)
	}
	return p
}

func (r Row) first(keys []string) string {
	for _, k := range keys {
		if s := stringify(r[k]); s != "" {
			return s
		}
	}
	return ""
}

// stringify renders a decoded value as text. Lists are joined with commas.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return ""
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ",")
	case map[string]any:
		encoded, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return fmt.Sprint(val)
	}
}
