package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Patch is a caller-supplied set of record attributes. Nil fields are absent;
// a non-nil pointer to "" (or an empty non-nil Authors) explicitly clears.
type Patch struct {
	Title    *string
	ISBN     *string
	Authors  []string
	Location *string
	Cover    *string
	Notes    *string

	Extra map[string]json.RawMessage
}

// String returns a pointer to s for building patches.
func String(s string) *string {
	return &s
}

// HasAuthors reports whether the patch carries an authors value.
func (p Patch) HasAuthors() bool {
	return p.Authors != nil
}

// Value returns the string behind a patch field, "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Apply overlays every present field of p onto r.
func (p Patch) Apply(r *Record) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.ISBN != nil {
		r.ISBN = *p.ISBN
	}
	if p.Authors != nil {
		r.Authors = append([]string{}, p.Authors...)
	}
	if p.Location != nil {
		r.Location = *p.Location
	}
	if p.Cover != nil {
		r.Cover = *p.Cover
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if len(p.Extra) > 0 {
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage, len(p.Extra))
		}
		for k, v := range p.Extra {
			r.Extra[k] = v
		}
	}
}

// UnmarshalJSON decodes a payload. Keys present with null clear the field.
// The id and timestamps are server-owned and ignored.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Patch{}
	for key, value := range raw {
		var err error
		switch key {
		case "id", "created_at", "updated_at":
		case "title":
			p.Title, err = decodeString(value)
		case "isbn":
			p.ISBN, err = decodeString(value)
		case "location":
			p.Location, err = decodeString(value)
		case "cover":
			p.Cover, err = decodeString(value)
		case "notes":
			p.Notes, err = decodeString(value)
		case "authors":
			p.Authors, err = decodeAuthors(value)
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]json.RawMessage)
			}
			p.Extra[key] = value
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON writes present fields only.
func (p Patch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		out[k] = v
	}
	for key, v := range map[string]*string{
		"title":    p.Title,
		"isbn":     p.ISBN,
		"location": p.Location,
		"cover":    p.Cover,
		"notes":    p.Notes,
	} {
		if v != nil {
			out[key] = *v
		}
	}
	if p.Authors != nil {
		out["authors"] = p.Authors
	}
	return json.Marshal(out)
}

func decodeString(raw json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return String(""), nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return &s, nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return String(n.String()), nil
	}
	return nil, fmt.Errorf("expected a string, got %s", string(trimmed))
}

func decodeAuthors(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal(trimmed, &list); err == nil {
		if list == nil {
			list = []string{}
		}
		return list, nil
	}

	s, err := decodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("expected a list of names or a comma separated string")
	}
	return SplitAuthors(*s), nil
}

// SplitAuthors splits a comma separated author string, dropping empty names.
// The result is never nil.
func SplitAuthors(s string) []string {
	authors := []string{}
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
