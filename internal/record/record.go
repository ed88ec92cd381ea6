// Package record defines the catalog's book record, the partial payloads used to
// create or change one, and the rules a record must satisfy.
package record

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// TimeLayout is the persisted timestamp format. Fixed width in UTC so lexical
// order equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// knownFields are the attributes with a typed home on Record.
var knownFields = map[string]struct{}{
	"id":         {},
	"isbn":       {},
	"title":      {},
	"authors":    {},
	"location":   {},
	"cover":      {},
	"notes":      {},
	"created_at": {},
	"updated_at": {},
}

// Record is a single cataloged physical book.
type Record struct {
	ID        string   `json:"id"`
	ISBN      string   `json:"isbn,omitempty"`
	Title     string   `json:"title,omitempty"`
	Authors   []string `json:"authors"`
	Location  string   `json:"location,omitempty"`
	Cover     string   `json:"cover,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`

	// Extra holds attributes supplied by callers that have no typed field.
	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON writes the typed fields plus any extra attributes.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	if r.Authors == nil {
		r.Authors = []string{}
	}
	known, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return known, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, isKnown := knownFields[k]; isKnown {
			continue
		}
		fields[k] = v
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads the typed fields and keeps everything else in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range knownFields {
		delete(all, k)
	}
	if len(all) == 0 {
		all = nil
	}

	*r = Record(p)
	if r.Authors == nil {
		r.Authors = []string{}
	}
	r.Extra = all
	return nil
}

// Validate checks the record against the acceptance rules.
func (r Record) Validate() []string {
	return Validate(r.Title, r.ISBN)
}

// AuthorsString joins the author list for display and search.
func (r Record) AuthorsString() string {
	return strings.Join(r.Authors, ", ")
}

// FormatTime renders t in the persisted timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// SortNewestFirst orders records by created_at descending. Records without a
// creation timestamp sort last.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
}
