package importer

import (
	"github.com/lepinkainen/shelf/internal/record"
)

// Outcome is the validation result for one input row. Never persisted.
type Outcome struct {
	// Row is the 1-based position in the input.
	Row       int       `json:"row"`
	Candidate Candidate `json:"item"`
	Errors    []string  `json:"errors"`
}

// Valid reports whether the row passed every rule.
func (o Outcome) Valid() bool {
	return len(o.Errors) == 0
}

// Preview normalizes raw and validates every row. It has no side effects.
func Preview(raw []byte, fileNameHint string) ([]Outcome, error) {
	rows, err := Normalize(raw, fileNameHint)
	if err != nil {
		return nil, err
	}
	return PreviewRows(rows), nil
}

// PreviewRows validates rows that were already normalized.
func PreviewRows(rows []Row) []Outcome {
	outcomes := make([]Outcome, 0, len(rows))
	for i, row := range rows {
		candidate := CandidateFromRow(row)
		problems := record.Validate(candidate.Title, candidate.ISBN)
		if problems == nil {
			problems = []string{}
		}
		outcomes = append(outcomes, Outcome{Row: i + 1, Candidate: candidate, Errors: problems})
	}
	return outcomes
}

// Summary counts valid and invalid outcomes.
func Summary(outcomes []Outcome) (valid, invalid int) {
	for _, o := range outcomes {
		if o.Valid() {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}

// Patches converts outcomes into commit entries. With onlyValid set, rows
// that failed validation are left out.
func Patches(outcomes []Outcome, onlyValid bool) []record.Patch {
	patches := make([]record.Patch, 0, len(outcomes))
	for _, o := range outcomes {
		if onlyValid && !o.Valid() {
			continue
		}
		patches = append(patches, o.Candidate.Patch())
	}
	return patches
}
