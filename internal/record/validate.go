package record

import (
	"regexp"
	"strings"
)

const (
	ProblemTitleOrISBN = "title or isbn required"
	ProblemISBNChars   = "isbn contains invalid characters"
)

var (
	isbnPattern  = regexp.MustCompile(`^[0-9Xx\- ]+$`)
	isbnStripper = regexp.MustCompile(`[^0-9Xx]`)
)

// Validate returns every rule the given title and isbn fail. An empty result
// means the pair is acceptable.
func Validate(title, isbn string) []string {
	var problems []string
	if title == "" && isbn == "" {
		problems = append(problems, ProblemTitleOrISBN)
	}
	if isbn != "" && !isbnPattern.MatchString(isbn) {
		problems = append(problems, ProblemISBNChars)
	}
	return problems
}

// SanitizeISBN keeps only digits and the check character X.
func SanitizeISBN(isbn string) string {
	return isbnStripper.ReplaceAllString(strings.TrimSpace(isbn), "")
}
