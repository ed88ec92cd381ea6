// Package errors holds the error types shared across the catalog packages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no record exists for an id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for ids or payloads that can never be stored.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ParseError reports bulk input that could not be decoded. It aborts the whole batch.
type ParseError struct {
	Format string
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Format == "" {
		return "parse error: " + e.Msg
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Msg)
}

// NewParseError creates a ParseError for the given input format.
func NewParseError(format, msg string) *ParseError {
	return &ParseError{Format: format, Msg: msg}
}

// IsParseError reports whether err is a ParseError (even when wrapped).
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// ValidationError lists every rule a record failed.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid record: " + strings.Join(e.Problems, "; ")
}

// NewValidationError creates a ValidationError from a non-empty problem list.
func NewValidationError(problems []string) *ValidationError {
	return &ValidationError{Problems: problems}
}

// AsValidationError returns the ValidationError inside err, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	ok := errors.As(err, &vErr)
	return vErr, ok
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument reports whether err wraps ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
