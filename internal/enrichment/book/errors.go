package book

import "errors"

var (
	// ErrInvalidISBN is returned when a provider is asked about an empty ISBN.
	ErrInvalidISBN = errors.New("invalid ISBN")

	// ErrAPIUnavailable is returned when the external API answers with an unexpected status.
	ErrAPIUnavailable = errors.New("API unavailable")
)
