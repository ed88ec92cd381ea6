package enrichers

import (
	"log/slog"

	"github.com/lepinkainen/shelf/internal/cache"
	"github.com/lepinkainen/shelf/internal/enrichment/book"
)

// Settings carries the credentials and shared services for Providers.
type Settings struct {
	GoogleBooksAPIKey string
	ISBNdbAPIKey      string
	Cache             *cache.DB
	UserAgent         string
	// HTTPClient replaces the default client of every provider when set.
	HTTPClient HTTPDoer
	// Extra options applied to every provider, mostly for tests.
	Options []Option
}

// Providers builds the named providers in the given order. ISBNdb is skipped
// when no API key is configured.
func Providers(names []string, s Settings) []book.Provider {
	common := []Option{WithCache(s.Cache)}
	if s.UserAgent != "" {
		common = append(common, WithUserAgent(s.UserAgent))
	}
	if s.HTTPClient != nil {
		common = append(common, WithHTTPClient(s.HTTPClient))
	}
	common = append(common, s.Options...)

	providers := make([]book.Provider, 0, len(names))
	for _, name := range names {
		switch name {
		case "openlibrary":
			providers = append(providers, NewOpenLibrary(common...))
		case "googlebooks":
			opts := append([]Option{WithAPIKey(s.GoogleBooksAPIKey)}, common...)
			providers = append(providers, NewGoogleBooks(opts...))
		case "isbndb":
			if s.ISBNdbAPIKey == "" {
				slog.Debug("ISBNdb API key not configured, skipping provider")
				continue
			}
			opts := append([]Option{WithAPIKey(s.ISBNdbAPIKey)}, common...)
			providers = append(providers, NewISBNdb(opts...))
		default:
			slog.Warn("Unknown metadata provider, skipping", "provider", name)
		}
	}
	return providers
}
