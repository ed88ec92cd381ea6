package enrichers

import (
	"context"
	"net/url"
	"time"

	"github.com/lepinkainen/shelf/internal/cache"
	"github.com/lepinkainen/shelf/internal/enrichment/book"
	"github.com/lepinkainen/shelf/internal/ratelimit"
)

const (
	googleBooksBaseURL = "https://www.googleapis.com/books/v1"
	// Unauthenticated volume searches allow about 100 requests per minute.
	googleBooksInterval = time.Minute / 100
)

// GoogleBooks looks books up through the Google Books volumes API. The API
// key is optional.
type GoogleBooks struct {
	client
}

var _ book.Provider = (*GoogleBooks)(nil)

// NewGoogleBooks creates a Google Books provider.
func NewGoogleBooks(opts ...Option) *GoogleBooks {
	opts = append([]Option{WithRateLimiter(ratelimit.Every("Google Books", googleBooksInterval, 1))}, opts...)
	return &GoogleBooks{client: newClient("Google Books", googleBooksBaseURL, opts)}
}

func (p *GoogleBooks) Name() string {
	return p.name
}

func (p *GoogleBooks) Lookup(ctx context.Context, isbn string) (*book.Metadata, error) {
	return p.cachedLookup(cache.GoogleBooksTable, isbn, func() (lookupResult, error) {
		return p.fetch(ctx, isbn)
	})
}

type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title      string   `json:"title"`
			Authors    []string `json:"authors"`
			ImageLinks struct {
				SmallThumbnail string `json:"smallThumbnail"`
				Thumbnail      string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (p *GoogleBooks) fetch(ctx context.Context, isbn string) (lookupResult, error) {
	query := url.Values{}
	query.Set("q", "isbn:"+isbn)
	if p.apiKey != "" {
		query.Set("key", p.apiKey)
	}
	endpoint := p.baseURL + "/volumes?" + query.Encode()

	var resp googleBooksResponse
	found, err := p.getJSON(ctx, endpoint, nil, &resp)
	if err != nil {
		return lookupResult{}, err
	}
	if !found || resp.TotalItems == 0 || len(resp.Items) == 0 {
		return lookupResult{NotFound: true}, nil
	}

	info := resp.Items[0].VolumeInfo
	return lookupResult{Data: &book.Metadata{
		Title:   info.Title,
		Authors: info.Authors,
		Cover:   firstNonEmpty(info.ImageLinks.Thumbnail, info.ImageLinks.SmallThumbnail),
	}}, nil
}
