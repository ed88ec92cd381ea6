package enrichers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lepinkainen/shelf/internal/cache"
	"github.com/lepinkainen/shelf/internal/enrichment/book"
)

const isbndbBaseURL = "https://api2.isbndb.com"

// ISBNdb looks books up through the ISBNdb API. Requires an API key.
type ISBNdb struct {
	client
}

var _ book.Provider = (*ISBNdb)(nil)

// NewISBNdb creates an ISBNdb provider.
func NewISBNdb(opts ...Option) *ISBNdb {
	return &ISBNdb{client: newClient("ISBNdb", isbndbBaseURL, opts)}
}

func (p *ISBNdb) Name() string {
	return p.name
}

func (p *ISBNdb) Lookup(ctx context.Context, isbn string) (*book.Metadata, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("ISBNdb API key not configured")
	}
	return p.cachedLookup(cache.ISBNdbTable, isbn, func() (lookupResult, error) {
		return p.fetch(ctx, isbn)
	})
}

type isbndbResponse struct {
	Book struct {
		Title         string   `json:"title"`
		TitleLong     string   `json:"title_long"`
		Authors       []string `json:"authors"`
		Image         string   `json:"image"`
		ImageOriginal string   `json:"image_original"`
	} `json:"book"`
}

func (p *ISBNdb) fetch(ctx context.Context, isbn string) (lookupResult, error) {
	header := http.Header{}
	header.Set("Authorization", p.apiKey)

	var resp isbndbResponse
	found, err := p.getJSON(ctx, fmt.Sprintf("%s/book/%s", p.baseURL, url.PathEscape(isbn)), header, &resp)
	if err != nil {
		return lookupResult{}, err
	}
	if !found || (resp.Book.Title == "" && resp.Book.TitleLong == "") {
		return lookupResult{NotFound: true}, nil
	}

	return lookupResult{Data: &book.Metadata{
		Title:   firstNonEmpty(resp.Book.Title, resp.Book.TitleLong),
		Authors: resp.Book.Authors,
		Cover:   firstNonEmpty(resp.Book.ImageOriginal, resp.Book.Image),
	}}, nil
}
