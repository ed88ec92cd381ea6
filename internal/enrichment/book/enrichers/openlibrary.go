package enrichers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lepinkainen/shelf/internal/cache"
	"github.com/lepinkainen/shelf/internal/enrichment/book"
)

const openLibraryBaseURL = "https://openlibrary.org"

// OpenLibrary looks books up through the OpenLibrary books API.
type OpenLibrary struct {
	client
}

var _ book.Provider = (*OpenLibrary)(nil)

// NewOpenLibrary creates an OpenLibrary provider.
func NewOpenLibrary(opts ...Option) *OpenLibrary {
	return &OpenLibrary{client: newClient("OpenLibrary", openLibraryBaseURL, opts)}
}

func (p *OpenLibrary) Name() string {
	return p.name
}

func (p *OpenLibrary) Lookup(ctx context.Context, isbn string) (*book.Metadata, error) {
	return p.cachedLookup(cache.OpenLibraryTable, isbn, func() (lookupResult, error) {
		return p.fetch(ctx, isbn)
	})
}

type openLibraryBook struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Cover struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
}

func (p *OpenLibrary) fetch(ctx context.Context, isbn string) (lookupResult, error) {
	bibkey := "ISBN:" + isbn
	endpoint := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data", p.baseURL, url.QueryEscape(bibkey))

	var result map[string]openLibraryBook
	found, err := p.getJSON(ctx, endpoint, nil, &result)
	if err != nil {
		return lookupResult{}, err
	}

	olBook, ok := result[bibkey]
	if !found || !ok {
		return lookupResult{NotFound: true}, nil
	}

	authors := make([]string, 0, len(olBook.Authors))
	for _, a := range olBook.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	return lookupResult{Data: &book.Metadata{
		Title:   olBook.Title,
		Authors: authors,
		Cover:   firstNonEmpty(olBook.Cover.Large, olBook.Cover.Medium, olBook.Cover.Small),
	}}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
