package enrichers

import (
	"context"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelf/internal/cache"
	"github.com/lepinkainen/shelf/internal/enrichment/book"
	"github.com/lepinkainen/shelf/internal/errors"
	"github.com/lepinkainen/shelf/internal/ratelimit"
)

func testOptions(baseURL string) []Option {
	return []Option{WithBaseURL(baseURL), WithRateLimiter(ratelimit.Unlimited("test"))}
}

func TestOpenLibraryLookup(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "ISBN:9780441172719", r.URL.Query().Get("bibkeys"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "data", r.URL.Query().Get("jscmd"))
		_, _ = w.Write([]byte(`{"ISBN:9780441172719":{"title":"Dune","authors":[{"name":"Frank Herbert"}],"cover":{"medium":"https://covers/m.jpg","small":"https://covers/s.jpg"}}}`))
	}))

	meta, err := NewOpenLibrary(testOptions(server.URL)...).Lookup(context.Background(), "9780441172719")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Dune", meta.Title)
	assert.Equal(t, []string{"Frank Herbert"}, meta.Authors)
	assert.Equal(t, "https://covers/m.jpg", meta.Cover)
}

func TestOpenLibraryNoMatch(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	meta, err := NewOpenLibrary(testOptions(server.URL)...).Lookup(context.Background(), "123")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestOpenLibraryEmptyISBN(t *testing.T) {
	_, err := NewOpenLibrary().Lookup(context.Background(), "")
	assert.ErrorIs(t, err, book.ErrInvalidISBN)
}

func TestGoogleBooksLookup(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "isbn:123", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"volumeInfo":{"title":"Found","authors":["A","B"],"imageLinks":{"smallThumbnail":"https://img/small.jpg"}}}]}`))
	}))

	opts := append(testOptions(server.URL), WithAPIKey("secret"))
	meta, err := NewGoogleBooks(opts...).Lookup(context.Background(), "123")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Found", meta.Title)
	assert.Equal(t, []string{"A", "B"}, meta.Authors)
	assert.Equal(t, "https://img/small.jpg", meta.Cover)
}

func TestGoogleBooksNoMatch(t *testing.T) {
	for name, body := range map[string]string{
		"zero total":  `{"totalItems":0}`,
		"empty items": `{"totalItems":3,"items":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Empty(t, r.URL.Query().Get("key"))
				_, _ = w.Write([]byte(body))
			}))

			meta, err := NewGoogleBooks(testOptions(server.URL)...).Lookup(context.Background(), "123")
			require.NoError(t, err)
			assert.Nil(t, meta)
		})
	}
}

func TestGoogleBooksRateLimited(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := NewGoogleBooks(testOptions(server.URL)...).Lookup(context.Background(), "123")
	require.Error(t, err)
	assert.True(t, errors.IsRateLimitError(err))
	assert.Contains(t, err.Error(), "retry after 30s")
}

func TestISBNdbLookup(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("Authorization"))
		if r.URL.Path != "/book/123" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"book":{"title":"Deep","authors":["Writer"],"image":"https://img/i.jpg"}}`))
	}))

	p := NewISBNdb(append(testOptions(server.URL), WithAPIKey("key-1"))...)

	meta, err := p.Lookup(context.Background(), "123")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Deep", meta.Title)
	assert.Equal(t, "https://img/i.jpg", meta.Cover)

	meta, err = p.Lookup(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestISBNdbRequiresKey(t *testing.T) {
	_, err := NewISBNdb().Lookup(context.Background(), "123")
	assert.ErrorContains(t, err, "API key not configured")
}

func TestServerErrorIsReported(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := NewOpenLibrary(testOptions(server.URL)...).Lookup(context.Background(), "123")
	assert.ErrorIs(t, err, book.ErrAPIUnavailable)
}

func TestMalformedBodyIsReported(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":`))
	}))

	_, err := NewGoogleBooks(testOptions(server.URL)...).Lookup(context.Background(), "123")
	assert.ErrorContains(t, err, "decoding Google Books response")
}

func TestLookupsAreCached(t *testing.T) {
	var hits atomic.Int32
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("bibkeys") == "ISBN:1" {
			_, _ = w.Write([]byte(`{"ISBN:1":{"title":"Cached"}}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))

	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	p := NewOpenLibrary(append(testOptions(server.URL), WithCache(db))...)
	for range 2 {
		meta, err := p.Lookup(context.Background(), "1")
		require.NoError(t, err)
		require.NotNil(t, meta)
		assert.Equal(t, "Cached", meta.Title)

		meta, err = p.Lookup(context.Background(), "2")
		require.NoError(t, err)
		assert.Nil(t, meta)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestProvidersFromSettings(t *testing.T) {
	providers := Providers([]string{"isbndb", "googlebooks", "openlibrary", "bogus"}, Settings{})
	require.Len(t, providers, 2)
	assert.Equal(t, "Google Books", book.ProviderName(providers[0]))
	assert.Equal(t, "OpenLibrary", book.ProviderName(providers[1]))

	providers = Providers([]string{"isbndb"}, Settings{ISBNdbAPIKey: "k"})
	require.Len(t, providers, 1)
	assert.Equal(t, "ISBNdb", book.ProviderName(providers[0]))
}

type countingDoer struct {
	calls atomic.Int32
	next  HTTPDoer
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return d.next.Do(req)
}

func TestProvidersUseConfiguredHTTPClient(t *testing.T) {
	server := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shelf/test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ISBN:42":{"title":"Via Doer"}}`))
	}))

	doer := &countingDoer{next: server.Client()}
	providers := Providers([]string{"openlibrary"}, Settings{
		UserAgent:  "shelf/test",
		HTTPClient: doer,
		Options:    testOptions(server.URL),
	})
	require.Len(t, providers, 1)

	meta, err := providers[0].Lookup(context.Background(), "42")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Via Doer", meta.Title)
	assert.Equal(t, int32(1), doer.calls.Load())
}

func TestDefaultRateLimiters(t *testing.T) {
	gb := NewGoogleBooks()
	assert.Equal(t, "Google Books", gb.limiter.Name())

	ol := NewOpenLibrary()
	assert.Equal(t, "OpenLibrary", ol.limiter.Name())

	// Options still replace the default limiter
	gb = NewGoogleBooks(WithRateLimiter(ratelimit.Unlimited("test")))
	assert.Equal(t, "test", gb.limiter.Name())
}

func TestProvidersWithResolver(t *testing.T) {
	olServer := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	gbServer := newIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"volumeInfo":{"title":"From Google"}}]}`))
	}))

	resolver := book.NewResolver(time.Second,
		NewOpenLibrary(testOptions(olServer.URL)...),
		NewGoogleBooks(testOptions(gbServer.URL)...),
	)

	got := resolver.ResolveDetailed(context.Background(), "978-1")
	assert.Equal(t, "Google Books", got.Source)
	assert.Equal(t, "From Google", got.Metadata.Title)
	assert.Equal(t, book.FallbackCoverURL("9781"), got.Metadata.Cover)
}
