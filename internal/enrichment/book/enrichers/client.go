// Package enrichers implements book.Provider for the public book metadata APIs.
package enrichers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lepinkainen/shelf/internal/cache"
	"github.com/lepinkainen/shelf/internal/enrichment/book"
	"github.com/lepinkainen/shelf/internal/errors"
	"github.com/lepinkainen/shelf/internal/ratelimit"
)

// HTTPDoer is the subset of *http.Client the providers need.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a provider.
type Option func(*client)

// WithBaseURL points the provider at a different API root, e.g. an httptest server.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *client) {
		c.http = doer
	}
}

// WithRateLimiter replaces the provider's default limiter.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(c *client) {
		c.limiter = limiter
	}
}

// WithCache stores lookups in the given cache. Without it every lookup hits the API.
func WithCache(db *cache.DB) Option {
	return func(c *client) {
		c.cache = db
	}
}

// WithAPIKey sets the credential sent with each request.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *client) {
		c.userAgent = ua
	}
}

type client struct {
	name      string
	baseURL   string
	http      HTTPDoer
	limiter   *ratelimit.Limiter
	cache     *cache.DB
	apiKey    string
	userAgent string
}

func newClient(name, baseURL string, opts []Option) client {
	c := client{
		name:      name,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
		limiter:   ratelimit.New(name, 1),
		userAgent: "shelf",
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// lookupResult is the cached form of a lookup. NotFound entries are cached
// for a shorter time than matches.
type lookupResult struct {
	Data     *book.Metadata `json:"data,omitempty"`
	NotFound bool           `json:"not_found"`
}

func (c *client) cachedLookup(table, isbn string, fetch cache.FetchFunc[lookupResult]) (*book.Metadata, error) {
	if isbn == "" {
		return nil, book.ErrInvalidISBN
	}

	result, _, err := cache.GetOrFetch(c.cache, table, isbn, fetch,
		cache.SelectNegativeTTL(c.cache, func(r lookupResult) bool { return r.NotFound }))
	if err != nil {
		return nil, err
	}
	if result.NotFound || result.Data == nil {
		return nil, nil
	}
	return result.Data, nil
}

// getJSON fetches url and decodes the body into out. A 404 is reported as
// found=false without an error.
func (c *client) getJSON(ctx context.Context, url string, header http.Header, out any) (found bool, err error) {
	if !c.limiter.Allow() {
		slog.Debug("Rate limited, waiting", "provider", c.name)
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s request: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		retry, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return false, errors.NewRateLimitErrorWithRetry(c.name+" rate limit exceeded", time.Duration(retry)*time.Second)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, fmt.Errorf("%w: %s returned status %d", book.ErrAPIUnavailable, c.name, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decoding %s response: %w", c.name, err)
	}
	return true, nil
}
