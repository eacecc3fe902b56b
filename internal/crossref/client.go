// Package crossref provides a rate-limited, retrying client for the Crossref
// registry: per-work reference lists, work metadata, and formatted citations
// via DOI content negotiation.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/refcart/internal/cache"
)

const (
	// APIBaseURL is the Crossref works API base URL.
	APIBaseURL = "https://api.crossref.org"

	// ResolverBaseURL is the DOI resolver used for content-negotiated
	// citation lookups.
	ResolverBaseURL = "https://doi.org"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// RateLimit caps outgoing requests per second across all workers,
	// per Crossref's polite-pool guidance.
	RateLimit = 10.0

	// MaxRetries is the number of retries after the initial attempt for
	// transient failures.
	MaxRetries = 3

	// RetryBaseDelay is the initial backoff delay; it doubles per attempt.
	RetryBaseDelay = 300 * time.Millisecond
)

// UserAgent identifies this client to the registry. Crossref routes
// requests carrying a mailto to its polite pool.
const UserAgent = "refcart/1.0"

// Client is a rate-limited HTTP client for Crossref lookups. All lookup
// results are cached per (operation, DOI[, format]) key, so repeated calls
// with identical arguments do not re-issue network requests. The cache is
// shared across concurrent workers.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache
	apiBase    string
	resolver   string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache sets the response cache.
func WithCache(cc cache.Cache) ClientOption {
	return func(c *Client) {
		c.cache = cc
	}
}

// WithAPIBaseURL sets a custom works API base URL (for testing).
func WithAPIBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.apiBase = strings.TrimRight(url, "/")
	}
}

// WithResolverBaseURL sets a custom DOI resolver base URL (for testing).
func WithResolverBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.resolver = strings.TrimRight(url, "/")
	}
}

// WithMailto sets the contact address advertised in the User-Agent header.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// WithRateLimit overrides the default requests-per-second limit.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new Crossref client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		cache:      cache.NewMemory(),
		apiBase:    APIBaseURL,
		resolver:   ResolverBaseURL,
	}

	if addr := os.Getenv("CROSSREF_MAILTO"); addr != "" {
		c.mailto = addr
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// userAgent builds the User-Agent header value.
func (c *Client) userAgent() string {
	if c.mailto != "" {
		return fmt.Sprintf("%s (mailto:%s)", UserAgent, c.mailto)
	}
	return UserAgent
}

// retryable reports whether a status code indicates a transient failure.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// get performs a GET with rate limiting and retries, returning the response
// body. Transient failures (429/5xx, connection errors) are retried with
// exponential backoff; other non-2xx statuses fail immediately.
func (c *Client) get(ctx context.Context, url, accept, doi string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			delay := RetryBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent())
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrNetworkError, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				lastErr = fmt.Errorf("%w: %v", ErrNetworkError, readErr)
				continue
			}
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, doi)
		case retryable(resp.StatusCode):
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
			} else {
				lastErr = &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), DOI: doi}
			}
			continue
		default:
			return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), DOI: doi}
		}
	}

	return nil, lastErr
}

// cachedGet wraps get with a cache lookup under the given key.
func (c *Client) cachedGet(ctx context.Context, key, url, accept, doi string) ([]byte, error) {
	if body, ok := c.cache.Get(key); ok {
		return body, nil
	}

	body, err := c.get(ctx, url, accept, doi)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, body)
	return body, nil
}

// worksURL builds the works API URL for a DOI.
func (c *Client) worksURL(doi string) string {
	return fmt.Sprintf("%s/works/%s", c.apiBase, doi)
}

// References fetches the reference list of a work. References without a DOI
// are dropped; duplicate DOIs within the response keep only their first
// occurrence, preserving order.
func (c *Client) References(ctx context.Context, doi string) ([]RawReference, error) {
	body, err := c.cachedGet(ctx, "refs:"+doi, c.worksURL(doi), "application/json", doi)
	if err != nil {
		return nil, err
	}

	var msg worksMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: parsing reference list: %v", ErrInvalidResponse, err)
	}

	seen := make(map[string]bool)
	var refs []RawReference
	for _, entry := range msg.Message.Reference {
		d := strings.TrimSpace(entry.DOI)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		refs = append(refs, RawReference{DOI: d, Unstructured: entry.Unstructured})
	}

	return refs, nil
}

// Metadata fetches and extracts work metadata for a DOI: the first title,
// the first available year probing issued, published-print, published-online,
// then created, and the author list (entries with neither name are skipped).
func (c *Client) Metadata(ctx context.Context, doi string) (*Metadata, error) {
	body, err := c.cachedGet(ctx, "meta:"+doi, c.worksURL(doi), "application/json", doi)
	if err != nil {
		return nil, err
	}

	var msg worksMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: parsing metadata: %v", ErrInvalidResponse, err)
	}

	m := msg.Message
	meta := &Metadata{}

	if len(m.Title) > 0 {
		meta.Title = m.Title[0]
	}

	for _, d := range []dateParts{m.Issued, m.PublishedPrint, m.PublishedOnline, m.Created} {
		if y := d.year(); y != 0 {
			meta.Year = y
			break
		}
	}

	for _, a := range m.Author {
		if a.Family == "" && a.Given == "" {
			continue
		}
		meta.Authors = append(meta.Authors, a)
	}

	return meta, nil
}

// Citation fetches the formatted citation text for a DOI in the given
// format, via content negotiation against the DOI resolver.
func (c *Client) Citation(ctx context.Context, doi string, format Format) (string, error) {
	accept := format.Accept()
	if accept == "" {
		return "", fmt.Errorf("unknown citation format: %s", format)
	}

	key := fmt.Sprintf("cite:%s:%s", format, doi)
	url := fmt.Sprintf("%s/%s", c.resolver, doi)
	body, err := c.cachedGet(ctx, key, url, accept, doi)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}
