package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/observability"
)

// Client provides shared HTTP functionality for remote catalog backends.
// It handles caching, retries, rate limiting and common request headers.
type Client struct {
	rc        *retryablehttp.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	limiter   *rate.Limiter
	headers   map[string]string
}

// Option configures a [Client].
type Option func(*Client)

// WithRateLimit limits requests to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger routes retry diagnostics through logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.rc.Logger = newLeveledLogger(logger)
		}
	}
}

// WithRetry sets the retry count and the backoff bounds.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.rc.RetryMax = max
		c.rc.RetryWaitMin = waitMin
		c.rc.RetryWaitMax = waitMax
	}
}

// WithTransport replaces the underlying round tripper (tests use a mock).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.rc.HTTPClient.Transport = rt }
}

// WithKeyer sets the cache key scheme. The default is [cache.DefaultKeyer].
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// NewClient creates a Client caching responses in c for ttl under namespace.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and nil for c to
// disable caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string, opts ...Option) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	rc := retryablehttp.NewClient()
	rc.HTTPClient = NewHTTPClient()
	rc.Logger = nil
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		rc:        rc,
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	k := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, k); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, "http")
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, k, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers and handles retries automatically.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	host, path := splitURL(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.rc.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, &cache.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func splitURL(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", raw
	}
	return u.Host, u.Path
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case code == http.StatusTooManyRequests:
		return &cache.RetryableError{Err: fmt.Errorf("%w: status %d", ErrRateLimited, code)}
	case code >= 500:
		return &cache.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
