package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/heightcompare/pkg/cache"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist upstream.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork

	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned for 429 responses that outlived the retries.
	ErrRateLimited = errors.New("rate limited")
)

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// JoinURL joins a base URL and a path with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
