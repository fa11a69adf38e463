// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; the binary decides
// what receives them. The defaults are no-ops, so instrumentation costs
// nothing unless main registers something.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetChartHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Chart().OnRenderStart(ctx, formats)
//	// ... render ...
//	observability.Chart().OnRenderComplete(ctx, formats, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Chart Hooks
// =============================================================================

// ChartHooks receives events from the chart pipeline.
type ChartHooks interface {
	// OnResolve records a unit/window selection for count entities.
	OnResolve(ctx context.Context, unit string, count, marks int)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Catalog Hooks
// =============================================================================

// CatalogHooks receives events from catalog sources.
type CatalogHooks interface {
	// OnFetch records a full fetch from a backend.
	OnFetch(ctx context.Context, backend string, count int, duration time.Duration, err error)

	// OnMemoHit records a query answered from the memoized snapshot.
	OnMemoHit(ctx context.Context, backend string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopChartHooks is a no-op implementation of ChartHooks.
type NoopChartHooks struct{}

func (NoopChartHooks) OnResolve(context.Context, string, int, int)                      {}
func (NoopChartHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopChartHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCatalogHooks is a no-op implementation of CatalogHooks.
type NoopCatalogHooks struct{}

func (NoopCatalogHooks) OnFetch(context.Context, string, int, time.Duration, error) {}
func (NoopCatalogHooks) OnMemoHit(context.Context, string)                          {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	chartHooks   ChartHooks   = NoopChartHooks{}
	catalogHooks CatalogHooks = NoopCatalogHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetChartHooks registers custom chart hooks.
func SetChartHooks(h ChartHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		chartHooks = h
	}
}

// SetCatalogHooks registers custom catalog hooks.
func SetCatalogHooks(h CatalogHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		catalogHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Chart returns the registered chart hooks.
func Chart() ChartHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return chartHooks
}

// Catalog returns the registered catalog hooks.
func Catalog() CatalogHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return catalogHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	chartHooks = NoopChartHooks{}
	catalogHooks = NoopCatalogHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
