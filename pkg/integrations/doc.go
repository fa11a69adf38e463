// Package integrations provides the HTTP plumbing shared by remote catalog
// backends.
//
// # Overview
//
// [Client] wraps a go-retryablehttp client with:
//   - default headers applied to every request
//   - an optional token-bucket rate limit (x/time/rate)
//   - response caching through [cache.Cache], keyed by [cache.Keyer.HTTPKey]
//   - request/response hooks from [observability.HTTP]
//
// Backend subpackages build on it:
//
//   - [supabase]: PostgREST API of the hosted character store
//
// # Client Pattern
//
//	client := integrations.NewClient(c, "supabase", time.Hour, headers,
//		integrations.WithRateLimit(10, 5))
//	var rows []catalog.Record
//	err := client.Cached(ctx, "characters", false, &rows, func() error {
//		return client.Get(ctx, url, &rows)
//	})
//
// Server errors and connection failures are retried by the transport. A 5xx
// that survives the retries is returned wrapped in [cache.RetryableError].
//
// [supabase]: github.com/matzehuels/heightcompare/pkg/integrations/supabase
// [cache.Cache]: github.com/matzehuels/heightcompare/pkg/cache.Cache
// [cache.Keyer.HTTPKey]: github.com/matzehuels/heightcompare/pkg/cache.Keyer
// [cache.RetryableError]: github.com/matzehuels/heightcompare/pkg/cache.RetryableError
// [observability.HTTP]: github.com/matzehuels/heightcompare/pkg/observability.HTTP
package integrations
