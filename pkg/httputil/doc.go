// Package httputil provides HTTP utilities shared by the upstream clients and
// the feed server.
//
// # Overview
//
//   - [Retry]: Automatic retry with exponential backoff
//   - [Limiter]: Outbound token-bucket rate limiting
//   - [CacheControl]: Rendering of the response Cache-Control header
//
// # Retry
//
// [Retry] wraps a request with automatic retry for transient failures.
// Only errors wrapped in [RetryableError] are retried:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// The delay doubles after every attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// # Rate limiting
//
// Modrinth allows roughly 300 requests per minute per IP. A [Limiter] is
// shared across every goroutine in a fan-out so the aggregate stays below
// that ceiling:
//
//	lim := httputil.NewLimiter(5, 10)
//	if err := lim.Wait(ctx); err != nil {
//	    return err
//	}
//
// # Cache-Control
//
// [DefaultCacheControl] renders "s-maxage=3600, stale-while-revalidate", which
// lets a CDN in front of the server absorb most traffic.
package httputil
