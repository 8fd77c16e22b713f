// Package integrations provides HTTP clients for the upstream APIs modfeed
// aggregates.
//
// # Overview
//
// Each upstream has its own subpackage:
//
//   - [modrinth]: Modrinth project version listings
//
// The mod list itself is fetched through the same [Client] by
// [modlist.HTTPSource].
//
// # Client Pattern
//
// Upstream clients embed [Client] and follow one pattern:
//
//	client := modrinth.NewClient(backend, 24*time.Hour)
//	versions, err := client.FetchVersions(ctx, "sodium", false) // false = use cache
//
// [Client] handles:
//   - Request headers (a descriptive User-Agent by default)
//   - Response caching through any [cache.Cache] backend
//   - Retry with backoff on network errors, 5xx and 429 responses
//   - Optional outbound rate limiting via [httputil.Limiter]
//   - HTTP and cache events through [observability] hooks
//
// [modrinth]: github.com/blockversemc/modfeed/pkg/integrations/modrinth
// [modlist.HTTPSource]: github.com/blockversemc/modfeed/pkg/modlist.HTTPSource
// [cache.Cache]: github.com/blockversemc/modfeed/pkg/cache.Cache
// [httputil.Limiter]: github.com/blockversemc/modfeed/pkg/httputil.Limiter
// [observability]: github.com/blockversemc/modfeed/pkg/observability
package integrations
