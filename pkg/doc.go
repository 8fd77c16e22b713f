// Package pkg provides the core libraries for the modfeed aggregator.
//
// # Overview
//
// modfeed reads a list of Modrinth project slugs, asks the Modrinth API for
// every project's versions, and flattens the answers into one list of
// download records. The pkg directory is organized into these areas:
//
//  1. [modlist] - The slug list and where it comes from
//  2. [integrations] - Outbound HTTP clients (Modrinth)
//  3. [feed] - Fan-out, flattening and whole-feed caching
//  4. [cache] - Cache backends shared by the above
//  5. [httputil], [errors], [observability] - Supporting infrastructure
//
// # Architecture
//
// The data flow for one feed build:
//
//	mod list (GitHub raw JSON or local file)
//	         ↓
//	    [modlist] package (entries: slug, post_id, type)
//	         ↓
//	    [integrations/modrinth] package (versions per slug, concurrently)
//	         ↓
//	    [feed] package (flatten to records, cache the result)
//	         ↓
//	    JSON over HTTP, or a terminal table
//
// # Quick Start
//
//	import (
//	    "github.com/blockversemc/modfeed/pkg/cache"
//	    "github.com/blockversemc/modfeed/pkg/feed"
//	    "github.com/blockversemc/modfeed/pkg/integrations/modrinth"
//	    "github.com/blockversemc/modfeed/pkg/modlist"
//	)
//
//	backend := cache.NewNullCache()
//	source, _ := modlist.NewHTTPSource(modlist.DefaultURL, logger)
//	client := modrinth.NewClient(backend, time.Hour)
//
//	builder := feed.NewBuilder(source, client, feed.Options{Cache: backend})
//	res, err := builder.Build(ctx, false)
//	for _, r := range res.Records {
//	    fmt.Println(r.Loader, r.Version, r.Link)
//	}
//
// # Main Packages
//
// [modlist] - Decodes the slug list. Post ids are kept as the raw JSON scalar
// so numbers and strings survive the round trip unchanged.
//
// [integrations] - A cache-aware HTTP client with retry on transient failures
// and an optional shared rate limiter. [integrations/modrinth] builds on it.
//
// [feed] - The [feed.Builder] loads the list, fetches every project with
// bounded concurrency and concatenates the flattened records in list order.
// A failing project is logged and skipped.
//
// [cache] - File, Redis, MongoDB and no-op backends behind one interface.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -tags integration ./pkg/...  # Include live API and backend tests
//
// [modlist]: https://pkg.go.dev/github.com/blockversemc/modfeed/pkg/modlist
// [integrations]: https://pkg.go.dev/github.com/blockversemc/modfeed/pkg/integrations
// [integrations/modrinth]: https://pkg.go.dev/github.com/blockversemc/modfeed/pkg/integrations/modrinth
// [feed]: https://pkg.go.dev/github.com/blockversemc/modfeed/pkg/feed
// [cache]: https://pkg.go.dev/github.com/blockversemc/modfeed/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/blockversemc/modfeed/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/blockversemc/modfeed/pkg/errors
// [observability]: https://pkg.go.dev/github.com/blockversemc/modfeed/pkg/observability
package pkg
