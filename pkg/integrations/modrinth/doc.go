// Package modrinth provides an HTTP client for the Modrinth API.
//
// # Overview
//
// This package fetches project version listings from Modrinth
// (https://modrinth.com), the Minecraft mod registry.
//
// # Usage
//
//	client := modrinth.NewClient(backend, 24*time.Hour)
//
//	versions, err := client.FetchVersions(ctx, "sodium", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, v := range versions {
//	    fmt.Println(v.VersionNumber, v.GameVersions, v.Loaders)
//	}
//
// # Version
//
// [FetchVersions] returns []Version, each containing:
//
//   - GameVersions: Minecraft versions the build supports
//   - Loaders: mod loaders (fabric, forge, neoforge, quilt, ...)
//   - Files: downloadable artifacts with their CDN URLs
//
// # Caching
//
// Responses are cached per slug under the "modrinth" namespace. Pass
// refresh=true to bypass the cache.
//
// # Rate limits
//
// Modrinth allows about 300 requests per minute per IP. Pass
// integrations.WithLimiter to share a token bucket across a fan-out.
package modrinth
