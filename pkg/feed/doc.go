// Package feed builds the flat mod download feed.
//
// # Overview
//
// A feed build loads the mod list, fetches every listed project's versions
// from Modrinth concurrently, and flattens them into [Record] values: one
// per (version, file, loader) combination.
//
//	builder := feed.NewBuilder(source, client, feed.Options{
//	    Cache:  backend,
//	    Logger: logger,
//	})
//	result, err := builder.Build(ctx, false)
//	if err != nil {
//	    return err
//	}
//	json.NewEncoder(w).Encode(result.Records)
//
// # Failure model
//
// A failure to load the list fails the whole build. Only a refused list
// (non-200) wraps [modlist.ErrListUnavailable]; a malformed body or a
// network failure is coded INTERNAL_ERROR. A failure for a single mod is logged with
// its slug and that mod contributes no records; the build still succeeds
// and the slug is reported in [Result.Failed].
//
// # Ordering
//
// Records are grouped by mod in list order regardless of which fetch
// finishes first. Within a mod they follow Modrinth's version order, then
// file order, then loader order.
//
// # Caching
//
// Complete results are cached for [Options.TTL] under a key derived from
// the list location and output settings. Concurrent builds for the same key
// share one upstream fan-out.
package feed
