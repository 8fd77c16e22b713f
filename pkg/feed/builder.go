package feed

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/blockversemc/modfeed/pkg/cache"
	"github.com/blockversemc/modfeed/pkg/errors"
	"github.com/blockversemc/modfeed/pkg/integrations/modrinth"
	"github.com/blockversemc/modfeed/pkg/modlist"
	"github.com/blockversemc/modfeed/pkg/observability"
)

const (
	// DefaultConcurrency is the number of mods fetched at once.
	DefaultConcurrency = 8

	// DefaultTTL is how long a built feed is reused. It matches the
	// s-maxage advertised to shared caches.
	DefaultTTL = time.Hour
)

// VersionFetcher returns the versions of a Modrinth project.
// *modrinth.Client satisfies it.
type VersionFetcher interface {
	FetchVersions(ctx context.Context, slug string, refresh bool) ([]modrinth.Version, error)
}

// Options configures a [Builder]. The zero value is usable.
type Options struct {
	Platform    string        // reported platform (default "java")
	DefaultType string        // type for entries without one (default "mod")
	Concurrency int           // parallel fetches (default 8)
	TTL         time.Duration // feed cache lifetime (default 1h, negative disables)
	ListID      string        // identifies the list in cache keys, usually its URL

	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Platform == "" {
		o.Platform = DefaultPlatform
	}
	if o.DefaultType == "" {
		o.DefaultType = modlist.DefaultType
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Result is the outcome of a feed build.
type Result struct {
	Records     []Record      `json:"records"`
	Mods        int           `json:"mods"`
	Failed      []string      `json:"failed,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`

	// FromCache is set when the result was served from the feed cache.
	FromCache bool `json:"-"`
}

// Builder builds feeds. It is safe for concurrent use; concurrent builds
// with the same settings share one upstream fan-out.
type Builder struct {
	source  modlist.Source
	fetcher VersionFetcher
	opts    Options
	group   singleflight.Group
}

// NewBuilder creates a builder reading entries from source and versions
// from fetcher.
func NewBuilder(source modlist.Source, fetcher VersionFetcher, opts Options) *Builder {
	opts.setDefaults()
	return &Builder{source: source, fetcher: fetcher, opts: opts}
}

// Options returns the effective options after defaults were applied.
func (b *Builder) Options() Options { return b.opts }

// CacheKey returns the key complete results are cached under.
func (b *Builder) CacheKey() string {
	return b.opts.Keyer.FeedKey(cache.FeedKeyOpts{
		ListURL:     b.opts.ListID,
		Platform:    b.opts.Platform,
		DefaultType: b.opts.DefaultType,
	})
}

// Build returns the current feed. Unless refresh is set a cached result
// younger than the TTL is returned without contacting upstream.
//
// A list the host refused to serve is coded LIST_UNAVAILABLE and wraps
// [modlist.ErrListUnavailable]; any other list failure is coded
// INTERNAL_ERROR. The context error is returned if ctx ends first. Per-mod failures never fail the build.
func (b *Builder) Build(ctx context.Context, refresh bool) (*Result, error) {
	key := b.CacheKey()
	if !refresh {
		if res, ok := b.cached(ctx, key); ok {
			return res, nil
		}
	}

	flight := key
	if refresh {
		flight += ":refresh"
	}
	ch := b.group.DoChan(flight, func() (any, error) {
		buildCtx, cancel := detachCancel(ctx)
		defer cancel()
		res, err := b.build(buildCtx, refresh)
		if err != nil {
			return nil, err
		}
		b.store(buildCtx, key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Result), nil
	}
}

// detachCancel returns a context that outlives parent's cancellation but
// keeps its deadline, so one caller leaving does not abort a shared build.
func detachCancel(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(parent)
	if dl, ok := parent.Deadline(); ok {
		return context.WithDeadline(ctx, dl)
	}
	return context.WithCancel(ctx)
}

func (b *Builder) cached(ctx context.Context, key string) (*Result, bool) {
	if b.opts.TTL < 0 {
		return nil, false
	}
	data, ok, err := b.opts.Cache.Get(ctx, key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, "feed")
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		b.opts.Logger.Debug("discarding unreadable cached feed", "err", err)
		observability.Cache().OnCacheMiss(ctx, "feed")
		return nil, false
	}
	res.FromCache = true
	observability.Cache().OnCacheHit(ctx, "feed")
	return &res, true
}

func (b *Builder) store(ctx context.Context, key string, res *Result) {
	if b.opts.TTL < 0 {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := b.opts.Cache.Set(ctx, key, data, b.opts.TTL); err != nil {
		b.opts.Logger.Warn("failed to cache feed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "feed", len(data))
}

func (b *Builder) build(ctx context.Context, refresh bool) (res *Result, err error) {
	start := time.Now()
	hooks := observability.Feed()
	logger := b.opts.Logger

	entries, err := b.source.Load(ctx)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		code := errors.ErrCodeInternal
		if stderrors.Is(err, modlist.ErrListUnavailable) {
			code = errors.ErrCodeListUnavailable
		}
		return nil, errors.Wrap(code, err, "load mod list")
	}
	hooks.OnBuildStart(ctx, len(entries))
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Records)
		}
		hooks.OnBuildComplete(ctx, len(entries), n, time.Since(start), err)
	}()

	perMod := make([][]Record, len(entries))
	failed := make([]bool, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)
	for i, entry := range entries {
		if entry.Type == "" {
			entry.Type = b.opts.DefaultType
		}
		g.Go(func() error {
			modStart := time.Now()
			versions, err := b.fetcher.FetchVersions(gctx, entry.Slug, refresh)
			if err != nil {
				failed[i] = true
				hooks.OnModComplete(gctx, entry.Slug, 0, time.Since(modStart), err)
				logger.Error("failed to fetch mod", "slug", entry.Slug, "err", err)
				return nil
			}
			perMod[i] = Flatten(entry, versions, b.opts.Platform)
			hooks.OnModComplete(gctx, entry.Slug, len(perMod[i]), time.Since(modStart), nil)
			logger.Debug("fetched mod", "slug", entry.Slug, "versions", len(versions), "records", len(perMod[i]))
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build feed: %w", err)
	}

	res = &Result{
		Records:     []Record{},
		Mods:        len(entries),
		GeneratedAt: start.UTC(),
	}
	for i, recs := range perMod {
		if failed[i] {
			res.Failed = append(res.Failed, entries[i].Slug)
		}
		res.Records = append(res.Records, recs...)
	}
	res.Duration = time.Since(start)

	logger.Info("built feed",
		"mods", res.Mods,
		"failed", len(res.Failed),
		"records", len(res.Records),
		"duration", res.Duration)
	return res, nil
}
