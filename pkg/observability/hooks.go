// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about feed builds, cache operations, and upstream calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The serve command registers the Prometheus implementation from
// internal/metrics; the CLI commands leave the no-op defaults in place.
//
// # Usage
//
// Register hooks at application startup. Each setter returns the hooks it
// replaced, so a command can install hooks for one run and put them back:
//
//	prev := observability.SetFeedHooks(progressHooks)
//	defer observability.SetFeedHooks(prev)
//
// Libraries call hooks to emit events:
//
//	observability.Feed().OnBuildStart(ctx, len(entries))
//	// ... fan out ...
//	observability.Feed().OnBuildComplete(ctx, mods, records, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// FeedHooks receives events from feed assembly.
type FeedHooks interface {
	// OnBuildStart fires once the mod list is loaded, before the fan-out.
	OnBuildStart(ctx context.Context, mods int)
	// OnBuildComplete fires when the flattened feed is ready or the build failed.
	OnBuildComplete(ctx context.Context, mods, records int, duration time.Duration, err error)
	// OnModComplete fires per mod. A non-nil err means the mod contributed no records.
	OnModComplete(ctx context.Context, slug string, records int, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is "http" for
// upstream responses and "feed" for assembled feeds.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives outbound requests made by the upstream clients.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	// OnResponse fires for every response, whatever its status.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError fires when no response arrived (dial failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopFeedHooks ignores every event.
type NoopFeedHooks struct{}

func (NoopFeedHooks) OnBuildStart(context.Context, int)                                {}
func (NoopFeedHooks) OnBuildComplete(context.Context, int, int, time.Duration, error)  {}
func (NoopFeedHooks) OnModComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds the registered implementation of one hook interface.
type slot[T any] struct {
	mu   sync.RWMutex
	h    T
	noop T
}

func newSlot[T any](noop T) *slot[T] {
	return &slot[T]{h: noop, noop: noop}
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.h
}

// set installs h and returns the previous hooks. A nil h is ignored.
func (s *slot[T]) set(h T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.h
	if any(h) != nil {
		s.h = h
	}
	return prev
}

func (s *slot[T]) reset() { s.set(s.noop) }

var (
	feedSlot  = newSlot[FeedHooks](NoopFeedHooks{})
	cacheSlot = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot  = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetFeedHooks installs h and returns the hooks it replaced.
func SetFeedHooks(h FeedHooks) FeedHooks { return feedSlot.set(h) }

// SetCacheHooks installs h and returns the hooks it replaced.
func SetCacheHooks(h CacheHooks) CacheHooks { return cacheSlot.set(h) }

// SetHTTPHooks installs h and returns the hooks it replaced.
func SetHTTPHooks(h HTTPHooks) HTTPHooks { return httpSlot.set(h) }

// Feed returns the registered feed hooks.
func Feed() FeedHooks { return feedSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks. Tests call it in cleanup.
func Reset() {
	feedSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
