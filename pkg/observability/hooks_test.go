package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	f := NoopFeedHooks{}
	f.OnBuildStart(ctx, 12)
	f.OnBuildComplete(ctx, 12, 340, time.Second, nil)
	f.OnModComplete(ctx, "sodium", 40, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "feed")
	c.OnCacheMiss(ctx, "http")
	c.OnCacheSet(ctx, "feed", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.modrinth.com", "/v2/project/sodium/version")
	h.OnResponse(ctx, "GET", "api.modrinth.com", "/v2/project/sodium/version", 200, time.Second)
	h.OnError(ctx, "GET", "api.modrinth.com", "/v2/project/sodium/version", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Feed().(NoopFeedHooks); !ok {
		t.Error("Feed() should return NoopFeedHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customFeed := &testFeedHooks{}
	SetFeedHooks(customFeed)
	if Feed() != customFeed {
		t.Error("SetFeedHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Feed().(NoopFeedHooks); !ok {
		t.Error("Reset() should restore NoopFeedHooks")
	}
}

func TestSetHooksReturnsPrevious(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	first := &testFeedHooks{}
	if prev := SetFeedHooks(first); prev != (NoopFeedHooks{}) {
		t.Errorf("first SetFeedHooks returned %T, want NoopFeedHooks", prev)
	}

	second := &testFeedHooks{}
	prev := SetFeedHooks(second)
	if prev != first {
		t.Error("SetFeedHooks should return the replaced hooks")
	}

	SetFeedHooks(prev)
	if Feed() != first {
		t.Error("restoring the previous hooks should reinstall them")
	}

	cache := &testCacheHooks{}
	SetCacheHooks(cache)
	if got := SetCacheHooks(&testCacheHooks{}); got != cache {
		t.Error("SetCacheHooks should return the replaced hooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testFeedHooks{}
	SetFeedHooks(custom)

	SetFeedHooks(nil)

	if Feed() != custom {
		t.Error("SetFeedHooks(nil) should be ignored")
	}

	Reset()
}

type testFeedHooks struct{ NoopFeedHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
