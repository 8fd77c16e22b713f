package httputil

import (
	"strconv"
	"strings"
	"time"
)

// HeaderCacheControl is the response header set by [CacheControl.Apply].
const HeaderCacheControl = "Cache-Control"

// DefaultSharedMaxAge is how long shared caches (CDNs) may serve a response.
const DefaultSharedMaxAge = time.Hour

// CacheControl describes the caching directives attached to successful
// responses. Only shared-cache directives are emitted; browsers revalidate.
//
// StaleWhileRevalidate has three states:
//   - disabled (Stale false): no directive
//   - enabled with zero window: bare "stale-while-revalidate"
//   - enabled with a window: "stale-while-revalidate=<seconds>"
type CacheControl struct {
	SharedMaxAge         time.Duration
	Stale                bool
	StaleWhileRevalidate time.Duration
}

// DefaultCacheControl returns "s-maxage=3600, stale-while-revalidate".
func DefaultCacheControl() CacheControl {
	return CacheControl{SharedMaxAge: DefaultSharedMaxAge, Stale: true}
}

// String renders the header value.
func (c CacheControl) String() string {
	var parts []string
	if c.SharedMaxAge > 0 {
		parts = append(parts, "s-maxage="+strconv.FormatInt(int64(c.SharedMaxAge/time.Second), 10))
	}
	if c.Stale {
		if c.StaleWhileRevalidate > 0 {
			parts = append(parts, "stale-while-revalidate="+strconv.FormatInt(int64(c.StaleWhileRevalidate/time.Second), 10))
		} else {
			parts = append(parts, "stale-while-revalidate")
		}
	}
	if len(parts) == 0 {
		return "no-store"
	}
	return strings.Join(parts, ", ")
}

// Apply sets the Cache-Control header on h.
func (c CacheControl) Apply(h interface{ Set(key, value string) }) {
	h.Set(HeaderCacheControl, c.String())
}
