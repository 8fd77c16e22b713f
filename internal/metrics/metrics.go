// Package metrics exposes Prometheus metrics for the feed service.
//
// A [Manager] owns a private registry. It implements the observability
// hook interfaces so that feed builds, cache lookups and upstream requests
// are counted once [Manager.Install] is called, and provides an HTTP
// middleware for inbound requests plus a handler serving the registry.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blockversemc/modfeed/pkg/observability"
)

const defaultNamespace = "modfeed"

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry
	runtime   bool

	// Feed builds
	feedBuilds        *prometheus.CounterVec
	feedBuildDuration prometheus.Histogram
	feedRecords       prometheus.Gauge
	feedMods          prometheus.Gauge
	modFetches        *prometheus.CounterVec
	modFetchDuration  prometheus.Histogram

	// Caches
	cacheEvents   *prometheus.CounterVec
	cacheSetBytes *prometheus.CounterVec

	// Upstream requests
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec

	// Inbound HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge
}

// NewManager creates a metrics manager registered on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		buckets:   prometheus.DefBuckets,
		runtime:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.feedBuilds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "feed",
		Name:      "builds_total",
		Help:      "Total number of feed builds by result",
	}, []string{"result"})

	m.feedBuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "feed",
		Name:      "build_duration_seconds",
		Help:      "Duration of complete feed builds",
		Buckets:   m.buckets,
	})

	m.feedRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "feed",
		Name:      "records",
		Help:      "Number of records in the last successful build",
	})

	m.feedMods = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "feed",
		Name:      "mods",
		Help:      "Number of mods listed in the last build",
	})

	m.modFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "feed",
		Name:      "mod_fetches_total",
		Help:      "Per-mod version fetches by result",
	}, []string{"result"})

	m.modFetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "feed",
		Name:      "mod_fetch_duration_seconds",
		Help:      "Duration of per-mod version fetches",
		Buckets:   m.buckets,
	})

	m.cacheEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "events_total",
		Help:      "Cache lookups and writes by cache and event",
	}, []string{"cache", "event"})

	m.cacheSetBytes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "written_bytes_total",
		Help:      "Bytes written to the cache",
	}, []string{"cache"})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Outbound HTTP responses by host and status code",
	}, []string{"host", "method", "status_code"})

	m.upstreamDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Outbound HTTP request duration",
		Buckets:   m.buckets,
	}, []string{"host"})

	m.upstreamErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "upstream",
		Name:      "errors_total",
		Help:      "Outbound HTTP requests that failed without a response",
	}, []string{"host"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by route and method",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	m.httpInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being served",
	})
}

// Registry returns the registry metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Install routes the global observability hooks to this manager.
func (m *Manager) Install() {
	observability.SetFeedHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Middleware records inbound request counts and latency by chi route pattern.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// OnBuildStart implements observability.FeedHooks.
func (m *Manager) OnBuildStart(_ context.Context, mods int) {
	m.feedMods.Set(float64(mods))
}

// OnBuildComplete implements observability.FeedHooks.
func (m *Manager) OnBuildComplete(_ context.Context, _ int, records int, dur time.Duration, err error) {
	m.feedBuildDuration.Observe(dur.Seconds())
	if err != nil {
		m.feedBuilds.WithLabelValues("error").Inc()
		return
	}
	m.feedBuilds.WithLabelValues("success").Inc()
	m.feedRecords.Set(float64(records))
}

// OnModComplete implements observability.FeedHooks.
func (m *Manager) OnModComplete(_ context.Context, _ string, _ int, dur time.Duration, err error) {
	m.modFetchDuration.Observe(dur.Seconds())
	if err != nil {
		m.modFetches.WithLabelValues("error").Inc()
		return
	}
	m.modFetches.WithLabelValues("success").Inc()
}

// OnCacheHit implements observability.CacheHooks.
func (m *Manager) OnCacheHit(_ context.Context, cacheType string) {
	m.cacheEvents.WithLabelValues(cacheType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Manager) OnCacheMiss(_ context.Context, cacheType string) {
	m.cacheEvents.WithLabelValues(cacheType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Manager) OnCacheSet(_ context.Context, cacheType string, size int) {
	m.cacheEvents.WithLabelValues(cacheType, "set").Inc()
	m.cacheSetBytes.WithLabelValues(cacheType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (m *Manager) OnRequest(context.Context, string, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (m *Manager) OnResponse(_ context.Context, method, host, _ string, status int, dur time.Duration) {
	m.upstreamRequests.WithLabelValues(host, method, strconv.Itoa(status)).Inc()
	m.upstreamDuration.WithLabelValues(host).Observe(dur.Seconds())
}

// OnError implements observability.HTTPHooks.
func (m *Manager) OnError(_ context.Context, _, host, _ string, _ error) {
	m.upstreamErrors.WithLabelValues(host).Inc()
}

var (
	_ observability.FeedHooks  = (*Manager)(nil)
	_ observability.CacheHooks = (*Manager)(nil)
	_ observability.HTTPHooks  = (*Manager)(nil)
)
