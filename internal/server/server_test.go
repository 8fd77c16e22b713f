package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blockversemc/modfeed/internal/metrics"
	apierrors "github.com/blockversemc/modfeed/pkg/errors"
	"github.com/blockversemc/modfeed/pkg/feed"
	"github.com/blockversemc/modfeed/pkg/httputil"
	"github.com/blockversemc/modfeed/pkg/integrations/modrinth"
	"github.com/blockversemc/modfeed/pkg/modlist"
)

type stubBuilder struct {
	result *feed.Result
	err    error
	panics bool
}

func (b *stubBuilder) Build(ctx context.Context, refresh bool) (*feed.Result, error) {
	if b.panics {
		panic("boom")
	}
	return b.result, b.err
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newTestServer(b FeedBuilder, opts Options) *Server {
	if opts.CacheControl == (httputil.CacheControl{}) {
		opts.CacheControl = httputil.DefaultCacheControl()
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	return New(b, quietLogger(), opts)
}

func do(t *testing.T, h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sampleResult() *feed.Result {
	return &feed.Result{
		Records: []feed.Record{
			{PostID: modlist.NewPostID(42), Platform: "java", Version: "1.21, 1.20.6", Loader: "fabric", Link: "https://cdn/a.jar", Type: "mod"},
			{PostID: modlist.NewPostID("77"), Platform: "java", Version: "1.21", Loader: "iris", Link: "https://cdn/b.zip", Type: "shader"},
		},
		Mods: 2,
	}
}

func TestModData_Success(t *testing.T) {
	s := newTestServer(&stubBuilder{result: sampleResult()}, Options{})

	rec := do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Cache-Control"); got != "s-maxage=3600, stale-while-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get(headerFeedCache); got != "miss" {
		t.Errorf("%s = %q", headerFeedCache, got)
	}

	want := `[{"PostID":42,"Platform":"java","Version":"1.21, 1.20.6","Loader":"fabric","Link":"https://cdn/a.jar","Type":"mod"},` +
		`{"PostID":"77","Platform":"java","Version":"1.21","Loader":"iris","Link":"https://cdn/b.zip","Type":"shader"}]`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body =\n%s\nwant\n%s", got, want)
	}
}

func TestModData_EmptyFeed(t *testing.T) {
	s := newTestServer(&stubBuilder{result: &feed.Result{Records: []feed.Record{}}}, Options{})
	rec := do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

func TestModData_CachedHeader(t *testing.T) {
	res := sampleResult()
	res.FromCache = true
	s := newTestServer(&stubBuilder{result: res}, Options{})
	rec := do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)
	if got := rec.Header().Get(headerFeedCache); got != "hit" {
		t.Errorf("%s = %q, want hit", headerFeedCache, got)
	}
}

func TestModData_CustomCacheControl(t *testing.T) {
	s := newTestServer(&stubBuilder{result: sampleResult()}, Options{
		CacheControl: httputil.CacheControl{SharedMaxAge: 10 * time.Minute},
	})
	rec := do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)
	if got := rec.Header().Get("Cache-Control"); got != "s-maxage=600" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestModData_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "list sentinel",
			err:  fmt.Errorf("%w: status 404", modlist.ErrListUnavailable),
			want: `{"error":"Failed to fetch mod list from GitHub."}`,
		},
		{
			name: "list code",
			err:  apierrors.Wrap(apierrors.ErrCodeListUnavailable, errors.New("status 403"), "load mod list"),
			want: `{"error":"Failed to fetch mod list from GitHub."}`,
		},
		{
			name: "other coded error",
			err:  apierrors.New(apierrors.ErrCodeInvalidSlug, "invalid slug"),
			want: `{"error":"An unexpected error occurred during data fetching."}`,
		},
		{
			name: "anything else",
			err:  context.DeadlineExceeded,
			want: `{"error":"An unexpected error occurred during data fetching."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&stubBuilder{err: tt.err}, Options{})
			rec := do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.want {
				t.Errorf("body = %s, want %s", got, tt.want)
			}
			if got := rec.Header().Get("Cache-Control"); got != "" {
				t.Errorf("error responses must not be cacheable, got Cache-Control %q", got)
			}
		})
	}
}

type noVersions struct{}

func (noVersions) FetchVersions(context.Context, string, bool) ([]modrinth.Version, error) {
	return nil, nil
}

func TestModData_ListHostResponses(t *testing.T) {
	const (
		listMsg       = `{"error":"Failed to fetch mod list from GitHub."}`
		unexpectedMsg = `{"error":"An unexpected error occurred during data fetching."}`
	)
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"not found", http.StatusNotFound, "", listMsg},
		{"forbidden", http.StatusForbidden, "", listMsg},
		{"not json", http.StatusOK, "not json", unexpectedMsg},
		{"null", http.StatusOK, "null", unexpectedMsg},
		{"object", http.StatusOK, `{"slug":"x"}`, unexpectedMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer list.Close()

			source, err := modlist.NewHTTPSource(list.URL, quietLogger())
			if err != nil {
				t.Fatal(err)
			}
			b := feed.NewBuilder(source, noVersions{}, feed.Options{TTL: -1, Logger: quietLogger()})
			s := newTestServer(b, Options{})
			rec := do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.want {
				t.Errorf("body = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestModData_PanicRecovered(t *testing.T) {
	s := newTestServer(&stubBuilder{panics: true}, Options{})
	rec := do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubBuilder{}, Options{Version: "v1.2.3"})
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", nil)

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["version"] != "v1.2.3" {
		t.Errorf("body = %v", body)
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	s := newTestServer(&stubBuilder{}, Options{})

	if rec := do(t, s.Handler(), http.MethodGet, "/nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d", rec.Code)
	}
	if rec := do(t, s.Handler(), http.MethodPost, "/api/mod-data", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/mod-data = %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(&stubBuilder{}, Options{})

	rec := do(t, s.Handler(), http.MethodGet, "/healthz", nil)
	generated := rec.Header().Get(HeaderRequestID)
	if len(generated) != 36 {
		t.Errorf("generated request id = %q, want a UUID", generated)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/healthz", http.Header{HeaderRequestID: {"abc-123"}})
	if got := rec.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/healthz", http.Header{HeaderRequestID: {strings.Repeat("x", 500)}})
	if got := rec.Header().Get(HeaderRequestID); len(got) != 36 {
		t.Errorf("oversized request id should be replaced, got %d bytes", len(got))
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext(empty) = %q", got)
	}
	var seen string
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	do(t, h, http.MethodGet, "/", http.Header{HeaderRequestID: {"req-1"}})
	if seen != "req-1" {
		t.Errorf("handler saw %q", seen)
	}
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		s := newTestServer(&stubBuilder{result: sampleResult()}, Options{})
		rec := do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q", got)
		}
	})

	t.Run("specific origin", func(t *testing.T) {
		s := newTestServer(&stubBuilder{result: sampleResult()}, Options{CORSOrigin: "https://blockverse.example"})
		rec := do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://blockverse.example" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := rec.Header().Get("Vary"); got != "Origin" {
			t.Errorf("Vary = %q", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		s := newTestServer(&stubBuilder{}, Options{})
		rec := do(t, s.Handler(), http.MethodOptions, "/api/mod-data", http.Header{
			"Origin":                        {"https://blockverse.example"},
			"Access-Control-Request-Method": {"GET"},
		})
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "GET") {
			t.Errorf("Allow-Methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()), metrics.WithRuntimeCollectors(false))
	s := newTestServer(&stubBuilder{result: sampleResult()}, Options{Metrics: m})

	do(t, s.Handler(), http.MethodGet, "/api/mod-data", nil)
	rec := do(t, s.Handler(), http.MethodGet, "/metrics", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/api/mod-data"`) {
		t.Errorf("metrics missing request series:\n%s", rec.Body.String())
	}

	s = newTestServer(&stubBuilder{}, Options{})
	if rec := do(t, s.Handler(), http.MethodGet, "/metrics", nil); rec.Code != http.StatusNotFound {
		t.Errorf("/metrics without manager = %d, want 404", rec.Code)
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	s := New(&stubBuilder{result: sampleResult()}, log.New(&buf), Options{})

	do(t, s.Handler(), http.MethodGet, "/api/mod-data", http.Header{HeaderRequestID: {"log-me"}})

	out := buf.String()
	if !strings.Contains(out, "/api/mod-data") || !strings.Contains(out, "log-me") {
		t.Errorf("log output missing request details: %q", out)
	}
}

func TestServeListener_GracefulShutdown(t *testing.T) {
	s := newTestServer(&stubBuilder{result: sampleResult()}, Options{ShutdownTimeout: time.Second})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeListener returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
