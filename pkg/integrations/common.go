package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/blockversemc/modfeed/pkg/buildinfo"
)

const httpTimeout = 10 * time.Second

// maxBodySize bounds a decoded response. Version lists of long-lived projects
// run to a few megabytes.
const maxBodySize = 32 << 20

// DefaultUserAgent identifies this build to upstream APIs.
var DefaultUserAgent = buildinfo.UserAgent()

var (
	// ErrNotFound is returned when a project or resource doesn't exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned for 429 responses. It is retried with backoff.
	ErrRateLimited = errors.New("rate limited")
)

// StatusError reports a response whose status was not 200. It unwraps to
// the matching sentinel ([ErrNotFound], [ErrRateLimited] or [ErrNetwork]),
// so errors.Is keeps working while errors.As recovers the status.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string { return fmt.Sprintf("%v: status %d", e.Err, e.StatusCode) }
func (e *StatusError) Unwrap() error { return e.Err }

// NewHTTPClient creates an HTTP client with a standard timeout for upstream requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
