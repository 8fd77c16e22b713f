package modrinth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/blockversemc/modfeed/pkg/cache"
	apierrors "github.com/blockversemc/modfeed/pkg/errors"
	"github.com/blockversemc/modfeed/pkg/integrations"
)

// DefaultBaseURL is the Modrinth v2 API root.
const DefaultBaseURL = "https://api.modrinth.com/v2"

// Version is one published version of a Modrinth project.
//
// GameVersions and Loaders are reported exactly as Modrinth returns them;
// callers normalise as needed. Files may carry an empty URL for files that
// are still processing.
type Version struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	Name          string    `json:"name"`
	VersionNumber string    `json:"version_number"`
	VersionType   string    `json:"version_type"` // release, beta, alpha
	DatePublished time.Time `json:"date_published"`
	Downloads     int       `json:"downloads"`
	GameVersions  []string  `json:"game_versions"`
	Loaders       []string  `json:"loaders"`
	Files         []File    `json:"files"`
}

// File is a downloadable artifact attached to a [Version].
type File struct {
	URL      string            `json:"url"`
	Filename string            `json:"filename"`
	Primary  bool              `json:"primary"`
	Size     int64             `json:"size"`
	Hashes   map[string]string `json:"hashes,omitempty"`
}

// Client provides access to the Modrinth API.
// It handles HTTP requests with caching, retries, and rate limiting.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Modrinth client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long version listings are cached
//   - opts: Shared client options (rate limiter, HTTP client, keyer)
//
// The client sends [integrations.DefaultUserAgent] as Modrinth asks clients to identify themselves.
func NewClient(backend cache.Cache, cacheTTL time.Duration, opts ...integrations.Option) *Client {
	return NewClientWithBaseURL(backend, cacheTTL, DefaultBaseURL, integrations.DefaultUserAgent, opts...)
}

// NewClientWithBaseURL creates a client against a custom API root, for
// staging instances and tests. An empty userAgent selects the default.
func NewClientWithBaseURL(backend cache.Cache, cacheTTL time.Duration, baseURL, userAgent string, opts ...integrations.Option) *Client {
	if userAgent == "" {
		userAgent = integrations.DefaultUserAgent
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{
		"User-Agent": userAgent,
		"Accept":     "application/json",
	}
	return &Client{
		Client:  integrations.NewClient(backend, "modrinth", cacheTTL, headers, opts...),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchVersions retrieves every version of the project identified by slug
// (a slug or a project ID).
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - The versions in the order Modrinth lists them (newest first)
//   - An INVALID_SLUG error from [apierrors.ValidateSlug] for malformed slugs
//   - [integrations.ErrNotFound] if the project doesn't exist
//   - [integrations.ErrNetwork] or [integrations.ErrRateLimited] for HTTP failures
func (c *Client) FetchVersions(ctx context.Context, slug string, refresh bool) ([]Version, error) {
	if err := apierrors.ValidateSlug(slug); err != nil {
		return nil, err
	}

	var versions []Version
	err := c.Cached(ctx, slug, refresh, &versions, func() error {
		return c.fetchVersions(ctx, slug, &versions)
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (c *Client) fetchVersions(ctx context.Context, slug string, out *[]Version) error {
	var data []Version
	u := fmt.Sprintf("%s/project/%s/version", c.baseURL, url.PathEscape(slug))
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: project %s", err, slug)
		}
		return err
	}
	*out = data
	return nil
}
