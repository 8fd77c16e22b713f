package modlist

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/blockversemc/modfeed/pkg/errors"
	"github.com/blockversemc/modfeed/pkg/httputil"
	"github.com/blockversemc/modfeed/pkg/integrations"
)

// HTTPSource fetches the mod list over HTTP.
type HTTPSource struct {
	url    string
	client *integrations.Client
	logger *log.Logger
}

// NewHTTPSource returns a source reading url. An empty url selects
// [DefaultURL]. The list is never cached here; it is re-read on every
// Load so edits to the published file show up on the next feed build.
func NewHTTPSource(url string, logger *log.Logger, opts ...integrations.Option) (*HTTPSource, error) {
	if url == "" {
		url = DefaultURL
	}
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	headers := map[string]string{"User-Agent": integrations.DefaultUserAgent}
	return &HTTPSource{
		url:    url,
		client: integrations.NewClient(nil, "modlist", 0, headers, opts...),
		logger: logger,
	}, nil
}

// URL returns the list location.
func (s *HTTPSource) URL() string { return s.url }

// Load fetches and parses the list. Only a non-200 answer wraps
// [ErrListUnavailable]; network and decode failures are returned as they
// are, and a body that is not an array is [ErrMalformedList].
func (s *HTTPSource) Load(ctx context.Context) ([]Entry, error) {
	var body json.RawMessage
	err := httputil.RetryWithBackoff(ctx, func() error {
		body = nil
		return s.client.Get(ctx, s.url, &body)
	})
	var statusErr *integrations.StatusError
	switch {
	case stderrors.As(err, &statusErr):
		return nil, fmt.Errorf("%w: %s: %v", ErrListUnavailable, s.url, err)
	case err != nil:
		return nil, fmt.Errorf("fetch mod list %s: %w", s.url, err)
	}
	return Parse(body, s.logger)
}

// FileSource reads the mod list from a local file.
type FileSource struct {
	path   string
	logger *log.Logger
}

// NewFileSource returns a source reading path.
func NewFileSource(path string, logger *log.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Load reads and parses the file. A read failure wraps [ErrListUnavailable];
// parse failures are reported as by [Parse].
func (s *FileSource) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListUnavailable, err)
	}
	return Parse(data, s.logger)
}

// Static is a fixed in-memory list.
type Static []Entry

// Load returns a copy of the list.
func (s Static) Load(context.Context) ([]Entry, error) {
	return append([]Entry(nil), s...), nil
}

var (
	_ Source = (*HTTPSource)(nil)
	_ Source = (*FileSource)(nil)
	_ Source = Static(nil)
)
