// Package modlist loads the list of mods the feed is built from.
//
// The list is a JSON array published alongside the website:
//
//	[
//	  {"slug": "sodium", "post_id": 42, "type": "mod"},
//	  {"slug": "complementary-reimagined", "post_id": "77", "type": "shader"}
//	]
//
// Each [Entry] names a Modrinth project by slug, the website post it
// belongs to, and an optional content type. A [Source] loads the entries;
// [HTTPSource] reads the published list and [FileSource] a local copy.
package modlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultURL is the published mod list.
const DefaultURL = "https://raw.githubusercontent.com/blockversemc/blockverse-mc/main/modrinth-slugs.json"

// DefaultType is the content type reported for entries without one.
const DefaultType = "mod"

// ErrListUnavailable is returned when the list host answers with a non-200
// status, or a local list file cannot be read.
var ErrListUnavailable = errors.New("mod list unavailable")

// ErrMalformedList is returned when the list body is valid JSON but not an
// array of entry objects.
var ErrMalformedList = errors.New("mod list is not an array of entries")

// Entry is one item of the mod list.
type Entry struct {
	Slug   string `json:"slug"`
	PostID PostID `json:"post_id"`
	Type   string `json:"type,omitempty"`
}

// Kind returns the entry's content type, or [DefaultType] if unset.
func (e Entry) Kind() string {
	if e.Type == "" {
		return DefaultType
	}
	return e.Type
}

// PostID is a website post identifier. The list publishes it as either a
// number or a string; the raw JSON scalar is kept so it re-encodes exactly
// as it was read.
type PostID struct {
	raw json.RawMessage
}

// NewPostID returns a PostID holding the JSON encoding of v.
func NewPostID(v any) PostID {
	data, err := json.Marshal(v)
	if err != nil {
		return PostID{}
	}
	return PostID{raw: data}
}

// IsZero reports whether the entry had no post_id key at all. An explicit
// null is not zero, so `omitzero` drops only absent ids.
func (p PostID) IsZero() bool {
	return len(p.raw) == 0
}

func (p PostID) isNull() bool {
	return bytes.Equal(p.raw, []byte("null"))
}

// String returns the id without JSON quoting, or "" if absent or null.
func (p PostID) String() string {
	if p.IsZero() || p.isNull() {
		return ""
	}
	var s string
	if json.Unmarshal(p.raw, &s) == nil {
		return s
	}
	return string(p.raw)
}

// MarshalJSON implements [json.Marshaler].
func (p PostID) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (p *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return fmt.Errorf("post_id must be a number or string, got %s", data)
	}
	p.raw = append(p.raw[:0], data...)
	return nil
}

// Source loads mod list entries.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// Parse decodes a mod list document. The document must be a JSON array of
// objects: a null document, a non-array or a null element is
// [ErrMalformedList]. Entries without a slug are dropped and logged through
// logger (which may be nil).
func Parse(data []byte, logger *log.Logger) ([]Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		if json.Valid(data) {
			return nil, ErrMalformedList
		}
		return nil, fmt.Errorf("decode mod list: invalid JSON")
	}
	var raw []*Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode mod list: %w", err)
	}
	for i, e := range raw {
		if e == nil {
			return nil, fmt.Errorf("%w: element %d is null", ErrMalformedList, i)
		}
	}
	return clean(raw, logger), nil
}

func clean(raw []*Entry, logger *log.Logger) []Entry {
	entries := make([]Entry, 0, len(raw))
	for i, ep := range raw {
		e := *ep
		e.Slug = strings.TrimSpace(e.Slug)
		if e.Slug == "" {
			if logger != nil {
				logger.Warn("skipping mod list entry without slug", "index", i, "post_id", e.PostID.String())
			}
			continue
		}
		entries = append(entries, e)
	}
	return entries
}
