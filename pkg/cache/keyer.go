package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyer builds cache keys for each kind of cached payload.
type Keyer interface {
	// HTTPKey returns the key for an upstream HTTP response.
	HTTPKey(namespace, key string) string

	// FeedKey returns the key for an assembled feed.
	FeedKey(opts FeedKeyOpts) string
}

// FeedKeyOpts are the inputs that change the content of an assembled feed.
type FeedKeyOpts struct {
	ListURL     string
	Platform    string
	DefaultType string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// FeedKey returns "feed:" followed by a digest of opts. Fields are joined
// with NUL so no two distinct option sets share a digest input.
func (DefaultKeyer) FeedKey(opts FeedKeyOpts) string {
	return "feed:" + digest(strings.Join([]string{opts.ListURL, opts.Platform, opts.DefaultType}, "\x00"))
}

// digest is the hex SHA-256 of s.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ScopedKeyer prefixes every key of an inner Keyer, so that staging and
// production can share one Redis or Mongo instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default keyer when nil) with prefix.
//
//	keyer := cache.NewScopedKeyer(nil, "staging:")
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k ScopedKeyer) FeedKey(opts FeedKeyOpts) string {
	return k.prefix + k.inner.FeedKey(opts)
}
