package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// slugRegex mirrors the slug rule Modrinth enforces on project creation.
var slugRegex = regexp.MustCompile(`^[\w!@$()` + "`" + `.+,"\-']{3,64}$`)

// ValidateSlug validates a Modrinth project slug (or project ID) before it is
// interpolated into an API path.
//
// The rules are conservative:
//   - No empty slugs
//   - No control characters
//   - No path separators or traversal sequences
//   - 3 to 64 characters from Modrinth's slug alphabet
func ValidateSlug(slug string) error {
	if slug == "" {
		return New(ErrCodeInvalidSlug, "slug cannot be empty")
	}

	for _, r := range slug {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSlug, "slug contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "?", "#"} {
		if strings.Contains(slug, pattern) {
			return New(ErrCodeInvalidSlug, "slug contains invalid characters: %q", pattern)
		}
	}

	if !slugRegex.MatchString(slug) {
		return New(ErrCodeInvalidSlug, "invalid slug: %q", slug)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "malformed URL")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}
