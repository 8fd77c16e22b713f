package feed

import (
	"strings"

	"github.com/blockversemc/modfeed/pkg/integrations/modrinth"
	"github.com/blockversemc/modfeed/pkg/modlist"
)

// DefaultPlatform is the platform reported on every record.
const DefaultPlatform = "java"

// Record is one downloadable (version, file, loader) combination.
// The JSON keys are consumed by the website and must not change. PostID is
// left out when the list entry had none and kept as null when it said null.
type Record struct {
	PostID   modlist.PostID `json:"PostID,omitzero"`
	Platform string         `json:"Platform"`
	Version  string         `json:"Version"`
	Loader   string         `json:"Loader"`
	Link     string         `json:"Link"`
	Type     string         `json:"Type"`
}

// Flatten expands one mod's versions into records.
//
// For each version, each file with a non-empty URL, and each loader, one
// record is emitted. Version is the game versions joined with ", " and
// Loader is lowercased. An empty platform selects [DefaultPlatform].
// A version with no loaders or no usable files yields nothing.
func Flatten(entry modlist.Entry, versions []modrinth.Version, platform string) []Record {
	if platform == "" {
		platform = DefaultPlatform
	}
	kind := entry.Kind()

	var records []Record
	for _, v := range versions {
		gameVersions := strings.Join(v.GameVersions, ", ")
		for _, f := range v.Files {
			if f.URL == "" {
				continue
			}
			for _, loader := range v.Loaders {
				records = append(records, Record{
					PostID:   entry.PostID,
					Platform: platform,
					Version:  gameVersions,
					Loader:   strings.ToLower(loader),
					Link:     f.URL,
					Type:     kind,
				})
			}
		}
	}
	return records
}

// Loaders returns the distinct loaders in records, in first-seen order.
func Loaders(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.Loader] {
			seen[r.Loader] = true
			out = append(out, r.Loader)
		}
	}
	return out
}

// FilterLoader returns the records for loader. An empty loader matches all.
func FilterLoader(records []Record, loader string) []Record {
	if loader == "" {
		return records
	}
	loader = strings.ToLower(loader)
	var out []Record
	for _, r := range records {
		if r.Loader == loader {
			out = append(out, r)
		}
	}
	return out
}
