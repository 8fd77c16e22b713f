// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/blockversemc/modfeed/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/blockversemc/modfeed/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/blockversemc/modfeed/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/modfeed
package buildinfo

import "fmt"

// Repository is the project home sent as the User-Agent contact.
const Repository = "https://github.com/blockversemc/modfeed"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies this build to upstream APIs, e.g.
// "blockversemc/modfeed/v1.2.0 (https://github.com/blockversemc/modfeed)".
// Modrinth asks clients for a User-Agent naming the project and a contact.
func UserAgent() string {
	return fmt.Sprintf("blockversemc/modfeed/%s (%s)", Version, Repository)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, shortCommit(), Date)
}

func shortCommit() string {
	if len(Commit) > 12 {
		return Commit[:12]
	}
	return Commit
}
