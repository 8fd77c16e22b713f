package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "blockversemc/modfeed/"+Version+" ") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(ua, Repository) {
		t.Errorf("UserAgent() = %q, want contact %s", ua, Repository)
	}
}

func TestTemplate_ShortCommit(t *testing.T) {
	old := Commit
	t.Cleanup(func() { Commit = old })

	Commit = "0123456789abcdef0123"
	if got := Template(); !strings.Contains(got, "commit 0123456789ab,") {
		t.Errorf("Template() = %q", got)
	}
}
