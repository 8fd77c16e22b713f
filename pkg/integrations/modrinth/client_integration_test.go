//go:build integration

package modrinth

import (
	"context"
	"testing"
	"time"

	"github.com/blockversemc/modfeed/pkg/cache"
)

func TestFetchVersions_Integration(t *testing.T) {
	client := NewClient(cache.NewNullCache(), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"sodium", "sodium", false},
		{"fabric-api", "fabric-api", false},
		{"nonexistent", "this-project-should-not-exist-12345", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			versions, err := client.FetchVersions(ctx, tt.slug, true)
			if (err != nil) != tt.wantErr {
				t.Errorf("FetchVersions(%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(versions) == 0 {
				t.Errorf("FetchVersions(%q) returned no versions", tt.slug)
			}
		})
	}
}
