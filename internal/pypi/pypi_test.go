package pypi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

const runnerJSON = `{
  "info": {"version": "26.0"},
  "releases": {
    "24.5": [{"yanked": false}],
    "25.10": [{"yanked": false}],
    "25.9": [{"yanked": false}],
    "26.0": [{"yanked": true}],
    "27.0b1": [{"yanked": false}]
  }
}`

func newIndex(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/pypi/connect-extension-runner/json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(runnerJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLatestStable(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
		wantErr  error
	}{
		{"numeric ordering", []string{"25.9", "25.10", "24.5"}, "25.10", nil},
		{"skips prereleases", []string{"1.0.0", "2.0.0-rc.1"}, "1.0.0", nil},
		{"skips garbage", []string{"latest", "1.2"}, "1.2", nil},
		{"nothing stable", []string{"1.0.0-alpha"}, "", ErrNoStableRelease},
		{"empty", nil, "", ErrNoStableRelease},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LatestStable(tt.versions)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LatestStable() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("LatestStable() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLatestRunnerVersion(t *testing.T) {
	var hits atomic.Int32
	srv := newIndex(t, &hits)

	r := New(srv.URL+"/pypi", WithHTTPClient(srv.Client()))
	got, err := r.LatestRunnerVersion(context.Background())
	if err != nil {
		t.Fatalf("LatestRunnerVersion() error: %v", err)
	}
	// 26.0 is fully yanked and 27.0b1 is a pre-release.
	if got != "25.10" {
		t.Errorf("LatestRunnerVersion() = %q, want %q", got, "25.10")
	}
}

func TestLatestRunnerVersion_Cache(t *testing.T) {
	var hits atomic.Int32
	srv := newIndex(t, &hits)
	dir := t.TempDir()

	r := New(srv.URL+"/pypi", WithCache(dir, time.Hour))
	for i := 0; i < 3; i++ {
		if _, err := r.LatestRunnerVersion(context.Background()); err != nil {
			t.Fatalf("LatestRunnerVersion() error: %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("index hit %d times, want 1", hits.Load())
	}

	cache, err := LoadCache(dir)
	if err != nil || cache == nil {
		t.Fatalf("LoadCache() = %v, %v", cache, err)
	}
	if cache.LatestVersion != "25.10" || cache.Package != RunnerPackage {
		t.Errorf("cache = %+v", cache)
	}
}

func TestLatestRunnerVersion_StaleCache(t *testing.T) {
	var hits atomic.Int32
	srv := newIndex(t, &hits)
	dir := t.TempDir()

	stale := &VersionCache{Package: RunnerPackage, LatestVersion: "1.0", CheckedAt: time.Now().Add(-48 * time.Hour)}
	if err := SaveCache(dir, stale); err != nil {
		t.Fatal(err)
	}

	r := New(srv.URL+"/pypi", WithCache(dir, DefaultCacheMaxAge))
	got, err := r.LatestRunnerVersion(context.Background())
	if err != nil {
		t.Fatalf("LatestRunnerVersion() error: %v", err)
	}
	if got != "25.10" || hits.Load() != 1 {
		t.Errorf("got %q after %d hits, want fresh lookup", got, hits.Load())
	}
}

func TestLatestVersion_NotFound(t *testing.T) {
	var hits atomic.Int32
	srv := newIndex(t, &hits)

	_, err := New(srv.URL+"/pypi").LatestVersion(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for unknown package")
	}
}

func TestLoadCache_Corrupted(t *testing.T) {
	tmp := t.TempDir()
	os.WriteFile(filepath.Join(tmp, cacheFileName), []byte("not valid json{{{"), 0644)

	if _, err := LoadCache(tmp); err == nil {
		t.Error("expected error for corrupted cache")
	}
}

func TestIsCacheStale(t *testing.T) {
	tests := []struct {
		name     string
		cache    *VersionCache
		expected bool
	}{
		{"nil cache is stale", nil, true},
		{"fresh cache", &VersionCache{CheckedAt: time.Now()}, false},
		{"stale cache", &VersionCache{CheckedAt: time.Now().Add(-25 * time.Hour)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCacheStale(tt.cache, DefaultCacheMaxAge); got != tt.expected {
				t.Errorf("IsCacheStale = %v, want %v", got, tt.expected)
			}
		})
	}
}
