package pypi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheFileName = "runner-version.json"
	// DefaultCacheMaxAge is the default maximum age for the version cache.
	DefaultCacheMaxAge = 24 * time.Hour
)

// VersionCache holds the last resolved release.
type VersionCache struct {
	Package       string    `json:"package"`
	LatestVersion string    `json:"latest_version"`
	CheckedAt     time.Time `json:"checked_at"`
}

// LoadCache reads the version cache from dir.
// Returns nil, nil if the cache file does not exist.
func LoadCache(dir string) (*VersionCache, error) {
	path := filepath.Join(dir, cacheFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading version cache: %w", err)
	}

	var cache VersionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing version cache: %w", err)
	}
	return &cache, nil
}

// SaveCache writes the version cache to dir.
func SaveCache(dir string, cache *VersionCache) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version cache: %w", err)
	}

	path := filepath.Join(dir, cacheFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	return nil
}

// IsCacheStale returns true if the cache is older than maxAge or nil.
func IsCacheStale(cache *VersionCache, maxAge time.Duration) bool {
	if cache == nil {
		return true
	}
	return time.Since(cache.CheckedAt) > maxAge
}
