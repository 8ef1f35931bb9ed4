package pypi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/connect-labs/ccli/internal/branding"
	"go.uber.org/zap"
)

// RunnerPackage is the distribution whose version pins the runner image.
const RunnerPackage = "connect-extension-runner"

// DefaultBaseURL is the PyPI JSON API root.
const DefaultBaseURL = "https://pypi.org/pypi"

// ErrNoStableRelease is returned when a project has no stable release.
var ErrNoStableRelease = errors.New("no stable release found")

// Resolver looks up the latest runner release.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	cacheDir   string
	maxAge     time.Duration
	log        *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = c
	}
}

// WithCache enables the on-disk cache in dir.
func WithCache(dir string, maxAge time.Duration) Option {
	return func(r *Resolver) {
		r.cacheDir = dir
		r.maxAge = maxAge
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// New creates a Resolver against baseURL.
func New(baseURL string, opts ...Option) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	r := &Resolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		maxAge:     DefaultCacheMaxAge,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type projectInfo struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type releaseFile struct {
	Yanked bool `json:"yanked"`
}

// LatestRunnerVersion returns the latest stable runner version, from cache
// when fresh.
func (r *Resolver) LatestRunnerVersion(ctx context.Context) (string, error) {
	if r.cacheDir != "" {
		cache, err := LoadCache(r.cacheDir)
		if err != nil {
			r.log.Debug("ignoring unreadable runner version cache", zap.Error(err))
		} else if !IsCacheStale(cache, r.maxAge) && cache.Package == RunnerPackage {
			return cache.LatestVersion, nil
		}
	}

	version, err := r.LatestVersion(ctx, RunnerPackage)
	if err != nil {
		return "", err
	}

	if r.cacheDir != "" {
		cache := &VersionCache{Package: RunnerPackage, LatestVersion: version, CheckedAt: time.Now()}
		if err := SaveCache(r.cacheDir, cache); err != nil {
			r.log.Warn("cannot save runner version cache", zap.Error(err))
		}
	}
	return version, nil
}

// LatestVersion fetches the project metadata and selects its newest stable release.
func (r *Resolver) LatestVersion(ctx context.Context, project string) (string, error) {
	url := fmt.Sprintf("%s/%s/json", r.baseURL, project)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", branding.UserAgent())

	r.log.Debug("fetching package metadata", zap.String("url", url))
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s metadata: %w", project, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("package %s not found", project)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("package index returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	var info projectInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("parsing %s metadata: %w", project, err)
	}

	versions := make([]string, 0, len(info.Releases))
	for v, files := range info.Releases {
		if len(files) > 0 && allYanked(files) {
			continue
		}
		versions = append(versions, v)
	}
	latest, err := LatestStable(versions)
	if errors.Is(err, ErrNoStableRelease) && info.Info.Version != "" {
		return info.Info.Version, nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", project, err)
	}
	return latest, nil
}

func allYanked(files []releaseFile) bool {
	for _, f := range files {
		if !f.Yanked {
			return false
		}
	}
	return true
}
