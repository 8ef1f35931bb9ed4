package pypi

import (
	"github.com/Masterminds/semver/v3"
)

// LatestStable returns the highest version in versions that parses as semver
// and carries no pre-release part. The string is returned as given so it
// can be used verbatim as an image tag.
func LatestStable(versions []string) (string, error) {
	var (
		best    *semver.Version
		bestRaw string
	)
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil || v.Prerelease() != "" {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestRaw = v, raw
		}
	}
	if best == nil {
		return "", ErrNoStableRelease
	}
	return bestRaw, nil
}
