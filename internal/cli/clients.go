package cli

import (
	"context"
	"net/http"

	"github.com/connect-labs/ccli/internal/config"
	"github.com/connect-labs/ccli/internal/connect"
	"github.com/connect-labs/ccli/internal/pypi"
	"github.com/connect-labs/ccli/internal/validation"
	"go.uber.org/zap"
)

func newConnectClient(s config.Settings) *connect.Client {
	return connect.New(s.APIEndpoint, s.APIKey,
		connect.WithTimeout(s.Timeout),
		connect.WithLogger(logger),
	)
}

// newRunnerResolver returns the pinned runner version when one is configured
// and a cached PyPI lookup otherwise.
func newRunnerResolver(s config.Settings) validation.RunnerResolver {
	if s.RunnerVersion != "" {
		logger.Debug("using configured runner version", zap.String("version", s.RunnerVersion))
		return pinnedRunner(s.RunnerVersion)
	}
	return pypi.New(s.PyPIURL,
		pypi.WithHTTPClient(&http.Client{Timeout: s.Timeout}),
		pypi.WithCache(config.Dir(), pypi.DefaultCacheMaxAge),
		pypi.WithLogger(logger),
	)
}

type pinnedRunner string

func (p pinnedRunner) LatestRunnerVersion(context.Context) (string, error) {
	return string(p), nil
}
