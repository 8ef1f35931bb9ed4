package validation

import (
	"context"
	"time"

	"github.com/connect-labs/ccli/internal/connect"
	"github.com/connect-labs/ccli/internal/extension"
	"go.uber.org/zap"
)

// EventSource provides the event types known to the platform.
type EventSource interface {
	EventDefinitions(ctx context.Context) ([]connect.EventDefinition, error)
}

// RunnerResolver provides the runner version the compose file must pin.
type RunnerResolver interface {
	LatestRunnerVersion(ctx context.Context) (string, error)
}

// Config carries the collaborators of a validation run.
type Config struct {
	Loader extension.Loader
	Events EventSource
	Runner RunnerResolver
	Logger *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Context accumulates what checks learn about the project. Each field is set
// by the first check that publishes it and is never replaced afterwards.
type Context struct {
	Classes    extension.Registry
	Descriptor *extension.Descriptor
}

func (c *Context) merge(update *Context, log *zap.Logger) {
	if update == nil {
		return
	}
	if update.Classes != nil {
		if c.Classes == nil {
			c.Classes = update.Classes
		} else {
			log.Debug("extension classes already established, ignoring update")
		}
	}
	if update.Descriptor != nil {
		if c.Descriptor == nil {
			c.Descriptor = update.Descriptor
		} else {
			log.Debug("descriptor already established, ignoring update")
		}
	}
}

// Result is what a single check returns.
type Result struct {
	Items   []Item
	Stop    bool
	Context *Context
}

// Check is a single validation step.
type Check struct {
	Name string
	Run  func(ctx context.Context, cfg Config, projectDir string, vctx Context) Result
}

// Validators is the default check list, in execution order.
var Validators = []Check{
	{Name: "manifest", Run: CheckManifest},
	{Name: "compose", Run: CheckCompose},
	{Name: "extension-class", Run: CheckExtensionClass},
	{Name: "events", Run: CheckEvents},
	{Name: "variables", Run: CheckVariables},
	{Name: "schedulables", Run: CheckSchedulables},
	{Name: "webapp", Run: CheckWebApp},
	{Name: "anvil", Run: CheckAnvil},
}

// Report is the outcome of a validation run.
type Report struct {
	Items   []Item
	Context Context
	// Executed lists the names of the checks that ran.
	Executed []string
	// StoppedBy names the check that halted the run, if any.
	StoppedBy string
}

// HasErrors reports whether any item is an error.
func (r Report) HasErrors() bool {
	for _, item := range r.Items {
		if item.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of items with severity s.
func (r Report) Count(s Severity) int {
	n := 0
	for _, item := range r.Items {
		if item.Severity == s {
			n++
		}
	}
	return n
}

// Run executes checks in order against projectDir and stops after the first
// check that asks to.
func Run(ctx context.Context, cfg Config, projectDir string, checks []Check) Report {
	log := cfg.logger()
	var report Report
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			log.Warn("validation cancelled", zap.Error(err))
			break
		}
		start := time.Now()
		res := check.Run(ctx, cfg, projectDir, report.Context)
		report.Executed = append(report.Executed, check.Name)
		report.Items = append(report.Items, res.Items...)
		report.Context.merge(res.Context, log)
		log.Debug("check finished",
			zap.String("check", check.Name),
			zap.Int("items", len(res.Items)),
			zap.Bool("stop", res.Stop),
			zap.Duration("took", time.Since(start)))
		if res.Stop {
			report.StoppedBy = check.Name
			break
		}
	}
	return report
}
