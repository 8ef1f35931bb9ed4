package validation

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"testing"

	"github.com/connect-labs/ccli/internal/connect"
	"github.com/connect-labs/ccli/internal/extension"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const pyprojectFixture = `[tool.poetry]
name = "demo"
version = "0.1.0"

[tool.poetry.dependencies]
python = ">=3.8,<4"
connect-eaas-core = ">=26.0,<27"

[tool.poetry.plugins."connect.eaas.ext"]
"extension" = "demo.events:DemoEvents"
"webapp" = "demo.webapp:DemoWebApp"
`

const eventsFixture = `from connect.eaas.core.decorators import event, schedulable, variables
from connect.eaas.core.extension import EventsExtension
from connect.eaas.core.responses import BackgroundResponse


@variables([
    {'name': 'API_URL', 'initial_value': 'https://example.com'},
    {'name': 'TOKEN', 'initial_value': 'changeme', 'secure': True},
])
class DemoEvents(EventsExtension):

    @event('asset_purchase_request_processing', statuses=['pending'])
    def handle_purchase(self, request):
        return BackgroundResponse.done()

    @schedulable('Nightly', 'Nightly job')
    def nightly(self, schedule):
        return None
`

const webappFixture = `from connect.eaas.core.decorators import router, web_app
from connect.eaas.core.extension import WebAppExtension


@web_app(router)
class DemoWebApp(WebAppExtension):

    @router.get('/settings')
    def get_settings(self):
        return {}
`

const descriptorFixture = `{
  "name": "Demo",
  "description": "Demo extension",
  "ui": {
    "settings": {"label": "Settings", "url": "/static/settings.html"}
  }
}`

const composeFixture = `version: '3'
services:
  demo_dev:
    container_name: demo_dev
    image: cloudblueconnect/connect-extension-runner:26.0
  demo_bash:
    image: cloudblueconnect/connect-extension-runner:26.0
`

// projectFiles returns a valid extension project; tests override entries.
func projectFiles() map[string]string {
	return map[string]string{
		"pyproject.toml":            pyprojectFixture,
		"docker-compose.yml":        composeFixture,
		"demo/__init__.py":          "",
		"demo/events.py":            eventsFixture,
		"demo/webapp.py":            webappFixture,
		"demo/extension.json":       descriptorFixture,
		"demo/static/settings.html": "<html></html>",
	}
}

func with(files map[string]string, overrides map[string]string) map[string]string {
	out := maps.Clone(files)
	maps.Copy(out, overrides)
	return out
}

func without(files map[string]string, names ...string) map[string]string {
	out := maps.Clone(files)
	for _, name := range names {
		delete(out, name)
	}
	return out
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

type fakeEvents struct {
	defs []connect.EventDefinition
	err  error
}

func (f fakeEvents) EventDefinitions(context.Context) ([]connect.EventDefinition, error) {
	return f.defs, f.err
}

type fakeRunner struct {
	version string
	err     error
}

func (f fakeRunner) LatestRunnerVersion(context.Context) (string, error) {
	return f.version, f.err
}

var errOffline = errors.New("offline")

func testConfig() Config {
	return Config{
		Loader: extension.NewSourceLoader(),
		Events: fakeEvents{defs: []connect.EventDefinition{
			{Type: "asset_purchase_request_processing", ObjectStatuses: []string{"pending", "approved", "failed"}},
			{Type: "tier_config_setup_request_processing"},
		}},
		Runner: fakeRunner{version: "26.0"},
	}
}

// loadContext loads classes the way the manifest check would.
func loadContext(t *testing.T, dir string, refs map[extension.Kind]string) Context {
	t.Helper()
	loader := extension.NewSourceLoader()
	reg := extension.Registry{}
	for kind, ref := range refs {
		cls, err := loader.Load(dir, ref)
		if err != nil {
			t.Fatalf("Load(%q) error: %v", ref, err)
		}
		reg[kind] = cls
	}
	return Context{Classes: reg}
}

func messages(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, string(item.Severity)+": "+item.Message)
	}
	return out
}

// cmpEmpty treats nil and empty slices as equal.
var cmpEmpty = cmpopts.EquateEmpty()
