//go:build integration

package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/connect-labs/ccli/internal/connect"
)

// testEnv holds the fake services and directories of one test.
type testEnv struct {
	ProjectDir string // extension project under validation
	CacheDir   string // runner version cache
	Platform   *httptest.Server
	PyPI       *httptest.Server
	PyPIHits   *atomic.Int32
	APIKeys    []string
}

// setupTestEnv starts a fake platform API and a fake package index, and
// writes a valid extension project.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		ProjectDir: t.TempDir(),
		CacheDir:   t.TempDir(),
		PyPIHits:   &atomic.Int32{},
	}

	env.Platform = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.APIKeys = append(env.APIKeys, r.Header.Get("Authorization"))
		if r.URL.Path != "/devops/event-definitions" {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, []connect.EventDefinition{
			{Type: "asset_purchase_request_processing", Group: "Fulfillment", ObjectStatuses: []string{"pending", "approved", "failed"}},
			{Type: "tier_config_setup_request_processing", Group: "Fulfillment", ObjectStatuses: []string{"pending"}},
		})
	}))
	t.Cleanup(env.Platform.Close)

	env.PyPI = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.PyPIHits.Add(1)
		if r.URL.Path != "/connect-extension-runner/json" {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, map[string]any{
			"info": map[string]string{"version": "27.0b1"},
			"releases": map[string][]map[string]bool{
				"25.9":   {{"yanked": false}},
				"26.0":   {{"yanked": false}},
				"26.1":   {{"yanked": true}},
				"27.0b1": {{"yanked": false}},
			},
		})
	}))
	t.Cleanup(env.PyPI.Close)

	for name, content := range projectFiles {
		writeFile(t, filepath.Join(env.ProjectDir, filepath.FromSlash(name)), content)
	}
	return env
}

var projectFiles = map[string]string{
	"pyproject.toml": `[tool.poetry]
name = "demo"
version = "0.1.0"

[tool.poetry.dependencies]
python = ">=3.8,<4"
connect-eaas-core = ">=26.0,<27"

[tool.poetry.plugins."connect.eaas.ext"]
"extension" = "demo.events:DemoEvents"
"webapp" = "demo.webapp:DemoWebApp"
`,
	"docker-compose.yml": `version: '3'
services:
  demo_dev:
    container_name: demo_dev
    image: cloudblueconnect/connect-extension-runner:26.0
`,
	"demo/__init__.py": "",
	"demo/events.py": `from connect.eaas.core.decorators import event, schedulable, variables
from connect.eaas.core.extension import EventsExtension
from connect.eaas.core.responses import BackgroundResponse


@variables([
    {'name': 'API_URL', 'initial_value': 'https://example.com'},
])
class DemoEvents(EventsExtension):

    @event('asset_purchase_request_processing', statuses=['pending'])
    def handle_purchase(self, request):
        return BackgroundResponse.done()

    @schedulable('Nightly', 'Nightly job')
    def nightly(self, schedule):
        return None
`,
	"demo/webapp.py": `from connect.eaas.core.decorators import router, web_app
from connect.eaas.core.extension import WebAppExtension


@web_app(router)
class DemoWebApp(WebAppExtension):

    @router.get('/settings')
    def get_settings(self):
        return {}
`,
	"demo/extension.json": `{
  "name": "Demo",
  "description": "Demo extension",
  "ui": {
    "settings": {"label": "Settings", "url": "/static/settings.html"}
  }
}`,
	"demo/static/settings.html": "<html></html>",
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertContains fails if out does not contain substr.
func assertContains(t *testing.T, out, substr string) {
	t.Helper()
	if !strings.Contains(out, substr) {
		t.Errorf("output does not contain %q.\nOutput:\n%s", substr, out)
	}
}
