package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/connect-labs/ccli/internal/extension"
	"github.com/google/go-cmp/cmp"
)

const nestedUI = `{
  "name": "Demo",
  "ui": {
    "settings": {"label": "Settings", "url": "/static/settings.html"},
    "modules": {
      "label": "Main",
      "url": "/static/index.html",
      "children": [
        {"label": "A", "url": "/static/a.html"},
        {"label": "B", "url": "/static/b.html", "children": [
          {"label": "C", "url": "/static/c.html"}
        ]}
      ]
    }
  }
}`

func webappContext(t *testing.T, files map[string]string) (string, Context) {
	t.Helper()
	dir := writeProject(t, files)
	vctx := loadContext(t, dir, map[extension.Kind]string{extension.KindWebApp: "demo.webapp:DemoWebApp"})
	res := CheckExtensionClass(context.Background(), testConfig(), dir, vctx)
	if res.Context != nil {
		vctx.Descriptor = res.Context.Descriptor
	}
	return dir, vctx
}

func TestCheckWebApp_Valid(t *testing.T) {
	dir, vctx := webappContext(t, projectFiles())
	res := CheckWebApp(context.Background(), testConfig(), dir, vctx)
	if len(res.Items) != 0 || res.Stop {
		t.Errorf("got %v stop=%v", messages(res.Items), res.Stop)
	}
}

func TestCheckWebApp_MissingFiles(t *testing.T) {
	files := with(projectFiles(), map[string]string{
		"demo/extension.json": nestedUI,
		"demo/static/a.html":  "<html></html>",
	})
	dir, vctx := webappContext(t, files)

	res := CheckWebApp(context.Background(), testConfig(), dir, vctx)

	if len(res.Items) != 1 || !res.Stop {
		t.Fatalf("got %v stop=%v", messages(res.Items), res.Stop)
	}
	msg := res.Items[0].Message
	if !strings.HasPrefix(msg, "The extension descriptor *extension.json* contains missing static files: [") {
		t.Errorf("message = %q", msg)
	}
	for _, missing := range []string{"'/static/index.html'", "'/static/b.html'", "'/static/c.html'"} {
		if !strings.Contains(msg, missing) {
			t.Errorf("message %q does not report %s", msg, missing)
		}
	}
	for _, present := range []string{"settings.html", "a.html"} {
		if strings.Contains(msg, "/static/"+present) {
			t.Errorf("message %q reports existing file %s", msg, present)
		}
	}
}

func TestCheckWebApp_Errors(t *testing.T) {
	unwrapped := strings.Replace(webappFixture, "@web_app(router)\n", "", 1)
	noRouter := strings.Replace(webappFixture, "    @router.get('/settings')\n", "", 1)

	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "not wrapped",
			files: with(projectFiles(), map[string]string{"demo/webapp.py": unwrapped}),
			want:  "ERROR: The Web app extension class must be wrapped in *@web_app(router)*.",
		},
		{
			name:  "no router function",
			files: with(projectFiles(), map[string]string{"demo/webapp.py": noRouter}),
			want: "ERROR: The Web app extension class must contain at least one router " +
				`implementation function wrapped in *@router.your_method("/your_path")*.`,
		},
		{
			name:  "no ui section",
			files: with(projectFiles(), map[string]string{"demo/extension.json": `{"name": "Demo"}`}),
			want:  "ERROR: " + uiHelp,
		},
		{
			name:  "ui item without url",
			files: with(projectFiles(), map[string]string{"demo/extension.json": `{"ui": {"x": {"label": "Broken"}}}`}),
			want: "ERROR: The extension descriptor *extension.json* contains incorrect ui item *Broken*, " +
				"url is not presented.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, vctx := webappContext(t, tt.files)

			res := CheckWebApp(context.Background(), testConfig(), dir, vctx)

			if diff := cmp.Diff([]string{tt.want}, messages(res.Items)); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			if !res.Stop {
				t.Error("expected the run to stop")
			}
		})
	}
}

func TestPyList(t *testing.T) {
	if got := pyList([]string{"/a.html", "/b.html"}); got != "['/a.html', '/b.html']" {
		t.Errorf("pyList() = %q", got)
	}
	if got := pyStr(nil); got != "None" {
		t.Errorf("pyStr(nil) = %q", got)
	}
}
