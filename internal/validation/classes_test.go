package validation

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/connect-labs/ccli/internal/extension"
	"github.com/google/go-cmp/cmp"
)

var demoRefs = map[extension.Kind]string{
	extension.KindExtension: "demo.events:DemoEvents",
	extension.KindWebApp:    "demo.webapp:DemoWebApp",
}

func TestCheckExtensionClass_Valid(t *testing.T) {
	dir := writeProject(t, projectFiles())
	vctx := loadContext(t, dir, demoRefs)

	res := CheckExtensionClass(context.Background(), testConfig(), dir, vctx)

	if len(res.Items) != 0 || res.Stop {
		t.Fatalf("got %v stop=%v", messages(res.Items), res.Stop)
	}
	if res.Context == nil || res.Context.Descriptor == nil {
		t.Fatal("descriptor not published")
	}
	if res.Context.Descriptor.File != filepath.Join(dir, "demo", "extension.json") {
		t.Errorf("descriptor file = %q", res.Context.Descriptor.File)
	}
}

func TestCheckExtensionClass_WrongFamily(t *testing.T) {
	dir := writeProject(t, projectFiles())
	vctx := loadContext(t, dir, map[extension.Kind]string{extension.KindExtension: "demo.webapp:DemoWebApp"})

	res := CheckExtensionClass(context.Background(), testConfig(), dir, vctx)

	want := []string{"ERROR: The extension class *DemoWebApp* is not a subclass of " +
		"*connect.eaas.core.extension.[Events]Extension*."}
	if diff := cmp.Diff(want, messages(res.Items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if !res.Stop || res.Context != nil {
		t.Errorf("Stop = %v, Context = %v", res.Stop, res.Context)
	}
}

func TestCheckExtensionClass_DescriptorProblems(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		want     string
		wantStop bool
	}{
		{
			name:     "missing",
			files:    without(projectFiles(), "demo/extension.json"),
			want:     "ERROR: The extension descriptor *extension.json* cannot be loaded.",
			wantStop: true,
		},
		{
			name:     "malformed",
			files:    with(projectFiles(), map[string]string{"demo/extension.json": "{"}),
			want:     "ERROR: The extension descriptor *extension.json* is not valid",
			wantStop: true,
		},
		{
			name:  "unexpected structure",
			files: with(projectFiles(), map[string]string{"demo/extension.json": `{"name": 42, "ui": {}}`}),
			want:  "WARNING: The extension descriptor *extension.json* has an unexpected structure: /name: ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProject(t, tt.files)
			vctx := loadContext(t, dir, demoRefs)

			res := CheckExtensionClass(context.Background(), testConfig(), dir, vctx)

			got := messages(res.Items)
			if len(got) != 1 || !strings.HasPrefix(got[0], tt.want) {
				t.Errorf("items = %v, want one starting with %q", got, tt.want)
			}
			if res.Stop != tt.wantStop {
				t.Errorf("Stop = %v, want %v", res.Stop, tt.wantStop)
			}
		})
	}
}

func TestCheckExtensionClass_DeprecatedSections(t *testing.T) {
	descriptor := `{
  "name": "Demo",
  "variables": [{"name": "A"}],
  "capabilities": {"asset_purchase_request_processing": ["pending"]},
  "schedulables": [{"method": "nightly", "name": "Nightly"}],
  "ui": {"settings": {"label": "Settings", "url": "/static/settings.html"}}
}`
	dir := writeProject(t, with(projectFiles(), map[string]string{"demo/extension.json": descriptor}))
	vctx := loadContext(t, dir, demoRefs)

	res := CheckExtensionClass(context.Background(), testConfig(), dir, vctx)

	want := []string{
		"WARNING: Extension variables must be declared using the *connect.eaas.core.decorators.variables* decorator.",
		"WARNING: Extension capabilities must be declared using the *connect.eaas.core.decorators.capabilities* decorator.",
		"WARNING: Extension schedulables must be declared using the *connect.eaas.core.decorators.event* decorator.",
	}
	if diff := cmp.Diff(want, messages(res.Items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if res.Stop || res.Context == nil || res.Context.Descriptor == nil {
		t.Error("deprecated sections must not stop and the descriptor must be published")
	}
}
