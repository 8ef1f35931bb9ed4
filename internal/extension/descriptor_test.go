package extension

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDescriptor(t *testing.T) {
	dir := t.TempDir()
	data := `{
  "name": "Demo",
  "variables": [{"name": "A"}, "junk"],
  "ui": {"settings": {"label": "Settings", "url": "/static/settings.html"}}
}`
	if err := os.WriteFile(filepath.Join(dir, DescriptorFile), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDescriptor(dir)
	if err != nil {
		t.Fatalf("LoadDescriptor() error: %v", err)
	}
	if d.File != filepath.Join(dir, DescriptorFile) {
		t.Errorf("File = %q", d.File)
	}
	if !d.Has("variables") || d.Has("capabilities") {
		t.Error("Has() reported wrong sections")
	}
	if ui, ok := d.UI(); !ok || len(ui) != 1 {
		t.Errorf("UI() = %v, %v", ui, ok)
	}
	if vars := d.Variables(); len(vars) != 1 || vars[0]["name"] != "A" {
		t.Errorf("Variables() = %v", vars)
	}

	issues, err := ValidateDescriptor(d)
	if err != nil {
		t.Fatalf("ValidateDescriptor() error: %v", err)
	}
	if len(issues) == 0 {
		t.Error("expected an issue for the non-object variable entry")
	}
}

func TestLoadDescriptor_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadDescriptor(dir); !errors.Is(err, ErrDescriptorNotFound) {
		t.Errorf("missing file: got %v, want ErrDescriptorNotFound", err)
	}

	if err := os.WriteFile(filepath.Join(dir, DescriptorFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDescriptor(dir); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("bad json: got %v, want ErrInvalidDescriptor", err)
	}
}

func TestValidateDescriptor(t *testing.T) {
	valid, err := ParseDescriptor("extension.json", []byte(`{
  "name": "Demo",
  "audience": ["vendor", "reseller"],
  "ui": {
    "modules": {"label": "Main", "url": "/static/index.html",
      "children": [{"label": "Child", "url": "/static/child.html"}]}
  }
}`))
	if err != nil {
		t.Fatal(err)
	}
	issues, err := ValidateDescriptor(valid)
	if err != nil {
		t.Fatalf("ValidateDescriptor() error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}

	invalid, err := ParseDescriptor("extension.json", []byte(`{"name": 1, "audience": ["martian"]}`))
	if err != nil {
		t.Fatal(err)
	}
	issues, err = ValidateDescriptor(invalid)
	if err != nil {
		t.Fatalf("ValidateDescriptor() error: %v", err)
	}
	paths := map[string]bool{}
	for _, issue := range issues {
		paths[issue.Path] = true
		if issue.Message == "" {
			t.Errorf("issue %s has no message", issue.Path)
		}
	}
	if !paths["/name"] || !paths["/audience/0"] {
		t.Errorf("issues = %v, want /name and /audience/0", issues)
	}
}
