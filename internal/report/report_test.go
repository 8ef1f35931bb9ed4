package report

import (
	"strings"
	"testing"

	"github.com/connect-labs/ccli/internal/validation"
	"github.com/fatih/color"
)

func TestWrite(t *testing.T) {
	color.NoColor = true

	r := validation.Report{
		Items: []validation.Item{
			{
				Severity:  validation.SeverityWarning,
				Message:   "The response class *ProcessingResponse* has been deprecated in favor of *BackgroundResponse*.",
				File:      "demo/events.py",
				StartLine: 1,
				LineNo:    3,
				Code:      "import a\nimport b\nfrom x import ProcessingResponse",
			},
			{
				Severity: validation.SeverityError,
				Message:  "No dependency on *connect-eaas-core* has been found.",
				File:     "pyproject.toml",
			},
		},
		StoppedBy: "manifest",
	}

	var b strings.Builder
	if err := Write(&b, r); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"WARNING The response class *ProcessingResponse*",
		"  --> demo/events.py:3\n",
		"    1 | import a\n",
		"  > 3 | from x import ProcessingResponse\n",
		"ERROR   No dependency on *connect-eaas-core* has been found.\n  --> pyproject.toml\n",
		"Found 1 error and 1 warning.\n",
		"Validation stopped at the manifest check.\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_Clean(t *testing.T) {
	color.NoColor = true

	var b strings.Builder
	if err := Write(&b, validation.Report{}); err != nil {
		t.Fatal(err)
	}
	if b.String() != "OK no issues found.\n" {
		t.Errorf("output = %q", b.String())
	}
}
