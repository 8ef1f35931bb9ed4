package branding

import "testing"

func TestEnvVar(t *testing.T) {
	tests := []struct {
		suffix string
		want   string
	}{
		{"api_key", "CCLI_API_KEY"},
		{"API_ENDPOINT", "CCLI_API_ENDPOINT"},
		{"runner_version", "CCLI_RUNNER_VERSION"},
	}
	for _, tt := range tests {
		if got := EnvVar(tt.suffix); got != tt.want {
			t.Errorf("EnvVar(%q) = %q, want %q", tt.suffix, got, tt.want)
		}
	}
}

func TestDefaults(t *testing.T) {
	if CLIName() != "ccli" {
		t.Errorf("CLIName() = %q, want %q", CLIName(), "ccli")
	}
	if HomeDir() != ".ccli" {
		t.Errorf("HomeDir() = %q, want %q", HomeDir(), ".ccli")
	}
}
