// Package branding provides compile-time identity values for the CLI.
//
// The identity lives in branding.yaml next to this file and is baked into the
// binary with //go:embed. Missing keys fall back to the built-in defaults.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	UserAgent   string `yaml:"user_agent"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:     "ccli",
			DisplayName: "Connect CLI",
			Description: "Validate extension projects and synchronize translations",
			HomeDir:     ".ccli",
			EnvPrefix:   "CCLI",
			UserAgent:   "ccli",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "ccli").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".ccli").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "CCLI").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// UserAgent returns the User-Agent sent with every outgoing HTTP request.
func UserAgent() string { load(); return defaults.UserAgent }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("api_key") → "CCLI_API_KEY".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
