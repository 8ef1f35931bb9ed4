package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/connect-labs/ccli/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI.
const (
	KeyAPIEndpoint   = "api_endpoint"
	KeyAPIKey        = "api_key"
	KeyPyPIURL       = "pypi_url"
	KeyRunnerVersion = "runner_version"
	KeyTimeout       = "timeout"
)

// Keys lists every key accepted by config set.
var Keys = []string{KeyAPIEndpoint, KeyAPIKey, KeyPyPIURL, KeyRunnerVersion, KeyTimeout}

// Defaults applied before the config file and environment are read.
const (
	DefaultAPIEndpoint = "https://api.connect.cloudblue.com/public/v1"
	DefaultPyPIURL     = "https://pypi.org/pypi"
	DefaultTimeout     = 30 * time.Second
)

// Settings is the typed view over the loaded configuration.
type Settings struct {
	APIEndpoint   string
	APIKey        string
	PyPIURL       string
	RunnerVersion string
	Timeout       time.Duration
}

// Dir returns the path to the config directory (~/.ccli/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.ccli/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetDefault(KeyAPIEndpoint, DefaultAPIEndpoint)
	viper.SetDefault(KeyPyPIURL, DefaultPyPIURL)
	viper.SetDefault(KeyTimeout, DefaultTimeout)

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Current returns the settings resolved from defaults, file and environment.
func Current() Settings {
	timeout := viper.GetDuration(KeyTimeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Settings{
		APIEndpoint:   viper.GetString(KeyAPIEndpoint),
		APIKey:        viper.GetString(KeyAPIKey),
		PyPIURL:       viper.GetString(KeyPyPIURL),
		RunnerVersion: viper.GetString(KeyRunnerVersion),
		Timeout:       timeout,
	}
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
