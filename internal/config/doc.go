// Package config manages user-level settings stored at ~/.ccli/config.yaml.
// Values can be overridden with CCLI_* environment variables. It covers the
// platform API endpoint and key, the package index used to resolve the
// extension runner version, and the HTTP timeout.
package config
