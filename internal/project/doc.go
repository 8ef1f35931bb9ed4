// Package project reads the pyproject.toml manifest of an extension project:
// its Poetry dependency table and the plugin entry points that register the
// extension classes with the platform.
package project
