package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the name of the project manifest at the project root.
const ManifestFile = "pyproject.toml"

// ExtensionEntryPoints is the plugin group under which extensions are declared.
const ExtensionEntryPoints = "connect.eaas.ext"

// ErrManifestNotFound is returned when the project has no pyproject.toml.
var ErrManifestNotFound = errors.New("project manifest not found")

// Manifest is the subset of pyproject.toml the validators look at.
type Manifest struct {
	Path         string
	Dependencies map[string]any
	Plugins      map[string]any
}

type document struct {
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
			Plugins      map[string]any `toml:"plugins"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ManifestPath returns the manifest location for a project directory.
func ManifestPath(projectDir string) string {
	return filepath.Join(projectDir, ManifestFile)
}

// LoadManifest reads and decodes the pyproject.toml of projectDir.
func LoadManifest(projectDir string) (*Manifest, error) {
	path := ManifestPath(projectDir)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrManifestNotFound)
		}
		return nil, fmt.Errorf("checking manifest %s: %w", path, err)
	}

	var doc document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	return &Manifest{
		Path:         path,
		Dependencies: doc.Tool.Poetry.Dependencies,
		Plugins:      doc.Tool.Poetry.Plugins,
	}, nil
}

// HasDependency reports whether name is declared in [tool.poetry.dependencies].
func (m *Manifest) HasDependency(name string) bool {
	_, ok := m.Dependencies[name]
	return ok
}

// EntryPoints returns the plugin table for group. The boolean is false when
// the group is absent or is not a table.
func (m *Manifest) EntryPoints(group string) (map[string]any, bool) {
	raw, ok := m.Plugins[group]
	if !ok {
		return nil, false
	}
	table, ok := raw.(map[string]any)
	return table, ok
}
