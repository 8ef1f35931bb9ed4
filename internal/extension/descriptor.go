package extension

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DescriptorFile is the descriptor file name, looked up next to the class source.
const DescriptorFile = "extension.json"

var (
	ErrDescriptorNotFound = errors.New("extension descriptor not found")
	ErrInvalidDescriptor  = errors.New("extension descriptor is not valid JSON")
)

// Descriptor is the decoded extension.json of an extension.
type Descriptor struct {
	File string
	Data map[string]any

	raw []byte
}

// LoadDescriptor reads the descriptor from dir.
func LoadDescriptor(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, DescriptorFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrDescriptorNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseDescriptor(path, data)
}

// ParseDescriptor decodes descriptor JSON. The top-level value must be an
// object. Numbers are kept as json.Number so integers stay distinguishable.
func ParseDescriptor(path string, data []byte) (*Descriptor, error) {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrInvalidDescriptor, err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return &Descriptor{File: path, Data: m, raw: data}, nil
}

// Has reports whether the descriptor defines the top-level section.
func (d *Descriptor) Has(section string) bool {
	_, ok := d.Data[section]
	return ok
}

// UI returns the "ui" section. The boolean is false when the section is
// missing or is not an object.
func (d *Descriptor) UI() (map[string]any, bool) {
	ui, ok := d.Data["ui"].(map[string]any)
	return ui, ok
}

// Variables returns the entries of the "variables" section that are objects.
func (d *Descriptor) Variables() []Variable {
	items, _ := d.Data["variables"].([]any)
	var vars []Variable
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			vars = append(vars, Variable(m))
		}
	}
	return vars
}
