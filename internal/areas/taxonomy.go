// Package areas loads the taxonomy of life areas a check-in can be about
package areas

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed areas.yaml
var defaultAreas []byte

// Area is one entry of the taxonomy
type Area struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Label is the text used in prompts and stored in the Checkins table
func (a Area) Label() string {
	if a.Description == "" {
		return a.Name
	}
	return a.Name + ": " + a.Description
}

type taxonomyFile struct {
	Areas []Area `yaml:"areas"`
}

// Registry holds the taxonomy in file order, indexed by name
type Registry struct {
	areas  []Area
	byName map[string]int
}

// Default returns the built-in taxonomy
func Default() (*Registry, error) {
	return Parse(defaultAreas)
}

// LoadFile reads a taxonomy YAML file; an empty path means the built-in one
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read areas file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a taxonomy with strict validation.
// Unknown keys are rejected; every area needs a unique, non-empty name.
func Parse(data []byte) (*Registry, error) {
	var file taxonomyFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse areas: %w", err)
	}
	if len(file.Areas) == 0 {
		return nil, fmt.Errorf("areas file defines no areas")
	}

	r := &Registry{byName: make(map[string]int, len(file.Areas))}
	for _, a := range file.Areas {
		if a.Name == "" {
			return nil, fmt.Errorf("area missing required field: name")
		}
		if _, exists := r.byName[a.Name]; exists {
			return nil, fmt.Errorf("duplicate area: %s", a.Name)
		}
		r.byName[a.Name] = len(r.areas)
		r.areas = append(r.areas, a)
	}
	return r, nil
}

// Get looks an area up by name
func (r *Registry) Get(name string) (Area, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Area{}, false
	}
	return r.areas[i], true
}

// Resolve maps a submitted area to its label. Unknown names are kept as
// free text; an empty name selects the first area.
func (r *Registry) Resolve(name string) string {
	if name == "" {
		return r.Default().Label()
	}
	if a, ok := r.Get(name); ok {
		return a.Label()
	}
	return name
}

// Default is the first area of the taxonomy
func (r *Registry) Default() Area {
	return r.areas[0]
}

// List returns the areas in file order
func (r *Registry) List() []Area {
	return append([]Area(nil), r.areas...)
}
