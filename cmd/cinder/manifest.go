package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/cinderlang/cinder/host"
)

// Manifest is a cinder.toml project file: the entry script plus host
// bindings exposed to it.
type Manifest struct {
	Entry string `toml:"entry"`
	Trace bool   `toml:"trace"`

	// Bindings are host constants exposed to the script as zero-argument
	// native functions: `greeting = "hi"` makes greeting() callable.
	Bindings map[string]any `toml:"bindings"`
}

// LoadManifest parses a cinder.toml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &m, nil
}

// Natives converts the manifest bindings into a native table, sorted by
// name so the table order is reproducible across runs.
func (m *Manifest) Natives() []host.NativeFunc {
	names := make([]string, 0, len(m.Bindings))
	for name := range m.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	natives := make([]host.NativeFunc, 0, len(names))
	for _, name := range names {
		value := m.Bindings[name]
		natives = append(natives, host.NativeFunc{
			Name:  name,
			Arity: 0,
			Impl: func(...any) any {
				return value
			},
		})
	}
	return natives
}
