// Package inputset provides the DFT control-parameter bundles attached to
// job descriptors. Presets ship as embedded YAML and are merged with
// caller overrides. Every merge returns a fresh deep copy: two jobs never
// share an INCAR map, so a per-slab override (dipole correction, LDAU
// default) cannot leak into a later job.
package inputset

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// Preset names bundled with the repo.
const (
	PresetRelax    = "relax"
	PresetSlab     = "slab"
	PresetSlabBulk = "slab-bulk"
)

// Kpoints holds reciprocal-space sampling settings.
type Kpoints struct {
	ReciprocalDensity int `yaml:"reciprocal_density" json:"reciprocal_density"`
}

// Set is a named mapping of DFT control keys to values.
type Set struct {
	Name    string         `yaml:"name" json:"name"`
	INCAR   map[string]any `yaml:"incar" json:"incar"`
	Kpoints Kpoints        `yaml:"kpoints" json:"kpoints"`
}

// Load reads a bundled preset by name.
func Load(name string) (*Set, error) {
	data, err := presetFS.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown input-set preset %q (available: %v)", name, Presets())
	}
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing preset %q: %w", name, err)
	}
	if s.Name == "" {
		s.Name = name
	}
	return &s, nil
}

// Presets lists the bundled preset names.
func Presets() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		names = append(names, name[:len(name)-len(".yaml")])
	}
	sort.Strings(names)
	return names
}

// Copy returns a deep copy of the set.
func (s *Set) Copy() *Set {
	out := &Set{Name: s.Name, Kpoints: s.Kpoints, INCAR: make(map[string]any, len(s.INCAR))}
	for k, v := range s.INCAR {
		out.INCAR[k] = v
	}
	return out
}

// With returns a copy with the overrides merged on top of the INCAR map.
// The receiver and the override map are left untouched.
func (s *Set) With(overrides map[string]any) *Set {
	out := s.Copy()
	for k, v := range overrides {
		out.INCAR[k] = v
	}
	return out
}

// WithKpointsDensity returns a copy with the reciprocal k-point density
// replaced.
func (s *Set) WithKpointsDensity(density int) *Set {
	out := s.Copy()
	out.Kpoints.ReciprocalDensity = density
	return out
}

// LDAUEnabled reports whether the set turns on the Hubbard-U correction.
func (s *Set) LDAUEnabled() bool {
	v, ok := s.INCAR["LDAU"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}
