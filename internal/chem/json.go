package chem

import (
	"encoding/json"
	"fmt"
	"os"
)

// structureJSON is the wire form of a Structure: a lattice matrix plus sites
// with species, fractional coordinates and properties. It matches the layout
// the execution engine expects for its own structure handling.
type structureJSON struct {
	Lattice latticeJSON `json:"lattice"`
	Sites   []siteJSON  `json:"sites"`
}

type latticeJSON struct {
	Matrix [3][3]float64 `json:"matrix"`
}

type siteJSON struct {
	Species string         `json:"species"`
	Abc     [3]float64     `json:"abc"`
	Props   map[string]any `json:"properties,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Structure) MarshalJSON() ([]byte, error) {
	out := structureJSON{
		Lattice: latticeJSON{Matrix: s.Lattice.Rows()},
		Sites:   make([]siteJSON, len(s.Sites)),
	}
	for i, site := range s.Sites {
		out.Sites[i] = siteJSON{Species: site.Species, Abc: site.Frac, Props: site.Props}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Structure) UnmarshalJSON(data []byte) error {
	var in structureJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	sites := make([]Site, len(in.Sites))
	for i, site := range in.Sites {
		sites[i] = Site{Species: site.Species, Frac: site.Abc, Props: site.Props}
	}
	*s = NewStructure(NewLattice(in.Lattice.Matrix), sites)
	return nil
}

// StructureFromFile reads a structure from a JSON file.
func StructureFromFile(path string) (Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Structure{}, fmt.Errorf("reading structure %s: %w", path, err)
	}
	var s Structure
	if err := json.Unmarshal(data, &s); err != nil {
		return Structure{}, fmt.Errorf("parsing structure %s: %w", path, err)
	}
	return s, nil
}
