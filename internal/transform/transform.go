// Package transform describes the named geometric transformations a job
// descriptor carries. The external execution engine applies them in order at
// run time; this package also registers local appliers so a recorded chain
// can be replayed against a bulk structure, which is how slab jobs are
// verified to reproduce the geometry they were generated from.
package transform

import "fmt"

// Transformation is a named, parameterized structure-to-structure operation.
type Transformation struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// Transformation names understood by the execution engine and the local
// applier registry.
const (
	NameSlab            = "SlabTransformation"
	NameSupercell       = "SupercellTransformation"
	NameInsertSites     = "InsertSitesTransformation"
	NameAddSiteProperty = "AddSitePropertyTransformation"
)

// SlabParams carries the slab-cut parameters in the order the engine
// expects them.
type SlabParams struct {
	Miller          [3]int
	MinSlabSize     float64
	MinVacuumSize   float64
	Shift           float64
	CenterSlab      bool
	MaxNormalSearch int
}

// Slab builds a slab-cut transformation.
func Slab(p SlabParams) Transformation {
	return Transformation{
		Name: NameSlab,
		Params: map[string]any{
			"miller_index":      []int{p.Miller[0], p.Miller[1], p.Miller[2]},
			"min_slab_size":     p.MinSlabSize,
			"min_vacuum_size":   p.MinVacuumSize,
			"shift":             p.Shift,
			"center_slab":       p.CenterSlab,
			"max_normal_search": p.MaxNormalSearch,
		},
	}
}

// SupercellFromScalingFactors builds a diagonal supercell transformation
// from per-axis replication counts.
func SupercellFromScalingFactors(a, b int) Transformation {
	return Transformation{
		Name: NameSupercell,
		Params: map[string]any{
			"scaling_matrix": [][]int{{a, 0, 0}, {0, b, 0}, {0, 0, 1}},
		},
	}
}

// InsertSites builds a transformation inserting the given species at the
// given fractional coordinates.
func InsertSites(species []string, coords [][3]float64) Transformation {
	cs := make([][]float64, len(coords))
	for i, c := range coords {
		cs[i] = []float64{c[0], c[1], c[2]}
	}
	return Transformation{
		Name: NameInsertSites,
		Params: map[string]any{
			"species": append([]string(nil), species...),
			"coords":  cs,
		},
	}
}

// AddSiteProperty builds a transformation restoring per-site properties.
func AddSiteProperty(props map[string][]any) Transformation {
	copied := make(map[string]any, len(props))
	for name, values := range props {
		copied[name] = append([]any(nil), values...)
	}
	return Transformation{
		Name:   NameAddSiteProperty,
		Params: map[string]any{"site_properties": copied},
	}
}

func (t Transformation) String() string {
	return fmt.Sprintf("%s(%d params)", t.Name, len(t.Params))
}
