package transform

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/adsorbgridgo/internal/chem"
	"github.com/vk/adsorbgridgo/internal/surface"
)

// applySlab regenerates the slab by running the recorded parameters through
// the slab generator and selecting the slab with the recorded Miller index
// and shift.
func applySlab(ctx context.Context, env Env, s chem.Structure, params map[string]any) (chem.Structure, error) {
	if env.Generator == nil {
		return chem.Structure{}, fmt.Errorf("slab transformation requires a slab generator")
	}
	miller, err := intTriple(params["miller_index"])
	if err != nil {
		return chem.Structure{}, fmt.Errorf("miller_index: %w", err)
	}
	shift, err := toFloat(params["shift"])
	if err != nil {
		return chem.Structure{}, fmt.Errorf("shift: %w", err)
	}
	minSlab, err := toFloat(params["min_slab_size"])
	if err != nil {
		return chem.Structure{}, fmt.Errorf("min_slab_size: %w", err)
	}
	minVacuum, err := toFloat(params["min_vacuum_size"])
	if err != nil {
		return chem.Structure{}, fmt.Errorf("min_vacuum_size: %w", err)
	}
	center, _ := params["center_slab"].(bool)
	maxNormal, err := toInt(params["max_normal_search"])
	if err != nil {
		return chem.Structure{}, fmt.Errorf("max_normal_search: %w", err)
	}

	maxIndex := 1
	for _, m := range miller {
		if abs := int(math.Abs(float64(m))); abs > maxIndex {
			maxIndex = abs
		}
	}
	slabs, err := env.Generator.GenerateSlabs(ctx, s, surface.SlabParams{
		MaxIndex:        maxIndex,
		MinSlabSize:     minSlab,
		MinVacuumSize:   minVacuum,
		CenterSlab:      center,
		MaxNormalSearch: maxNormal,
	})
	if err != nil {
		return chem.Structure{}, err
	}
	for _, slab := range slabs {
		if slab.Miller == miller && math.Abs(slab.Shift-shift) < 1e-9 {
			return slab.Structure, nil
		}
	}
	return chem.Structure{}, fmt.Errorf("no generated slab matches miller %v shift %v", miller, shift)
}

// applySupercell replicates the structure by a diagonal scaling matrix.
func applySupercell(_ context.Context, _ Env, s chem.Structure, params map[string]any) (chem.Structure, error) {
	matrix, err := intMatrix(params["scaling_matrix"])
	if err != nil {
		return chem.Structure{}, fmt.Errorf("scaling_matrix: %w", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j && matrix[i][j] != 0 {
				return chem.Structure{}, fmt.Errorf("only diagonal scaling matrices are supported, got %v", matrix)
			}
		}
	}
	factors := [3]int{matrix[0][0], matrix[1][1], matrix[2][2]}
	for _, f := range factors {
		if f < 1 {
			return chem.Structure{}, fmt.Errorf("scaling factors must be positive, got %v", factors)
		}
	}

	lattice := s.Lattice.Scaled([3]float64{float64(factors[0]), float64(factors[1]), float64(factors[2])})
	var sites []chem.Site
	for ia := 0; ia < factors[0]; ia++ {
		for ib := 0; ib < factors[1]; ib++ {
			for ic := 0; ic < factors[2]; ic++ {
				for _, site := range s.Sites {
					c := site.Copy()
					c.Frac[0] = (site.Frac[0] + float64(ia)) / float64(factors[0])
					c.Frac[1] = (site.Frac[1] + float64(ib)) / float64(factors[1])
					c.Frac[2] = (site.Frac[2] + float64(ic)) / float64(factors[2])
					sites = append(sites, c)
				}
			}
		}
	}
	return chem.NewStructure(lattice, sites), nil
}

// applyInsertSites appends new sites and re-sorts the structure. The sort is
// the reason job descriptors record site data from sorted structures: the
// engine-side insertion produces this exact ordering.
func applyInsertSites(_ context.Context, _ Env, s chem.Structure, params map[string]any) (chem.Structure, error) {
	species, err := stringSlice(params["species"])
	if err != nil {
		return chem.Structure{}, fmt.Errorf("species: %w", err)
	}
	coords, err := floatTriples(params["coords"])
	if err != nil {
		return chem.Structure{}, fmt.Errorf("coords: %w", err)
	}
	if len(species) != len(coords) {
		return chem.Structure{}, fmt.Errorf("species/coords length mismatch: %d vs %d", len(species), len(coords))
	}
	out := s.Copy()
	for i := range species {
		out.Sites = append(out.Sites, chem.Site{Species: species[i], Frac: coords[i]})
	}
	return out.Sorted(), nil
}

// applyAddSiteProperty attaches recorded per-site property arrays.
func applyAddSiteProperty(_ context.Context, _ Env, s chem.Structure, params map[string]any) (chem.Structure, error) {
	raw, ok := params["site_properties"]
	if !ok {
		return chem.Structure{}, fmt.Errorf("site_properties missing")
	}
	props, err := propertyMap(raw)
	if err != nil {
		return chem.Structure{}, fmt.Errorf("site_properties: %w", err)
	}
	out := s
	for name, values := range props {
		var err error
		out, err = out.WithSiteProperty(name, values)
		if err != nil {
			return chem.Structure{}, err
		}
	}
	return out, nil
}
