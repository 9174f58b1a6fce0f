package workflow

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/vk/adsorbgridgo/internal/chem"
	"github.com/vk/adsorbgridgo/internal/ctxlog"
	"github.com/vk/adsorbgridgo/internal/inputset"
	"github.com/vk/adsorbgridgo/internal/surface"
	"github.com/vk/adsorbgridgo/internal/transform"
)

// AdsorptionRequest configures an adsorption workflow build. Construct it
// with NewAdsorptionRequest to get the standard defaults, then adjust
// fields as needed.
type AdsorptionRequest struct {
	// Structure is the bulk crystal to cut slabs from.
	Structure chem.Structure
	// AdsorbateConfig maps Miller-index strings ("111") to the molecules
	// to adsorb on that surface.
	AdsorbateConfig map[string][]chem.Molecule
	// InputSet is the bulk-relaxation input set. Nil selects the
	// slab-bulk preset.
	InputSet *inputset.Set

	MinSlabSize     float64
	MinVacuumSize   float64
	CenterSlab      bool
	MaxNormalSearch int

	VaspCmd string
	DBFile  string

	// Conventional standardizes the bulk cell before slab generation, so
	// all Miller indices refer to the conventional setting.
	Conventional bool
	// AutoDipole injects a dipole correction (centered at fractional
	// z=0.5) into slab and adsorbate input sets.
	AutoDipole bool

	// SlabINCAR and AdsINCAR are caller INCAR overrides for slab and
	// adsorbate jobs. They are copied before any defaulting; the caller's
	// maps are never written to.
	SlabINCAR map[string]any
	AdsINCAR  map[string]any

	// Geometry provides standardization, slab generation and site
	// finding. Nil selects the built-in reference toolkit.
	Geometry surface.Toolkit
}

// NewAdsorptionRequest returns a request with the standard defaults: 7 A
// slabs, 12 A vacuum, centered slabs, conventional standardization and
// auto dipole correction on.
func NewAdsorptionRequest(s chem.Structure, config map[string][]chem.Molecule) *AdsorptionRequest {
	return &AdsorptionRequest{
		Structure:       s,
		AdsorbateConfig: config,
		MinSlabSize:     7.0,
		MinVacuumSize:   12.0,
		CenterSlab:      true,
		MaxNormalSearch: 1,
		VaspCmd:         "vasp",
		Conventional:    true,
		AutoDipole:      true,
		Geometry:        surface.Reference{},
	}
}

// BuildAdsorption constructs the adsorption workflow: one bulk relaxation
// root, one slab relaxation per requested surface and one adsorbate
// relaxation per candidate adsorption geometry, all parented to the bulk
// job. It fails before creating any job if a requested Miller index has no
// generated slab.
func BuildAdsorption(ctx context.Context, req *AdsorptionRequest) (*Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	geo := req.Geometry
	if geo == nil {
		geo = surface.Reference{}
	}

	structure := req.Structure
	if req.Conventional {
		var err error
		structure, err = geo.ConventionalStandard(ctx, structure)
		if err != nil {
			return nil, fmt.Errorf("conventional standardization: %w", err)
		}
	}

	base := req.InputSet
	if base == nil {
		var err error
		base, err = inputset.Load(inputset.PresetSlabBulk)
		if err != nil {
			return nil, err
		}
	}
	slabSet, err := inputset.Load(inputset.PresetSlab)
	if err != nil {
		return nil, err
	}

	// Fresh override maps per build; the caller's maps and the per-slab
	// copies below keep dipole and LDAU settings from leaking across jobs.
	slabOverrides := copyOverrides(req.SlabINCAR)
	adsOverrides := copyOverrides(req.AdsINCAR)
	if !base.LDAUEnabled() {
		slabOverrides["LDAU"] = false
		adsOverrides["LDAU"] = false
	}

	maxIndex, err := maxMillerDigit(req.AdsorbateConfig)
	if err != nil {
		return nil, err
	}

	slabs, err := geo.GenerateSlabs(ctx, structure, surface.SlabParams{
		MaxIndex:        maxIndex,
		MinSlabSize:     req.MinSlabSize,
		MinVacuumSize:   req.MinVacuumSize,
		CenterSlab:      req.CenterSlab,
		MaxNormalSearch: req.MaxNormalSearch,
	})
	if err != nil {
		return nil, fmt.Errorf("slab generation: %w", err)
	}

	miStrings := make([]string, len(slabs))
	for i, slab := range slabs {
		miStrings[i] = slab.MillerString()
	}
	// Fail-fast validation: no job is created until every requested
	// surface is known to exist.
	for _, key := range sortedKeys(req.AdsorbateConfig) {
		if !contains(miStrings, key) {
			return nil, fmt.Errorf("miller index %s not in generated slab list; unique slabs are %v", key, miStrings)
		}
	}

	formula := structure.ReducedFormula()
	wf := New(fmt.Sprintf("%s:%s", formula, "Adsorbate calculations"))

	bulkFw := NewOptimize(
		fmt.Sprintf("%s structure optimization", formula),
		structure, base, req.VaspCmd, req.DBFile,
	)
	if err := wf.Add(bulkFw); err != nil {
		return nil, err
	}
	logger.Info("bulk relaxation job created", "formula", formula, "max_index", maxIndex)

	for _, slab := range slabs {
		miString := slab.MillerString()
		molecules, requested := req.AdsorbateConfig[miString]
		if !requested {
			continue
		}

		slabINCAR := copyOverrides(slabOverrides)
		adsINCAR := copyOverrides(adsOverrides)
		if req.AutoDipole {
			// Slabs are centered, so the dipole center sits at
			// fractional z=0.5.
			dipole := map[string]any{
				"LDIPOL": true,
				"IDIPOL": 3,
				"DIPOL":  []float64{0, 0, 0.5},
			}
			for k, v := range dipole {
				slabINCAR[k] = v
				adsINCAR[k] = v
			}
		}

		slabParams := transform.SlabParams{
			Miller:          slab.Miller,
			MinSlabSize:     req.MinSlabSize,
			MinVacuumSize:   req.MinVacuumSize,
			Shift:           slab.Shift,
			CenterSlab:      req.CenterSlab,
			MaxNormalSearch: req.MaxNormalSearch,
		}
		slabFw := NewTransmuter(
			fmt.Sprintf("%s_%s slab optimization", slab.Structure.ReducedFormula(), miString),
			structure,
			[]transform.Transformation{transform.Slab(slabParams)},
			slabSet.With(slabINCAR),
			req.VaspCmd, req.DBFile,
			bulkFw.ID,
		)
		if err := wf.Add(slabFw); err != nil {
			return nil, err
		}

		for _, molecule := range molecules {
			candidates, err := geo.AdsorptionStructures(ctx, slab, molecule, surface.SiteFinderOptions{
				SelectiveDynamics: true,
			})
			if err != nil {
				return nil, fmt.Errorf("site finding on %s: %w", miString, err)
			}
			for _, candidate := range candidates {
				adsFw, err := adsorbateFirework(req, structure, slab, molecule, candidate, slabParams, slabSet, adsINCAR, bulkFw.ID)
				if err != nil {
					return nil, err
				}
				if err := wf.Add(adsFw); err != nil {
					return nil, err
				}
			}
			logger.Info("adsorbate jobs created",
				"miller", miString, "molecule", molecule.ReducedFormula(), "count", len(candidates))
		}
	}
	return wf, nil
}

// adsorbateFirework builds one adsorbate relaxation job from a candidate
// adsorption geometry.
func adsorbateFirework(
	req *AdsorptionRequest,
	bulk chem.Structure,
	slab surface.Slab,
	molecule chem.Molecule,
	candidate chem.Structure,
	slabParams transform.SlabParams,
	slabSet *inputset.Set,
	adsINCAR map[string]any,
	parentID string,
) (*Firework, error) {
	// The engine-side insertion re-sorts the structure, so all per-site
	// data recorded below must come from the same canonical ordering.
	candidate = candidate.Sorted()

	// Zero velocities on every site work around the engine's ambiguous
	// POSCAR/CONTCAR velocity round trip.
	velocities := make([]any, candidate.Len())
	for i := range velocities {
		velocities[i] = []float64{0, 0, 0}
	}
	candidate, err := candidate.WithSiteProperty(surface.PropVelocities, velocities)
	if err != nil {
		return nil, err
	}

	scaleA := int(math.Round(candidate.Lattice.A() / slab.Structure.Lattice.A()))
	scaleB := int(math.Round(candidate.Lattice.B() / slab.Structure.Lattice.B()))

	adsSites := candidate.SitesWhere(surface.PropSurface, surface.TagAdsorbate)
	species := make([]string, len(adsSites))
	coords := make([][3]float64, len(adsSites))
	for i, site := range adsSites {
		species[i] = site.Species
		coords[i] = site.Frac
	}

	chain := []transform.Transformation{
		transform.Slab(slabParams),
		transform.SupercellFromScalingFactors(scaleA, scaleB),
		transform.InsertSites(species, coords),
		transform.AddSiteProperty(candidate.SiteProperties()),
	}
	name := fmt.Sprintf("%s-%s_%s adsorbate optimization",
		molecule.ReducedFormula(), bulk.ReducedFormula(), slab.MillerString())
	return NewTransmuter(name, bulk, chain, slabSet.With(adsINCAR), req.VaspCmd, req.DBFile, parentID), nil
}

// maxMillerDigit extracts the largest single index digit across all
// requested Miller-index keys.
func maxMillerDigit(config map[string][]chem.Molecule) (int, error) {
	if len(config) == 0 {
		return 0, fmt.Errorf("adsorbate config is empty")
	}
	maxIndex := 0
	for key := range config {
		for _, r := range key {
			d, err := strconv.Atoi(string(r))
			if err != nil {
				return 0, fmt.Errorf("invalid miller index key %q: %w", key, err)
			}
			if d > maxIndex {
				maxIndex = d
			}
		}
	}
	if maxIndex == 0 {
		return 0, fmt.Errorf("miller index keys contain no nonzero digit")
	}
	return maxIndex, nil
}

func copyOverrides(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(config map[string][]chem.Molecule) []string {
	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
