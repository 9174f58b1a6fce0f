// Package surface defines the geometry collaborators the workflow builders
// depend on: conventional-cell standardization, slab enumeration and
// adsorption-site finding. The heavy symmetry analysis lives outside this
// repo; builders only see these interfaces. A deterministic reference
// implementation is provided for simple cells, local replay and tests.
package surface

import (
	"context"
	"fmt"

	"github.com/vk/adsorbgridgo/internal/chem"
)

// Site property names shared between the generators and the transformation
// chain attached to job descriptors.
const (
	PropSurface    = "surface_properties"
	PropSelective  = "selective_dynamics"
	PropVelocities = "velocities"
	TagAdsorbate   = "adsorbate"
	TagSurfaceSite = "surface"
	TagSubsurface  = "subsurface"
)

// Slab is a vacuum-padded surface cut of a bulk structure.
type Slab struct {
	Structure chem.Structure
	Miller    [3]int
	Shift     float64
}

// MillerString renders the Miller index as a digit string, e.g. "111".
func (s Slab) MillerString() string {
	return fmt.Sprintf("%d%d%d", s.Miller[0], s.Miller[1], s.Miller[2])
}

// SlabParams controls slab enumeration.
type SlabParams struct {
	MaxIndex        int
	MinSlabSize     float64
	MinVacuumSize   float64
	CenterSlab      bool
	MaxNormalSearch int
}

// SiteFinderOptions controls adsorption-structure generation.
type SiteFinderOptions struct {
	// SelectiveDynamics tags adsorbate and surface sites as free to relax
	// and freezes everything below.
	SelectiveDynamics bool
	// Height is the placement height above the surface in angstroms.
	// Zero means the default of 2.0.
	Height float64
}

// Standardizer converts a structure to its conventional standard cell.
type Standardizer interface {
	ConventionalStandard(ctx context.Context, s chem.Structure) (chem.Structure, error)
}

// SlabGenerator enumerates symmetrically distinct slabs up to a maximum
// Miller index.
type SlabGenerator interface {
	GenerateSlabs(ctx context.Context, bulk chem.Structure, params SlabParams) ([]Slab, error)
}

// SiteFinder enumerates candidate adsorption structures for a molecule on a
// slab. Returned structures carry the surface_properties site tagging and,
// when requested, selective-dynamics flags.
type SiteFinder interface {
	AdsorptionStructures(ctx context.Context, slab Slab, mol chem.Molecule, opts SiteFinderOptions) ([]chem.Structure, error)
}

// Toolkit bundles the three geometry collaborators a workflow build needs.
type Toolkit interface {
	Standardizer
	SlabGenerator
	SiteFinder
}
