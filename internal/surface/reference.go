package surface

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vk/adsorbgridgo/internal/chem"
	"github.com/vk/adsorbgridgo/internal/ctxlog"
)

const defaultPlacementHeight = 2.0

// Reference is a pure-Go geometry toolkit for simple (near-cubic) cells. It
// enumerates Miller-index families by digit multiset, cuts slabs by stacking
// the bulk cell along c and padding with vacuum, and places adsorbates on
// on-top positions of the outermost layer. It is deterministic: the same
// inputs always produce the same slabs, which is what the transformation
// replay relies on.
type Reference struct{}

var _ Toolkit = Reference{}

// ConventionalStandard returns the structure in canonical site order. The
// reference toolkit performs no symmetry reduction; a spglib-backed
// implementation can be swapped in behind the Standardizer interface.
func (Reference) ConventionalStandard(ctx context.Context, s chem.Structure) (chem.Structure, error) {
	ctxlog.FromContext(ctx).Debug("conventional standardization", "sites", s.Len())
	return s.Sorted(), nil
}

// GenerateSlabs enumerates one slab per distinct Miller family with indices
// up to params.MaxIndex.
func (Reference) GenerateSlabs(ctx context.Context, bulk chem.Structure, params SlabParams) ([]Slab, error) {
	if params.MaxIndex < 1 {
		return nil, fmt.Errorf("max index must be at least 1, got %d", params.MaxIndex)
	}
	logger := ctxlog.FromContext(ctx)

	millers := distinctMillers(params.MaxIndex)
	slabs := make([]Slab, 0, len(millers))
	for _, miller := range millers {
		slab, err := cutSlab(bulk, miller, params)
		if err != nil {
			return nil, err
		}
		slabs = append(slabs, slab)
	}
	logger.Debug("slab enumeration complete", "max_index", params.MaxIndex, "slabs", len(slabs))
	return slabs, nil
}

// distinctMillers returns one representative per Miller-index family,
// ordered by digit string. Families are identified by the multiset of index
// digits, which is the distinct set for cubic cells.
func distinctMillers(maxIndex int) [][3]int {
	seen := map[string][3]int{}
	for h := 0; h <= maxIndex; h++ {
		for k := 0; k <= maxIndex; k++ {
			for l := 0; l <= maxIndex; l++ {
				if h == 0 && k == 0 && l == 0 {
					continue
				}
				d := gcd3(h, k, l)
				red := [3]int{h / d, k / d, l / d}
				digits := []int{red[0], red[1], red[2]}
				sort.Sort(sort.Reverse(sort.IntSlice(digits)))
				canon := [3]int{digits[0], digits[1], digits[2]}
				key := fmt.Sprintf("%d%d%d", canon[0], canon[1], canon[2])
				if _, ok := seen[key]; !ok {
					seen[key] = canon
				}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][3]int, len(keys))
	for i, k := range keys {
		out[i] = seen[k]
	}
	return out
}

func gcd3(a, b, c int) int {
	g := func(x, y int) int {
		for y != 0 {
			x, y = y, x%y
		}
		return x
	}
	d := g(g(a, b), c)
	if d == 0 {
		return 1
	}
	return d
}

// cutSlab stacks the bulk cell along c until the slab is at least
// MinSlabSize thick, then extends c by MinVacuumSize of vacuum. Site
// fractional z is compressed into the slab region and optionally centered.
func cutSlab(bulk chem.Structure, miller [3]int, params SlabParams) (Slab, error) {
	cLen := bulk.Lattice.C()
	if cLen <= 0 {
		return Slab{}, fmt.Errorf("degenerate lattice: zero-length c vector")
	}
	reps := int(math.Ceil(params.MinSlabSize / cLen))
	if reps < 1 {
		reps = 1
	}
	slabHeight := float64(reps) * cLen
	totalHeight := slabHeight + params.MinVacuumSize
	scale := totalHeight / cLen

	lattice := bulk.Lattice.Scaled([3]float64{1, 1, scale})

	frac := slabHeight / totalHeight
	offset := 0.0
	if params.CenterSlab {
		offset = (1 - frac) / 2
	}
	sites := make([]chem.Site, 0, bulk.Len()*reps)
	for r := 0; r < reps; r++ {
		for _, site := range bulk.Sites {
			s := site.Copy()
			z := (site.Frac[2] + float64(r)) / float64(reps)
			s.Frac[2] = offset + z*frac
			sites = append(sites, s)
		}
	}
	return Slab{
		Structure: chem.NewStructure(lattice, sites),
		Miller:    miller,
		Shift:     0,
	}, nil
}

// AdsorptionStructures returns one candidate per distinct on-top position of
// the outermost layer.
func (Reference) AdsorptionStructures(ctx context.Context, slab Slab, mol chem.Molecule, opts SiteFinderOptions) ([]chem.Structure, error) {
	if slab.Structure.Len() == 0 {
		return nil, fmt.Errorf("empty slab structure")
	}
	if mol.Len() == 0 {
		return nil, fmt.Errorf("empty adsorbate molecule")
	}
	height := opts.Height
	if height == 0 {
		height = defaultPlacementHeight
	}

	tagged := tagSurfaceSites(slab.Structure)
	tops := topSiteIndices(tagged)

	candidates := make([]chem.Structure, 0, len(tops))
	for _, idx := range tops {
		cand, err := placeMolecule(tagged, idx, mol, height)
		if err != nil {
			return nil, err
		}
		if opts.SelectiveDynamics {
			cand = withSelectiveDynamics(cand)
		}
		candidates = append(candidates, cand)
	}
	ctxlog.FromContext(ctx).Debug("adsorption structures generated",
		"slab", slab.MillerString(), "molecule", mol.ReducedFormula(), "candidates", len(candidates))
	return candidates, nil
}

const surfaceLayerTol = 1e-2

// tagSurfaceSites marks the outermost layer as surface and everything else
// as subsurface.
func tagSurfaceSites(s chem.Structure) chem.Structure {
	maxZ := math.Inf(-1)
	for _, site := range s.Sites {
		if site.Frac[2] > maxZ {
			maxZ = site.Frac[2]
		}
	}
	values := make([]any, s.Len())
	for i, site := range s.Sites {
		if maxZ-site.Frac[2] < surfaceLayerTol {
			values[i] = TagSurfaceSite
		} else {
			values[i] = TagSubsurface
		}
	}
	tagged, err := s.WithSiteProperty(PropSurface, values)
	if err != nil {
		// Values are built from the same site list, lengths always match.
		panic(err)
	}
	return tagged
}

// topSiteIndices returns the indices of the surface-tagged sites, in order.
func topSiteIndices(s chem.Structure) []int {
	var idx []int
	for i, site := range s.Sites {
		if site.Property(PropSurface) == TagSurfaceSite {
			idx = append(idx, i)
		}
	}
	return idx
}

// placeMolecule appends the molecule above the given surface site, lowest
// atom at the placement height, and tags the new sites as adsorbate.
func placeMolecule(slab chem.Structure, siteIdx int, mol chem.Molecule, height float64) (chem.Structure, error) {
	anchor := slab.Lattice.ToCartesian(slab.Sites[siteIdx].Frac)

	minZ := math.Inf(1)
	var centroid [3]float64
	for _, c := range mol.Coords {
		if c[2] < minZ {
			minZ = c[2]
		}
		centroid[0] += c[0] / float64(mol.Len())
		centroid[1] += c[1] / float64(mol.Len())
	}

	out := slab.Copy()
	for i, sp := range mol.Species {
		cart := [3]float64{
			anchor[0] + mol.Coords[i][0] - centroid[0],
			anchor[1] + mol.Coords[i][1] - centroid[1],
			anchor[2] + height + mol.Coords[i][2] - minZ,
		}
		frac, err := out.Lattice.ToFractional(cart)
		if err != nil {
			return chem.Structure{}, err
		}
		out.Sites = append(out.Sites, chem.Site{
			Species: sp,
			Frac:    frac,
			Props:   map[string]any{PropSurface: TagAdsorbate},
		})
	}
	return out, nil
}

// withSelectiveDynamics frees adsorbate and surface sites and freezes the
// rest.
func withSelectiveDynamics(s chem.Structure) chem.Structure {
	values := make([]any, s.Len())
	for i, site := range s.Sites {
		switch site.Property(PropSurface) {
		case TagAdsorbate, TagSurfaceSite:
			values[i] = []bool{true, true, true}
		default:
			values[i] = []bool{false, false, false}
		}
	}
	out, err := s.WithSiteProperty(PropSelective, values)
	if err != nil {
		panic(err)
	}
	return out
}
