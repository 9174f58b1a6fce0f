package chem

// Molecule is a finite (non-periodic) collection of atoms with cartesian
// coordinates in angstroms.
type Molecule struct {
	Species []string
	Coords  [][3]float64
}

// NewMolecule builds a molecule from parallel species and coordinate slices.
// Both are copied.
func NewMolecule(species []string, coords [][3]float64) Molecule {
	m := Molecule{
		Species: append([]string(nil), species...),
		Coords:  append([][3]float64(nil), coords...),
	}
	return m
}

// Len returns the number of atoms.
func (m Molecule) Len() int { return len(m.Species) }

// ReducedFormula returns the empirical formula of the molecule.
func (m Molecule) ReducedFormula() string {
	counts := map[string]int{}
	for _, sp := range m.Species {
		counts[sp]++
	}
	return reducedFormula(counts)
}

// BoxedStructure places the molecule in a cubic cell with the given edge
// length and translates it so the fractional centroid sits at the cell
// center. Isolated-molecule reference calculations use this to keep the
// molecule away from its periodic images.
func (m Molecule) BoxedStructure(edge float64) Structure {
	lattice := CubicLattice(edge)
	sites := make([]Site, m.Len())
	for i, sp := range m.Species {
		var frac [3]float64
		for j := 0; j < 3; j++ {
			frac[j] = m.Coords[i][j] / edge
		}
		sites[i] = Site{Species: sp, Frac: frac}
	}
	s := NewStructure(lattice, sites)
	centroid := s.FracCentroid()
	var delta [3]float64
	for j := 0; j < 3; j++ {
		delta[j] = 0.5 - centroid[j]
	}
	return s.Translated(delta)
}
