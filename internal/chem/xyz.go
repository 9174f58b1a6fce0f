package chem

import (
	"fmt"

	gochem "github.com/rmera/gochem"
)

// MoleculeFromXYZ reads an adsorbate molecule from an XYZ file.
func MoleculeFromXYZ(path string) (Molecule, error) {
	mol, err := gochem.XYZFileRead(path)
	if err != nil {
		return Molecule{}, fmt.Errorf("reading molecule %s: %w", path, err)
	}
	if len(mol.Coords) == 0 {
		return Molecule{}, fmt.Errorf("reading molecule %s: no coordinate frame", path)
	}
	coords := mol.Coords[0]
	n := mol.Len()
	species := make([]string, n)
	carts := make([][3]float64, n)
	for i := 0; i < n; i++ {
		species[i] = mol.Atom(i).Symbol
		for j := 0; j < 3; j++ {
			carts[i][j] = coords.At(i, j)
		}
	}
	return NewMolecule(species, carts), nil
}
