package chem

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Lattice is a crystal lattice stored as three row vectors in cartesian
// angstroms. The row-vector convention means cart = frac · M.
type Lattice struct {
	rows [3][3]float64
}

// NewLattice builds a lattice from three row vectors.
func NewLattice(rows [3][3]float64) Lattice {
	return Lattice{rows: rows}
}

// CubicLattice returns a cubic lattice with the given edge length.
func CubicLattice(edge float64) Lattice {
	return Lattice{rows: [3][3]float64{
		{edge, 0, 0},
		{0, edge, 0},
		{0, 0, edge},
	}}
}

// Rows returns the three lattice row vectors.
func (l Lattice) Rows() [3][3]float64 { return l.rows }

// Matrix returns the lattice as a dense 3x3 matrix.
func (l Lattice) Matrix() *mat.Dense {
	data := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		data = append(data, l.rows[i][:]...)
	}
	return mat.NewDense(3, 3, data)
}

// A returns the length of the first lattice vector.
func (l Lattice) A() float64 { return rowNorm(l.rows[0]) }

// B returns the length of the second lattice vector.
func (l Lattice) B() float64 { return rowNorm(l.rows[1]) }

// C returns the length of the third lattice vector.
func (l Lattice) C() float64 { return rowNorm(l.rows[2]) }

func rowNorm(r [3]float64) float64 {
	v := mat.NewVecDense(3, r[:])
	return mat.Norm(v, 2)
}

// ToCartesian converts fractional coordinates to cartesian.
func (l Lattice) ToCartesian(frac [3]float64) [3]float64 {
	var cart [3]float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			cart[j] += frac[i] * l.rows[i][j]
		}
	}
	return cart
}

// ToFractional converts cartesian coordinates to fractional by inverting the
// lattice matrix.
func (l Lattice) ToFractional(cart [3]float64) ([3]float64, error) {
	var inv mat.Dense
	if err := inv.Inverse(l.Matrix()); err != nil {
		return [3]float64{}, fmt.Errorf("singular lattice matrix: %w", err)
	}
	var frac [3]float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			frac[j] += cart[i] * inv.At(i, j)
		}
	}
	return frac, nil
}

// Scaled returns a copy of the lattice with each row multiplied by the
// corresponding factor.
func (l Lattice) Scaled(factors [3]float64) Lattice {
	var out Lattice
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.rows[i][j] = l.rows[i][j] * factors[i]
		}
	}
	return out
}
