/*
 * lattice.go, part of gopme.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program. If not, see
 * <http://www.gnu.org/licenses/>.
 */

// Package lattice converts between the (|a|,|b|,|c|,alpha,beta,gamma)
// crystallographic description of a periodic cell and its 3x3
// Cartesian lattice matrix, and derives the reciprocal lattice, cell
// volume, and fractional/Cartesian coordinate transforms needed by the
// reciprocal-space PME pipeline. It leans on the matrix package for
// the 3x3 inverse and, for ShapeMatrix construction, the symmetric
// eigendecomposition -- the same division of labor gochem keeps
// between its geometry helpers (gocoords.go) and its gonum-backed
// Matrix type.
package lattice

import (
	"fmt"
	"math"

	"github.com/rmera/gopme/matrix"
)

// Type selects how Build turns cell lengths and angles into a 3x3
// Cartesian matrix.
type Type int

const (
	// XAligned places a parallel to +x and b in the xy half-plane
	// with positive y; c is whatever is needed to reproduce the
	// requested angles. This is the conventional crystallographic
	// cell orientation.
	XAligned Type = iota
	// ShapeMatrix produces a symmetric, positive-definite form: the
	// unique symmetric square root of the metric tensor. The
	// orientation this implies is generally different from
	// XAligned's, which is observable in the caller's frame (forces
	// and stress come out rotated relative to the XAligned case).
	ShapeMatrix
)

// Lattice holds a periodic cell's Cartesian lattice matrix (columns
// a, b, c) together with its derived reciprocal lattice and volume.
type Lattice[T matrix.Real] struct {
	Cartesian  *matrix.Matrix[T] // 3x3, columns a, b, c
	Reciprocal *matrix.Matrix[T] // 3x3, 2*pi*Cartesian^-T
	Volume     T
}

// Build constructs a Lattice from cell lengths a, b, c and angles
// alpha, beta, gamma (in radians: alpha between b & c, beta between a
// & c, gamma between a & b), using the orientation convention
// selected by kind.
func Build[T matrix.Real](a, b, c, alpha, beta, gamma T, kind Type) (*Lattice[T], error) {
	var cart *matrix.Matrix[T]
	switch kind {
	case XAligned:
		cart = buildXAligned(a, b, c, alpha, beta, gamma)
	case ShapeMatrix:
		var err error
		cart, err = buildShapeMatrix(a, b, c, alpha, beta, gamma)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("gopme/lattice: unknown lattice type %d", kind)
	}
	return FromCartesian(cart)
}

// FromCartesian wraps an already-built 3x3 Cartesian lattice matrix,
// deriving its reciprocal lattice and volume.
func FromCartesian[T matrix.Real](cart *matrix.Matrix[T]) (*Lattice[T], error) {
	r, c := cart.Dims()
	if r != 3 || c != 3 {
		panic(matrix.ErrShape)
	}
	inv, err := matrix.Inverse(cart)
	if err != nil {
		return nil, fmt.Errorf("gopme/lattice: cell has zero volume: %w", err)
	}
	recip := inv.Transpose()
	recip.Scale(T(2*math.Pi), recip)
	return &Lattice[T]{
		Cartesian:  cart,
		Reciprocal: recip,
		Volume:     volume3x3(cart),
	}, nil
}

func volume3x3[T matrix.Real](m *matrix.Matrix[T]) T {
	a00, a01, a02 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	a10, a11, a12 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	a20, a21, a22 := m.At(2, 0), m.At(2, 1), m.At(2, 2)
	det := a00*(a11*a22-a21*a12) - a01*(a10*a22-a12*a20) + a02*(a10*a21-a11*a20)
	if det < 0 {
		det = -det
	}
	return det
}

func buildXAligned[T matrix.Real](a, b, c, alpha, beta, gamma T) *matrix.Matrix[T] {
	cosA, cosB, cosG := math.Cos(float64(alpha)), math.Cos(float64(beta)), math.Cos(float64(gamma))
	sinG := math.Sin(float64(gamma))

	ax, ay, az := float64(a), 0.0, 0.0
	bx, by, bz := float64(b)*cosG, float64(b)*sinG, 0.0
	cx := float64(c) * cosB
	cy := float64(c) * (cosA - cosB*cosG) / sinG
	underSqrt := 1 - cosA*cosA - cosB*cosB - cosG*cosG + 2*cosA*cosB*cosG
	if underSqrt < 0 {
		underSqrt = 0
	}
	cz := float64(c) * math.Sqrt(underSqrt) / sinG

	// Columns are a, b, c; Matrix is row-major, so row i holds the
	// i-th Cartesian component of all three vectors.
	m := matrix.New[T](3, 3)
	m.Set(0, 0, T(ax))
	m.Set(1, 0, T(ay))
	m.Set(2, 0, T(az))
	m.Set(0, 1, T(bx))
	m.Set(1, 1, T(by))
	m.Set(2, 1, T(bz))
	m.Set(0, 2, T(cx))
	m.Set(1, 2, T(cy))
	m.Set(2, 2, T(cz))
	return m
}

// buildShapeMatrix forms the metric tensor G (G_ij = v_i . v_j for the
// requested lengths/angles) and returns its unique symmetric,
// positive-definite square root L (L*L^T = G), obtained via spectral
// decomposition: L = V * diag(sqrt(lambda)) * V^T. This is the open
// question flagged in DESIGN.md -- helPME's public
// contract does not pin down this construction uniquely, so it is
// implemented the mathematically natural way and regression-checked
// against the reference volume formula in the test suite instead of
// against an authoritative per-element reference.
func buildShapeMatrix[T matrix.Real](a, b, c, alpha, beta, gamma T) (*matrix.Matrix[T], error) {
	cosA, cosB, cosG := math.Cos(float64(alpha)), math.Cos(float64(beta)), math.Cos(float64(gamma))
	af, bf, cf := float64(a), float64(b), float64(c)

	g := matrix.New[T](3, 3)
	g.Set(0, 0, T(af*af))
	g.Set(1, 1, T(bf*bf))
	g.Set(2, 2, T(cf*cf))
	g.Set(0, 1, T(af*bf*cosG))
	g.Set(1, 0, T(af*bf*cosG))
	g.Set(0, 2, T(af*cf*cosB))
	g.Set(2, 0, T(af*cf*cosB))
	g.Set(1, 2, T(bf*cf*cosA))
	g.Set(2, 1, T(bf*cf*cosA))

	evalsReal, evalsImag, vectors, err := matrix.Diagonalize(g, matrix.Ascending)
	if err != nil {
		return nil, fmt.Errorf("gopme/lattice: failed to diagonalize metric tensor: %w", err)
	}
	n := len(evalsReal)
	sqrtDiag := make([]T, n)
	for i, lambda := range evalsReal {
		if math.Abs(float64(evalsImag[i])) > 1e-9 || lambda < 0 {
			return nil, fmt.Errorf("gopme/lattice: metric tensor is not positive semi-definite (eigenvalue %d = %g)", i, lambda)
		}
		sqrtDiag[i] = T(math.Sqrt(float64(lambda)))
	}
	scaled := vectors.Transpose()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			scaled.Set(r, c, scaled.At(r, c)*sqrtDiag[r])
		}
	}
	return matrix.Multiply(vectors, scaled)
}

// FractionalOf maps a Cartesian coordinate (a length-3 column) to its
// fractional equivalent: L^-1 * x.
func (l *Lattice[T]) FractionalOf(cartesian [3]T) [3]T {
	return mulVec(mustInverse(l.Cartesian), cartesian)
}

// CartesianOf maps a fractional coordinate to Cartesian space: L * f.
func (l *Lattice[T]) CartesianOf(fractional [3]T) [3]T {
	return mulVec(l.Cartesian, fractional)
}

func mulVec[T matrix.Real](m *matrix.Matrix[T], v [3]T) [3]T {
	var out [3]T
	for r := 0; r < 3; r++ {
		var sum T
		for c := 0; c < 3; c++ {
			sum += m.At(r, c) * v[c]
		}
		out[r] = sum
	}
	return out
}

func mustInverse[T matrix.Real](m *matrix.Matrix[T]) *matrix.Matrix[T] {
	inv, err := matrix.Inverse(m)
	if err != nil {
		panic(err)
	}
	return inv
}

// StressTensor expands a length-6 symmetric-upper-triangular virial
// (xx, xy, xz, yy, yz, zz) into the full symmetric 3x3 Cartesian
// stress tensor, for callers (e.g. a barostat) that need the tensor
// form rather than the packed accumulator PME updates in place.
func StressTensor[T matrix.Real](virial [6]T) *matrix.Matrix[T] {
	xx, xy, xz, yy, yz, zz := virial[0], virial[1], virial[2], virial[3], virial[4], virial[5]
	m := matrix.New[T](3, 3)
	m.Set(0, 0, xx)
	m.Set(0, 1, xy)
	m.Set(1, 0, xy)
	m.Set(0, 2, xz)
	m.Set(2, 0, xz)
	m.Set(1, 1, yy)
	m.Set(1, 2, yz)
	m.Set(2, 1, yz)
	m.Set(2, 2, zz)
	return m
}
