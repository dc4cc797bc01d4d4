/*
 * multipole.go, part of gopme.
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

package spline

import "github.com/rmera/gopme/matrix"

// Exponent is one canonical Cartesian multipole component, described
// as the powers of x, y, z in its monomial.
type Exponent struct{ X, Y, Z int }

// Degree returns the total order (X+Y+Z) of the component.
func (e Exponent) Degree() int { return e.X + e.Y + e.Z }

// Exponents lists every canonical Cartesian multipole component from
// order 0 (the point charge) through maxOrder, in the canonical
// ordering x,y,z,xx,xy,xz,yy,yz,zz,... -- each degree block generated
// by decreasing x power, then decreasing y power, with z filling the
// remainder.
func Exponents(maxOrder int) []Exponent {
	out := make([]Exponent, 0, NCartesian(maxOrder))
	for d := 0; d <= maxOrder; d++ {
		for px := d; px >= 0; px-- {
			for py := d - px; py >= 0; py-- {
				pz := d - px - py
				out = append(out, Exponent{px, py, pz})
			}
		}
	}
	return out
}

// polynomial represents a multivariate polynomial in the 3 fractional
// axes as a map from exponent to coefficient; used only as scratch
// space while deriving the Cartesian<->fractional transform below.
type polynomial[T Real] map[Exponent]T

func linearForm[T Real](coeffs [3]T) polynomial[T] {
	p := polynomial[T]{}
	if coeffs[0] != 0 {
		p[Exponent{1, 0, 0}] += coeffs[0]
	}
	if coeffs[1] != 0 {
		p[Exponent{0, 1, 0}] += coeffs[1]
	}
	if coeffs[2] != 0 {
		p[Exponent{0, 0, 1}] += coeffs[2]
	}
	return p
}

func polyMul[T Real](a, b polynomial[T]) polynomial[T] {
	out := polynomial[T]{}
	for ea, ca := range a {
		for eb, cb := range b {
			e := Exponent{ea.X + eb.X, ea.Y + eb.Y, ea.Z + eb.Z}
			out[e] += ca * cb
		}
	}
	return out
}

func polyPow[T Real](p polynomial[T], n int) polynomial[T] {
	result := polynomial[T]{Exponent{0, 0, 0}: T(1)}
	for i := 0; i < n; i++ {
		result = polyMul(result, p)
	}
	return result
}

// CartesianToFractional builds the nCart(maxOrder) x nCart(maxOrder)
// matrix that maps a Cartesian multipole parameter vector (in the
// Exponents(maxOrder) ordering) to its fractional-coordinate
// equivalent, given fracToCart, the 3x3 matrix mapping fractional
// coordinates to Cartesian ones (the lattice's Cartesian matrix). A
// Cartesian component of total order k transforms as the symmetric
// k-th power of the transform applied to its index tuple;
// different-degree blocks never mix, so the result is block-diagonal
// by degree.
//
// The transform is derived by substituting
// cartesian_axis = sum_i fracToCart[axis][i] * fractional_i
// into each Cartesian monomial and reading off, for each resulting
// fractional monomial, its coefficient -- the same computation a
// symbolic tensor-power expansion would produce, done here by
// multiplying out small polynomials instead.
func CartesianToFractional[T Real](fracToCart *matrix.Matrix[T], maxOrder int) *matrix.Matrix[T] {
	exps := Exponents(maxOrder)
	n := len(exps)
	out := matrix.New[T](n, n)

	var axisForms [3]polynomial[T]
	for axis := 0; axis < 3; axis++ {
		var coeffs [3]T
		for i := 0; i < 3; i++ {
			coeffs[i] = fracToCart.At(axis, i)
		}
		axisForms[axis] = linearForm(coeffs)
	}

	for col, e := range exps {
		p := polyPow(axisForms[0], e.X)
		p = polyMul(p, polyPow(axisForms[1], e.Y))
		p = polyMul(p, polyPow(axisForms[2], e.Z))
		for row, e2 := range exps {
			if e2.Degree() != e.Degree() {
				continue
			}
			out.Set(row, col, p[e2])
		}
	}
	return out
}
