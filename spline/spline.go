/*
 * spline.go, part of gopme.
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

// Package spline builds cardinal B-spline weights and their
// derivatives at an arbitrary fractional offset, and the
// Cartesian<->fractional transformation matrices the grid-spreading
// and back-probing kernels need to handle multipoles beyond a point
// charge.
package spline

import "github.com/rmera/gopme/matrix"

// Real is the scalar precision this package runs at, the same
// constraint the matrix package exports.
type Real = matrix.Real

// Weights holds the spline-order-length arrays of B-spline values and
// successive derivatives at one atom's fractional offset along one
// axis. Values[0] is the spline itself; Values[k] for k>0 is its k-th
// derivative with respect to the fractional coordinate.
type Weights[T Real] struct {
	Order  int
	Values [][]T // len(Values) == maxDeriv+1, each inner slice has length Order
}

// Build computes the cardinal B-spline of the given order and its
// derivatives up to order maxDeriv at fractional offset w (w should be
// in [0,1), the fractional distance from the grid point the atom's
// support window starts at). It follows the standard recursive
// construction (Essmann et al.): M_2 is the hat function, and
//
//	M_k(x) = (x/(k-1))*M_{k-1}(x) + ((k-x)/(k-1))*M_{k-1}(x-1)
//
// with derivatives obtained from dM_p/dx = M_{p-1}(x) - M_{p-1}(x-1),
// applied recursively for higher derivatives.
func Build[T Real](order, maxDeriv int, w T) Weights[T] {
	if order < 2 {
		panic("gopme/spline: spline order must be >= 2")
	}
	if order-maxDeriv < 2 {
		panic("gopme/spline: spline order must exceed the highest derivative requested by at least 2")
	}
	values := make([][]T, maxDeriv+1)
	for k := maxDeriv; k >= 0; k-- {
		values[k] = derivativeOf(order, k, w)
	}
	return Weights[T]{Order: order, Values: values}
}

// valuesAtOrder returns the length-`order` array of M_order(w+i) for
// i = 0..order-1.
func valuesAtOrder[T Real](order int, w T) []T {
	m := make([]T, order)
	m[1] = w
	m[0] = 1 - w
	for k := 3; k <= order; k++ {
		div := T(1) / T(k-1)
		m[k-1] = div * w * m[k-2]
		for j := 1; j <= k-2; j++ {
			m[k-1-j] = div * ((w+T(j))*m[k-2-j] + (T(k-j)-w)*m[k-1-j])
		}
		m[0] = div * (1 - w) * m[0]
	}
	// The recursion above leaves M_order(w+order-1-i) at index i;
	// reverse so index i holds M_order(w+i).
	for i, j := 0, order-1; i < j; i, j = i+1, j-1 {
		m[i], m[j] = m[j], m[i]
	}
	return m
}

// derivativeOf returns the `deriv`-th derivative (w.r.t. w) of the
// order-`order` cardinal B-spline, as a length-`order` array indexed
// the same way valuesAtOrder is.
func derivativeOf[T Real](order, deriv int, w T) []T {
	if deriv == 0 {
		return valuesAtOrder(order, w)
	}
	base := valuesAtOrder(order-deriv, w)
	for k := 0; k < deriv; k++ {
		base = shiftDiff(base)
	}
	return base
}

// shiftDiff implements one application of d/dw[M_{n}(x)] = M_n(x) -
// M_n(x-1) lifted to whichever derivative order `lower` already
// represents, extending its support by one element. Indices outside
// lower's support are treated as zero, since the spline (or its
// derivative) vanishes there.
func shiftDiff[T Real](lower []T) []T {
	n := len(lower) + 1
	get := func(i int) T {
		if i < 0 || i >= len(lower) {
			var zero T
			return zero
		}
		return lower[i]
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = get(i) - get(i-1)
	}
	return out
}

// NCartesian returns the number of canonical Cartesian multipole
// components spanning orders 0..maxOrder inclusive: (maxOrder+1)*
// (maxOrder+2)*(maxOrder+3)/6. maxOrder=0 is a point charge (1
// component), maxOrder=1 adds a dipole (4 total), maxOrder=2 a
// quadrupole (10 total), and so on.
func NCartesian(maxOrder int) int {
	return (maxOrder + 1) * (maxOrder + 2) * (maxOrder + 3) / 6
}
