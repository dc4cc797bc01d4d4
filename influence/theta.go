/*
 * theta.go, part of gopme.
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

// Package influence builds the Ewald reciprocal-space convolution
// kernel theta(k) -- the per-grid-point scalar that, multiplied into
// the structure factor, turns a spread-and-transformed charge grid
// into a reciprocal-space energy density. It supports the Coulomb
// kernel (r^-1) directly and arbitrary positive-integer r^-n kernels
// (e.g. the r^-6 dispersion term) through the incomplete gamma
// function, folding in the B-spline interpolation's own smoothing
// correction so the caller never has to divide it out downstream.
package influence

import (
	"math"
	"math/cmplx"

	"github.com/rmera/gopme/matrix"
	"github.com/rmera/gopme/spline"
)

// Real is the scalar precision this package runs at.
type Real = matrix.Real

// Table holds the precomputed reciprocal-space kernel over the
// half-complex grid a PME real-to-complex FFT produces: A*B*(C/2+1)
// values in row-major (a, b, c) order, c running only over the
// non-redundant half. Theta is exactly zero at the DC term (all three
// indices zero): the influence function excludes the net-charge term,
// which is handled separately (or not at all, for neutral systems) by
// the caller.
type Table[T Real] struct {
	A, B, C int
	Theta   []T
}

// at returns the flat index for half-complex indices (ia, ib, ic).
func (tb *Table[T]) at(ia, ib, ic int) int {
	return (ia*tb.B+ib)*(tb.C/2+1) + ic
}

// Value returns theta at half-complex grid indices (ia, ib, ic).
func (tb *Table[T]) Value(ia, ib, ic int) T {
	return tb.Theta[tb.at(ia, ib, ic)]
}

// signedIndex maps an FFT axis index (0..n-1) to its signed frequency
// (-n/2 .. n/2), the standard convention real-to-complex FFT output
// uses before the Nyquist wraparound.
func signedIndex(idx, n int) int {
	if idx > n/2 {
		return idx - n
	}
	return idx
}

// Build computes the full theta(k) table for an A x B x C FFT grid, a
// spline of the given order, an Ewald splitting parameter kappa, and
// exponent rPower in the pairwise kernel r^-rPower (rPower=1 is
// Coulomb). recipNo2Pi is the crystallographic reciprocal lattice
// (columns a*, b*, c*, each satisfying a*.a=1, i.e. the lattice
// package's Reciprocal field with the 2*pi convention divided out),
// and volume is the cell volume in the same length units.
func Build[T Real](rPower int, kappa T, order, A, B, C int, recipNo2Pi *matrix.Matrix[T], volume T) (*Table[T], error) {
	if rPower < 1 {
		panic("gopme/influence: rPower must be a positive integer")
	}
	halfC := C/2 + 1
	tb := &Table[T]{A: A, B: B, C: C, Theta: make([]T, A*B*halfC)}

	bA := bsplineModuli[T](order, A)
	bB := bsplineModuli[T](order, B)
	bC := bsplineModuli[T](order, C)

	v := float64(volume)
	kap := float64(kappa)
	n := rPower

	for ia := 0; ia < A; ia++ {
		ma := signedIndex(ia, A)
		for ib := 0; ib < B; ib++ {
			mb := signedIndex(ib, B)
			for ic := 0; ic < halfC; ic++ {
				mc := signedIndex(ic, C)
				if ma == 0 && mb == 0 && mc == 0 {
					continue // DC term excluded; net charge handled externally.
				}
				kx := float64(recipNo2Pi.At(0, 0))*float64(ma) + float64(recipNo2Pi.At(0, 1))*float64(mb) + float64(recipNo2Pi.At(0, 2))*float64(mc)
				ky := float64(recipNo2Pi.At(1, 0))*float64(ma) + float64(recipNo2Pi.At(1, 1))*float64(mb) + float64(recipNo2Pi.At(1, 2))*float64(mc)
				kz := float64(recipNo2Pi.At(2, 0))*float64(ma) + float64(recipNo2Pi.At(2, 1))*float64(mb) + float64(recipNo2Pi.At(2, 2))*float64(mc)
				k2 := kx*kx + ky*ky + kz*kz

				var th float64
				if n == 1 {
					th = math.Exp(-math.Pi*math.Pi*k2/(kap*kap)) / (math.Pi * v * k2)
				} else {
					x := math.Pi * math.Pi * k2 / (kap * kap)
					kmag := math.Sqrt(k2)
					th = math.Pow(math.Pi, float64(n)/2) / v * math.Pow(kmag, float64(n-3)) * upperIncompleteGamma(float64(3-n), x)
				}
				th *= float64(bA[ia]) * float64(bB[ib]) * float64(bC[ic%C])
				tb.Theta[tb.at(ia, ib, ic)] = T(th)
			}
		}
	}
	return tb, nil
}

// bsplineModuli returns, for an axis of length n and interpolation
// order p, the inverse squared modulus of the B-spline's discrete
// Fourier transform at each of the n grid frequencies -- the Euler
// exponential spline correction (Essmann et al. 1995 eq. 4.4) that
// compensates for approximating the exact structure factor with its
// B-spline-interpolated counterpart. Index 0 (m=0) is always exactly
// 1, since the spline weights used here sum to 1 (partition of unity).
func bsplineModuli[T Real](order, n int) []T {
	w := spline.Build(order, 0, T(0)).Values[0] // M_order(i), i=0..order-1
	out := make([]T, n)
	for m := 0; m < n; m++ {
		var sum complex128
		for i, wi := range w {
			theta := 2 * math.Pi * float64(m) * float64(i) / float64(n)
			sum += complex(float64(wi), 0) * cmplx.Exp(complex(0, theta))
		}
		modSq := real(sum)*real(sum) + imag(sum)*imag(sum)
		if modSq < 1e-10 {
			// The sum vanishes only for odd orders at m=n/2; modSq
			// is clamped to 1e-10 there rather than dividing by
			// (near) zero.
			modSq = 1e-10
		}
		out[m] = T(1 / modSq)
	}
	return out
}
