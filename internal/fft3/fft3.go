/*
 * fft3.go, part of gopme.
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

// Package fft3 implements the separable 3D real<->half-complex
// transform the reciprocal-space PME pipeline runs the charge grid
// through, built entirely out of gonum's 1D FFT collaborator
// (gonum.org/v1/gonum/dsp/fourier), the same package gochem's
// chemstat/timecorr.go uses for its own correlation transforms. A 3D
// transform is just the 1D transform applied along each axis in turn;
// this package owns only that composition, never reimplementing the
// transform itself.
package fft3

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/rmera/gopme/internal/workerpool"
)

// Plan holds the grid shape (A, B, C) each forward/inverse pass runs
// against. gonum's fourier.FFT/CmplxFFT carry no documented guarantee
// of safety for concurrent method calls on a shared receiver, so a
// Plan hands each worker goroutine its own trig-table instance rather
// than sharing one across the pool — NewFFT/NewCmplxFFT only
// precompute trig tables, so this is cheap relative to the transform
// itself.
type Plan struct {
	A, B, C int
	halfC   int

	pool *workerpool.Pool
}

// NewPlan builds a Plan for an A x B x C real grid. pool may be nil,
// in which case each pass runs on the calling goroutine.
func NewPlan(A, B, C int, pool *workerpool.Pool) *Plan {
	return &Plan{
		A: A, B: B, C: C, halfC: C/2 + 1,
		pool: pool,
	}
}

// HalfComplexLen is the length of the flattened (A, B, C/2+1) complex
// grid ForwardR2C produces and InverseC2R consumes.
func (p *Plan) HalfComplexLen() int { return p.A * p.B * p.halfC }

// ForwardR2C transforms a row-major (A, B, C) real grid into its
// row-major (A, B, C/2+1) half-complex companion: a real-to-complex
// pass along C, then two complex-to-complex passes along B and A.
func (p *Plan) ForwardR2C(real []float64, out []complex128) {
	// Pass 1: along C (fastest axis), real -> half-complex.
	p.pool.ParallelFor(p.A*p.B, func(start, end int) {
		fftC := fourier.NewFFT(p.C)
		for line := start; line < end; line++ {
			src := real[line*p.C : (line+1)*p.C]
			dst := out[line*p.halfC : (line+1)*p.halfC]
			fftC.Coefficients(dst, src)
		}
	})

	// Pass 2: along B, for every (a, c) pencil.
	p.pool.ParallelFor(p.A, func(start, end int) {
		fftB := fourier.NewCmplxFFT(p.B)
		buf := make([]complex128, p.B)
		for a := start; a < end; a++ {
			for c := 0; c < p.halfC; c++ {
				for b := 0; b < p.B; b++ {
					buf[b] = out[(a*p.B+b)*p.halfC+c]
				}
				fftB.Coefficients(buf, buf)
				for b := 0; b < p.B; b++ {
					out[(a*p.B+b)*p.halfC+c] = buf[b]
				}
			}
		}
	})

	// Pass 3: along A, for every (b, c) pencil.
	p.pool.ParallelFor(p.halfC, func(start, end int) {
		fftA := fourier.NewCmplxFFT(p.A)
		buf := make([]complex128, p.A)
		for c := start; c < end; c++ {
			for b := 0; b < p.B; b++ {
				for a := 0; a < p.A; a++ {
					buf[a] = out[(a*p.B+b)*p.halfC+c]
				}
				fftA.Coefficients(buf, buf)
				for a := 0; a < p.A; a++ {
					out[(a*p.B+b)*p.halfC+c] = buf[a]
				}
			}
		}
	})
}

// InverseC2R runs ForwardR2C's transform in reverse: two complex
// inverse passes along A and B, then a real inverse pass along C,
// writing the (unnormalized, per gonum's Sequence convention) real
// grid into real.
func (p *Plan) InverseC2R(in []complex128, real []float64) {
	scratch := make([]complex128, len(in))
	copy(scratch, in)

	p.pool.ParallelFor(p.halfC, func(start, end int) {
		fftA := fourier.NewCmplxFFT(p.A)
		buf := make([]complex128, p.A)
		for c := start; c < end; c++ {
			for b := 0; b < p.B; b++ {
				for a := 0; a < p.A; a++ {
					buf[a] = scratch[(a*p.B+b)*p.halfC+c]
				}
				fftA.Sequence(buf, buf)
				for a := 0; a < p.A; a++ {
					scratch[(a*p.B+b)*p.halfC+c] = buf[a]
				}
			}
		}
	})

	p.pool.ParallelFor(p.A, func(start, end int) {
		fftB := fourier.NewCmplxFFT(p.B)
		buf := make([]complex128, p.B)
		for a := start; a < end; a++ {
			for c := 0; c < p.halfC; c++ {
				for b := 0; b < p.B; b++ {
					buf[b] = scratch[(a*p.B+b)*p.halfC+c]
				}
				fftB.Sequence(buf, buf)
				for b := 0; b < p.B; b++ {
					scratch[(a*p.B+b)*p.halfC+c] = buf[b]
				}
			}
		}
	})

	p.pool.ParallelFor(p.A*p.B, func(start, end int) {
		fftC := fourier.NewFFT(p.C)
		for line := start; line < end; line++ {
			src := scratch[line*p.halfC : (line+1)*p.halfC]
			dst := real[line*p.C : (line+1)*p.C]
			fftC.Sequence(dst, src)
		}
	})
}
