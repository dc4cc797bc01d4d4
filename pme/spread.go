/*
 * spread.go, part of gopme.
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

package pme

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/rmera/gopme/matrix"
	"github.com/rmera/gopme/spline"
)

// atomWeights caches, for one atom, the integer grid support window
// and the B-spline value and successive-derivative arrays along each
// axis, so the same weights computed for spreading can be reused by
// the probe pass without recomputing the spline recursion. deriv[axis]
// holds derivative orders 0..maxDeriv, one order beyond the highest
// Cartesian degree the atom's multipole parameter carries: spreading a
// degree-d component needs derivative d, and probing the force on that
// component needs derivative d+1 (the position gradient of the
// potential), so both passes share one maxDeriv+1-deep table.
type atomWeights[T matrix.Real] struct {
	base  [3]int
	deriv [3][][]T
}

// wrapFractional brings a fractional coordinate into [0,1).
func wrapFractional[T matrix.Real](f T) T {
	x := float64(f)
	x -= math.Floor(x)
	return T(x)
}

func (inst *Instance[T]) fractionalOf(cart [3]T) [3]T {
	var out [3]T
	for r := 0; r < 3; r++ {
		var sum T
		for c := 0; c < 3; c++ {
			sum += inst.fracInv.At(r, c) * cart[c]
		}
		out[r] = sum
	}
	return out
}

// atomSupport computes one atom's grid support window and spline
// weights up to derivative order maxDeriv, given its Cartesian
// coordinate.
func (inst *Instance[T]) atomSupport(cart [3]T, maxDeriv int) atomWeights[T] {
	frac := inst.fractionalOf(cart)
	dims := [3]int{inst.cfg.GridA, inst.cfg.GridB, inst.cfg.GridC}

	var aw atomWeights[T]
	order := inst.cfg.SplineOrder
	for axis := 0; axis < 3; axis++ {
		wrapped := wrapFractional(frac[axis])
		u := float64(wrapped) * float64(dims[axis])
		base := int(math.Floor(u))
		w := T(u - float64(base))
		weights := spline.Build(order, maxDeriv, w)
		aw.base[axis] = base
		aw.deriv[axis] = weights.Values
	}
	return aw
}

// maxDegree returns the highest total order among a set of canonical
// Cartesian multipole components.
func maxDegree(exps []spline.Exponent) int {
	m := 0
	for _, e := range exps {
		if d := e.Degree(); d > m {
			m = d
		}
	}
	return m
}

// gridIndexAxis returns the grid index along one axis that spline tap
// i (0 <= i < order) lands on, wrapping at the grid boundary. Tap i
// carries the weight M_order(w+i) from spline.Build, so it lands on
// base-i: i=0 is base and i increases going backward through the
// support window. Spreading and probing both call this function.
func gridIndexAxis(base, i, n int) int {
	idx := (base - i) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

// spreadMultipoles deposits each atom's fractional-coordinate multipole
// parameter vector onto the real-space grid and returns each atom's
// cached support weights for later reuse by probe. A parameter of
// canonical Cartesian degree (px,py,pz) (spec.md section 4.5's
// "appropriate derivative tensor") is spread as the (px,py,pz)-th
// mixed derivative of the spline product across the three axes --
// degree (0,0,0) reduces exactly to plain point-charge spreading, so
// this single kernel serves every angular momentum spec.md section 1
// asks the spreader to support.
//
// Per the concurrency model (spec.md section 5), atoms are partitioned
// across the worker pool and each worker accumulates into its own
// private grid -- atomic or shared-grid writes are not used on this hot
// path, since they would serialize on contended cache lines -- and the
// private grids are then reduced into inst.grid by a plane-partitioned
// parallel sum, visited in deterministic (plane-index ascending,
// worker-index ascending) order so repeated runs with the same thread
// count reproduce bit-identical results.
func (inst *Instance[T]) spreadMultipoles(coords [][3]T, paramsFrac [][]T, exps []spline.Exponent) []atomWeights[T] {
	order := inst.cfg.SplineOrder
	A, B, C := inst.cfg.GridA, inst.cfg.GridB, inst.cfg.GridC
	gridLen := A * B * C
	maxDeriv := maxDegree(exps) + 1

	supports := make([]atomWeights[T], len(coords))
	// Dynamic, atomic-counter partitioning of the support build. Every
	// atom's support costs the same here (same spline order and
	// derivative depth); the skipping of zero coefficients happens in
	// the deposit loop below, which is split statically across workers.
	inst.pool.ParallelForAtomic(len(coords), func(n int) {
		supports[n] = inst.atomSupport(coords[n], maxDeriv)
	})

	workers := inst.pool.NumWorkers()
	if workers < 1 {
		workers = 1
	}
	if workers > len(coords) && len(coords) > 0 {
		workers = len(coords)
	}
	if workers < 1 {
		workers = 1
	}

	private := make([][]float64, workers)
	chunk := (len(coords) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}

	inst.pool.ParallelFor(workers, func(wstart, wend int) {
		for w := wstart; w < wend; w++ {
			g := make([]float64, gridLen)
			lo := w * chunk
			hi := lo + chunk
			if hi > len(coords) {
				hi = len(coords)
			}
			for n := lo; n < hi; n++ {
				if n < 0 || n >= len(coords) {
					continue
				}
				aw := supports[n]
				coeffs := paramsFrac[n]
				for idx, e := range exps {
					coeff := float64(coeffs[idx])
					if coeff == 0 {
						continue
					}
					da := aw.deriv[0][e.X]
					db := aw.deriv[1][e.Y]
					dc := aw.deriv[2][e.Z]
					for ia := 0; ia < order; ia++ {
						idxA := gridIndexAxis(aw.base[0], ia, A)
						va := float64(da[ia])
						for ib := 0; ib < order; ib++ {
							idxB := gridIndexAxis(aw.base[1], ib, B)
							vb := float64(db[ib])
							row := (idxA*B + idxB) * C
							for ic := 0; ic < order; ic++ {
								idxC := gridIndexAxis(aw.base[2], ic, C)
								vc := float64(dc[ic])
								g[row+idxC] += coeff * va * vb * vc
							}
						}
					}
				}
			}
			private[w] = g
		}
	})

	// Reduction: plane-partitioned (by the slowest grid axis) parallel
	// sum, each plane visited in worker-index-ascending order so the
	// accumulation order -- and therefore rounding -- does not depend on
	// goroutine scheduling.
	planeSize := B * C
	inst.pool.ParallelFor(A, func(start, end int) {
		for ia := start; ia < end; ia++ {
			base := ia * planeSize
			dst := inst.grid[base : base+planeSize]
			for i := range dst {
				dst[i] = 0
			}
			for w := 0; w < workers; w++ {
				g := private[w]
				if g == nil {
					continue
				}
				floats.Add(dst, g[base:base+planeSize])
			}
		}
	})

	return supports
}

// probeMultipole evaluates the convolved potential grid back onto one
// atom's support window, once per canonical Cartesian multipole
// component in exps. potential[idx] is the field-based potential
// conjugate to that component; gradU[idx] is its gradient with respect
// to the fractional-grid coordinate u (i.e. d(potential[idx])/du_axis),
// one derivative order higher than the component's own degree, needed
// to differentiate the energy with respect to the atom's position.
func (inst *Instance[T]) probeMultipole(aw atomWeights[T], exps []spline.Exponent) (potential []float64, gradU [][3]float64) {
	order := inst.cfg.SplineOrder
	A, B, C := inst.cfg.GridA, inst.cfg.GridB, inst.cfg.GridC

	potential = make([]float64, len(exps))
	gradU = make([][3]float64, len(exps))
	for idx, e := range exps {
		da0, da1 := aw.deriv[0][e.X], aw.deriv[0][e.X+1]
		db0, db1 := aw.deriv[1][e.Y], aw.deriv[1][e.Y+1]
		dc0, dc1 := aw.deriv[2][e.Z], aw.deriv[2][e.Z+1]

		var pot, g0, g1, g2 float64
		for ia := 0; ia < order; ia++ {
			idxA := gridIndexAxis(aw.base[0], ia, A)
			va0, va1 := float64(da0[ia]), float64(da1[ia])
			for ib := 0; ib < order; ib++ {
				idxB := gridIndexAxis(aw.base[1], ib, B)
				vb0, vb1 := float64(db0[ib]), float64(db1[ib])
				row := (idxA*B + idxB) * C
				for ic := 0; ic < order; ic++ {
					idxC := gridIndexAxis(aw.base[2], ic, C)
					vc0, vc1 := float64(dc0[ic]), float64(dc1[ic])
					g := inst.grid[row+idxC]

					pot += va0 * vb0 * vc0 * g
					g0 += va1 * vb0 * vc0 * g
					g1 += va0 * vb1 * vc0 * g
					g2 += va0 * vb0 * vc1 * g
				}
			}
		}
		potential[idx] = pot
		gradU[idx] = [3]float64{g0, g1, g2}
	}
	return potential, gradU
}
