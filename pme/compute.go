/*
 * compute.go, part of gopme.
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
	"github.com/rmera/gopme"
	"github.com/rmera/gopme/matrix"
	"github.com/rmera/gopme/spline"
)

// chargesToParams wraps a plain point-charge slice as a length-1
// per-atom Cartesian multipole parameter vector (angular momentum 0),
// the shape ComputeXRecMultipole expects.
func chargesToParams[T matrix.Real](charges []T) [][]T {
	out := make([][]T, len(charges))
	for i, q := range charges {
		out[i] = []T{q}
	}
	return out
}

// ComputeERec returns the reciprocal-space energy for the given point
// charges at the given Cartesian coordinates, without computing forces.
// It is the angular-momentum-0 case of ComputeERecMultipole.
func (inst *Instance[T]) ComputeERec(coords [][3]T, charges []T) (T, error) {
	if len(coords) != len(charges) {
		return 0, gopme.NewError("pme.ComputeERec: coords and charges must have the same length")
	}
	return inst.ComputeERecMultipole(coords, chargesToParams(charges), 0)
}

// ComputeERecMultipole returns the reciprocal-space energy for a set of
// point multipoles (spec.md section 1: "arbitrary angular momentum of
// the distributed multipole parameter") at the given Cartesian
// coordinates, without computing forces. paramsCart[n] is atom n's
// Cartesian multipole parameter vector in the canonical
// spline.Exponents(angMom) ordering (length spline.NCartesian(angMom)).
// It spreads the multipoles onto the grid, forward-transforms once, and
// sums the convolution in reciprocal space directly (Parseval's
// theorem), never inverse-transforming back to real space.
func (inst *Instance[T]) ComputeERecMultipole(coords [][3]T, paramsCart [][]T, angMom int) (T, error) {
	if err := inst.requireLattice("pme.ComputeERecMultipole"); err != nil {
		return 0, err
	}
	if len(coords) != len(paramsCart) {
		return 0, gopme.NewError("pme.ComputeERecMultipole: coords and parameters must have the same length")
	}
	if err := inst.requireSplineOrderFor(angMom); err != nil {
		return 0, gopme.Decorate(err, "pme.ComputeERecMultipole")
	}

	exps := spline.Exponents(angMom)
	fracParams := inst.toFractionalParams(paramsCart, angMom)

	inst.spreadMultipoles(coords, fracParams, exps)
	inst.plan.ForwardR2C(inst.grid, inst.spectrum)

	e := inst.parsevalEnergy() * float64(inst.cfg.ScaleFactor)
	return T(e), nil
}

// parsevalEnergy sums 0.5*theta(k)*|F(k)|^2 over the full 3D reciprocal
// grid, exploiting the Hermitian symmetry of a real-input FFT: every
// stored half-complex term except k_c=0 and the Nyquist plane (when C
// is even) has a mirror term with equal magnitude, so it is counted
// twice.
func (inst *Instance[T]) parsevalEnergy() float64 {
	A, B, C := inst.cfg.GridA, inst.cfg.GridB, inst.cfg.GridC
	halfC := C/2 + 1
	var e float64
	for ia := 0; ia < A; ia++ {
		for ib := 0; ib < B; ib++ {
			for ic := 0; ic < halfC; ic++ {
				idx := (ia*B+ib)*halfC + ic
				f := inst.spectrum[idx]
				mag2 := real(f)*real(f) + imag(f)*imag(f)
				weight := 2.0
				if ic == 0 || (C%2 == 0 && ic == C/2) {
					weight = 1.0
				}
				e += 0.5 * weight * float64(inst.theta.Theta[idx]) * mag2
			}
		}
	}
	return e
}

// ComputeEFRec returns the reciprocal-space energy and per-atom
// Cartesian forces for point charges. It is the angular-momentum-0
// case of ComputeEFRecMultipole.
func (inst *Instance[T]) ComputeEFRec(coords [][3]T, charges []T) (T, [][3]T, error) {
	if len(coords) != len(charges) {
		return 0, nil, gopme.NewError("pme.ComputeEFRec: coords and charges must have the same length")
	}
	return inst.ComputeEFRecMultipole(coords, chargesToParams(charges), 0)
}

// ComputeEFRecMultipole returns the reciprocal-space energy and
// per-atom Cartesian forces for a set of point multipoles. It runs the
// full spread -> forward transform -> convolve -> inverse transform ->
// probe pipeline, so its energy is computed the same way the force is
// derived from (a direct real-space dot product between the spread
// weights and the convolved potential grid), rather than via the
// Parseval sum ComputeERecMultipole uses; the two are mathematically
// equal and should agree to numerical precision, a useful cross-check
// of the whole pipeline.
func (inst *Instance[T]) ComputeEFRecMultipole(coords [][3]T, paramsCart [][]T, angMom int) (T, [][3]T, error) {
	if err := inst.requireLattice("pme.ComputeEFRecMultipole"); err != nil {
		return 0, nil, err
	}
	if len(coords) != len(paramsCart) {
		return 0, nil, gopme.NewError("pme.ComputeEFRecMultipole: coords and parameters must have the same length")
	}
	if err := inst.requireSplineOrderFor(angMom); err != nil {
		return 0, nil, gopme.Decorate(err, "pme.ComputeEFRecMultipole")
	}

	exps := spline.Exponents(angMom)
	fracParams := inst.toFractionalParams(paramsCart, angMom)

	supports := inst.spreadMultipoles(coords, fracParams, exps)
	inst.plan.ForwardR2C(inst.grid, inst.spectrum)

	for i := range inst.spectrum {
		inst.spectrum[i] *= complex(float64(inst.theta.Theta[i]), 0)
	}
	inst.plan.InverseC2R(inst.spectrum, inst.grid)

	dims := [3]T{T(inst.cfg.GridA), T(inst.cfg.GridB), T(inst.cfg.GridC)}
	forces := make([][3]T, len(coords))
	var energy float64
	for n, aw := range supports {
		potential, gradU := inst.probeMultipole(aw, exps)

		var atomEnergy float64
		var dudf [3]float64
		for idx := range exps {
			coeff := float64(fracParams[n][idx])
			// The probed potential already reflects every multipole's
			// contribution (via the grid convolution), so summing
			// coeff*potential over atoms double counts each pair the
			// way a direct interaction sum would; halving it matches
			// the Parseval energy above. Force has no such factor:
			// differentiating the pairwise sum with respect to one
			// atom's position brings the two symmetric appearances of
			// that atom back together exactly once.
			atomEnergy += coeff * potential[idx]
			for axis := 0; axis < 3; axis++ {
				dudf[axis] += coeff * gradU[idx][axis]
			}
		}
		energy += 0.5 * atomEnergy

		var duScaled [3]T
		for axis := 0; axis < 3; axis++ {
			duScaled[axis] = T(-dudf[axis]) * dims[axis]
		}
		// Cartesian gradient = fracInv^T * (N (dot) dE/du); force is its
		// negative.
		for r := 0; r < 3; r++ {
			var sum T
			for c := 0; c < 3; c++ {
				sum += inst.fracInv.At(c, r) * duScaled[c]
			}
			forces[n][r] = sum
		}
	}

	sf := float64(inst.cfg.ScaleFactor)
	energy *= sf
	for n := range forces {
		for axis := 0; axis < 3; axis++ {
			forces[n][axis] *= inst.cfg.ScaleFactor
		}
	}

	return T(energy), forces, nil
}

// normalizeInverse undoes gonum's unnormalized inverse-FFT convention
// (Sequence divides by nothing; the forward/inverse pair multiplies the
// signal by the transform length) so the convolved grid has the same
// scale the forward transform started with.
func (inst *Instance[T]) normalizeInverse() {
	n := float64(inst.cfg.GridA * inst.cfg.GridB * inst.cfg.GridC)
	for i := range inst.grid {
		inst.grid[i] /= n
	}
}

// ComputeEFVRec returns energy, forces, and the virial for point
// charges. It is the angular-momentum-0 case of ComputeEFVRecMultipole.
func (inst *Instance[T]) ComputeEFVRec(coords [][3]T, charges []T) (T, [][3]T, [6]T, error) {
	if len(coords) != len(charges) {
		return 0, nil, [6]T{}, gopme.NewError("pme.ComputeEFVRec: coords and charges must have the same length")
	}
	return inst.ComputeEFVRecMultipole(coords, chargesToParams(charges), 0)
}

// ComputeEFVRecMultipole returns energy, forces, and the length-6
// symmetric virial (xx, xy, xz, yy, yz, zz) for a set of point
// multipoles, accumulated from the atomic force-position outer product
// 0.5*(r (x) F + F (x) r), the simpler of two equivalent routes to the
// reciprocal-space virial (the other being differentiating theta(k)
// directly with respect to lattice strain).
func (inst *Instance[T]) ComputeEFVRecMultipole(coords [][3]T, paramsCart [][]T, angMom int) (T, [][3]T, [6]T, error) {
	e, forces, err := inst.ComputeEFRecMultipole(coords, paramsCart, angMom)
	if err != nil {
		return 0, nil, [6]T{}, err
	}

	var vxx, vxy, vxz, vyy, vyz, vzz float64
	for n, f := range forces {
		r := coords[n]
		vxx += float64(r[0]) * float64(f[0])
		vyy += float64(r[1]) * float64(f[1])
		vzz += float64(r[2]) * float64(f[2])
		vxy += 0.5 * (float64(r[0])*float64(f[1]) + float64(r[1])*float64(f[0]))
		vxz += 0.5 * (float64(r[0])*float64(f[2]) + float64(r[2])*float64(f[0]))
		vyz += 0.5 * (float64(r[1])*float64(f[2]) + float64(r[2])*float64(f[1]))
	}
	inst.virial = [6]float64{vxx, vxy, vxz, vyy, vyz, vzz}

	virial := [6]T{T(vxx), T(vxy), T(vxz), T(vyy), T(vyz), T(vzz)}
	return e, forces, virial, nil
}
