/*
 * boundary.go, part of gopme.
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
	"fmt"

	"github.com/rmera/gopme"
	"github.com/rmera/gopme/matrix"
	"github.com/rmera/gopme/spline"
)

// ComputeERecFlat is the flat-call form of ComputeERecMultipole:
// parameters is a borrowed (nAtoms x nCartesian(parameterAngMom)) matrix
// and coordinates a borrowed (nAtoms x 3) matrix, matching the
// marshaling the original boundary functions perform before handing
// views to the orchestrator. parameterAngMom selects the multipole
// order of every atom's parameter row uniformly (0 for point charges, 1
// for point charges plus dipoles, and so on); spec.md section 1
// requires this to work for arbitrary angular momentum, subject only to
// the spline order carrying enough derivative headroom (see
// requireSplineOrderFor).
func (inst *Instance[T]) ComputeERecFlat(parameterAngMom int, parameters, coordinates *matrix.Matrix[T]) (T, error) {
	coords, params, err := unmarshalFlat(parameterAngMom, parameters, coordinates)
	if err != nil {
		return 0, gopme.Decorate(err, "pme.ComputeERecFlat")
	}
	return inst.ComputeERecMultipole(coords, params, parameterAngMom)
}

// ComputeEFRecFlat is the flat-call form of ComputeEFRecMultipole.
// forces is accumulated into (added to), not overwritten, so callers
// can combine reciprocal-space forces with real-space forces already in
// the array.
func (inst *Instance[T]) ComputeEFRecFlat(parameterAngMom int, parameters, coordinates, forces *matrix.Matrix[T]) (T, error) {
	coords, params, err := unmarshalFlat(parameterAngMom, parameters, coordinates)
	if err != nil {
		return 0, gopme.Decorate(err, "pme.ComputeEFRecFlat")
	}
	e, fs, err := inst.ComputeEFRecMultipole(coords, params, parameterAngMom)
	if err != nil {
		return 0, err
	}
	accumulateForces(forces, fs)
	return e, nil
}

// ComputeEFVRecFlat is the flat-call form of ComputeEFVRecMultipole.
// virial is accumulated into, matching the same contract as forces.
func (inst *Instance[T]) ComputeEFVRecFlat(parameterAngMom int, parameters, coordinates, forces *matrix.Matrix[T], virial *[6]T) (T, error) {
	coords, params, err := unmarshalFlat(parameterAngMom, parameters, coordinates)
	if err != nil {
		return 0, gopme.Decorate(err, "pme.ComputeEFVRecFlat")
	}
	e, fs, v, err := inst.ComputeEFVRecMultipole(coords, params, parameterAngMom)
	if err != nil {
		return 0, err
	}
	accumulateForces(forces, fs)
	for i := range virial {
		virial[i] += v[i]
	}
	return e, nil
}

// unmarshalFlat extracts per-atom coordinates and Cartesian multipole
// parameter rows from the borrowed matrix views the flat-call boundary
// takes, checking their shapes against parameterAngMom's expected
// component count (spline.NCartesian).
func unmarshalFlat[T matrix.Real](parameterAngMom int, parameters, coordinates *matrix.Matrix[T]) ([][3]T, [][]T, error) {
	if parameterAngMom < 0 {
		return nil, nil, gopme.NewError("parameterAngMom must be non-negative")
	}
	nAtoms, nParams := parameters.Dims()
	nComp := spline.NCartesian(parameterAngMom)
	if nParams != nComp {
		return nil, nil, gopme.NewError(fmt.Sprintf(
			"pme: parameters has %d columns, want %d for angular momentum %d",
			nParams, nComp, parameterAngMom))
	}
	crows, ccols := coordinates.Dims()
	if crows != nAtoms || ccols != 3 {
		return nil, nil, gopme.NewError(fmt.Sprintf(
			"pme: coordinates has shape (%d, %d), want (%d, 3)",
			crows, ccols, nAtoms))
	}

	params := make([][]T, nAtoms)
	coords := make([][3]T, nAtoms)
	for i := 0; i < nAtoms; i++ {
		row := make([]T, nComp)
		for c := 0; c < nComp; c++ {
			row[c] = parameters.At(i, c)
		}
		params[i] = row
		coords[i] = [3]T{coordinates.At(i, 0), coordinates.At(i, 1), coordinates.At(i, 2)}
	}
	return coords, params, nil
}

func accumulateForces[T matrix.Real](dst *matrix.Matrix[T], fs [][3]T) {
	for i, f := range fs {
		for c := 0; c < 3; c++ {
			dst.Set(i, c, dst.At(i, c)+f[c])
		}
	}
}
