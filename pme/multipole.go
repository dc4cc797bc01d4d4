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

package pme

import (
	"fmt"

	"github.com/rmera/gopme"
	"github.com/rmera/gopme/spline"
)

// requireSplineOrderFor checks that the instance's spline order leaves
// enough room for the derivative tensor a given multipole degree needs:
// spreading/probing a component of degree angMom requires derivatives
// up to angMom+1 (one extra order for the force), and Build itself
// requires the spline order to exceed the requested derivative by at
// least 2.
func (inst *Instance[T]) requireSplineOrderFor(angMom int) error {
	if angMom < 0 {
		return gopme.NewError("angular momentum must be non-negative")
	}
	if inst.cfg.SplineOrder-(angMom+1) < 2 {
		return gopme.NewError(fmt.Sprintf(
			"spline order %d is too low for angular momentum %d (need order >= %d)",
			inst.cfg.SplineOrder, angMom, angMom+3))
	}
	return nil
}

// toFractionalParams applies the Cartesian -> fractional multipole
// transform (spline.CartesianToFractional, spec.md section 4.5) to
// every atom's Cartesian parameter vector, so spreadMultipoles and
// probeMultipole never need to know about the lattice: they operate
// entirely in fractional-coordinate multipole space.
func (inst *Instance[T]) toFractionalParams(paramsCart [][]T, angMom int) [][]T {
	transform := spline.CartesianToFractional(inst.lat.Cartesian, angMom)
	n, _ := transform.Dims()

	out := make([][]T, len(paramsCart))
	for a, p := range paramsCart {
		row := make([]T, n)
		for r := 0; r < n; r++ {
			var sum T
			for c := 0; c < n; c++ {
				sum += transform.At(r, c) * p[c]
			}
			row[r] = sum
		}
		out[a] = row
	}
	return out
}
