/*
 * blas_native.go, part of gopme.
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

package matrix

import (
	"gonum.org/v1/gonum/blas/blas64"
	gonumblas "gonum.org/v1/gonum/blas/gonum"
)

// mat.Dense (and, through it, Diagonalize and Inverse) run on top of
// blas64, whose concrete engine is swappable. gochem's v3 package
// offers the same choice between a pure-Go and a cgo-linked engine via
// build tags (init_goblas.go / init_cblas.go); this module wires the
// pure-Go one as the default and only engine, since a cgo-accelerated
// BLAS binding for gonum.org/v1/gonum lives in the separate
// gonum.org/v1/netlib module, outside this module's dependency
// closure.
func init() {
	blas64.Use(gonumblas.Implementation{})
}
