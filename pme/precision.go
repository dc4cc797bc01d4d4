/*
 * precision.go, part of gopme.
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

// InstanceF64 and InstanceF32 are concrete aliases for the generic
// Instance, mirroring the original helPME's PMEInstanceD/PMEInstanceF
// pair of top-level types -- callers that only ever need one precision
// don't have to spell out the type parameter at every call site.
type (
	InstanceF64 = Instance[float64]
	InstanceF32 = Instance[float32]
)

// NewInstanceF64 creates and configures a double-precision Instance.
func NewInstanceF64(cfg Config[float64]) (*InstanceF64, error) {
	return NewInstance(cfg)
}

// NewInstanceF32 creates and configures a single-precision Instance.
func NewInstanceF32(cfg Config[float32]) (*InstanceF32, error) {
	return NewInstance(cfg)
}
