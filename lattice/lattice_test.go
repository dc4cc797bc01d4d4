/*
 * lattice_test.go, part of gopme.
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

package lattice

import (
	"math"
	"testing"

	"github.com/rmera/gopme/matrix"
)

const halfPi = math.Pi / 2

func TestCubicVolumeAndReciprocal(t *testing.T) {
	lat, err := Build(10.0, 10.0, 10.0, halfPi, halfPi, halfPi, XAligned)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if math.Abs(lat.Volume-1000.0) > 1e-9 {
		t.Errorf("cubic cell volume = %v, want 1000", lat.Volume)
	}
	// reciprocal vectors of a cubic cell of side L are 2*pi/L along
	// each axis.
	want := 2 * math.Pi / 10.0
	if math.Abs(float64(lat.Reciprocal.At(0, 0))-want) > 1e-9 {
		t.Errorf("reciprocal a* = %v, want %v", lat.Reciprocal.At(0, 0), want)
	}
}

func TestFractionalCartesianRoundTrip(t *testing.T) {
	lat, err := Build(12.0, 8.0, 15.0, 1.4, 1.5, halfPi, XAligned)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cart := [3]float64{3.1, -2.2, 7.7}
	frac := lat.FractionalOf(cart)
	back := lat.CartesianOf(frac)
	for i := range cart {
		if math.Abs(cart[i]-back[i]) > 1e-8 {
			t.Errorf("round trip axis %d: got %v, want %v", i, back[i], cart[i])
		}
	}
}

func TestTriclinicVolumePositive(t *testing.T) {
	lat, err := Build(10, 11, 12, 1.3, 1.4, 1.1, XAligned)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if lat.Volume <= 0 {
		t.Errorf("triclinic cell volume should be positive, got %v", lat.Volume)
	}
}

func TestShapeMatrixMatchesXAlignedVolume(t *testing.T) {
	a, b, c := 10.0, 11.0, 9.5
	alpha, beta, gamma := 1.3, 1.4, 1.1
	xa, err := Build(a, b, c, alpha, beta, gamma, XAligned)
	if err != nil {
		t.Fatalf("Build(XAligned): %v", err)
	}
	sm, err := Build(a, b, c, alpha, beta, gamma, ShapeMatrix)
	if err != nil {
		t.Fatalf("Build(ShapeMatrix): %v", err)
	}
	if math.Abs(xa.Volume-sm.Volume) > 1e-6 {
		t.Errorf("XAligned and ShapeMatrix volumes disagree: %v vs %v", xa.Volume, sm.Volume)
	}
}

// TestShapeMatrixRoundTrip is spec.md section 8 scenario 3: a
// triclinic ShapeMatrix cell's reciprocal lattice must satisfy
// R^T*L/(2*pi) = I, and its volume must match the closed-form
// parallelepiped-volume formula in terms of the cell angles.
func TestShapeMatrixRoundTrip(t *testing.T) {
	a, b, c := 10.0, 12.0, 15.0
	alpha := 80.0 * math.Pi / 180.0
	beta := 90.0 * math.Pi / 180.0
	gamma := 100.0 * math.Pi / 180.0

	lat, err := Build(a, b, c, alpha, beta, gamma, ShapeMatrix)
	if err != nil {
		t.Fatalf("Build(ShapeMatrix): %v", err)
	}

	// R^T * L / (2*pi) == I
	rt := lat.Reciprocal.Transpose()
	prod, err := matrix.Multiply(rt, lat.Cartesian)
	if err != nil {
		t.Fatalf("multiply: %v", err)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			got := prod.At(r, c) / (2 * math.Pi)
			want := 0.0
			if r == c {
				want = 1.0
			}
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("R^T*L/(2pi)[%d][%d] = %v, want %v", r, c, got, want)
			}
		}
	}

	cosA, cosB, cosG := math.Cos(alpha), math.Cos(beta), math.Cos(gamma)
	under := 1 - cosA*cosA - cosB*cosB - cosG*cosG + 2*cosA*cosB*cosG
	wantVolume := a * b * c * math.Sqrt(under)
	if math.Abs(lat.Volume-wantVolume) > 1e-10*wantVolume {
		t.Errorf("ShapeMatrix volume = %v, want %v", lat.Volume, wantVolume)
	}
}

func TestStressTensorSymmetric(t *testing.T) {
	v := [6]float64{1, 2, 3, 4, 5, 6}
	m := StressTensor(v)
	if m.At(0, 1) != m.At(1, 0) || m.At(0, 2) != m.At(2, 0) || m.At(1, 2) != m.At(2, 1) {
		t.Errorf("StressTensor produced a non-symmetric matrix:\n%v", m)
	}
	if m.At(0, 0) != 1 || m.At(1, 1) != 4 || m.At(2, 2) != 6 {
		t.Errorf("StressTensor diagonal mismatched input virial: %v", m)
	}
}
