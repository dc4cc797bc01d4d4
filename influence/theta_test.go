/*
 * theta_test.go, part of gopme.
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

package influence

import (
	"math"
	"testing"

	"github.com/rmera/gopme/matrix"
)

func cubicReciprocal(side float64) (*matrix.Matrix[float64], float64) {
	m := matrix.New[float64](3, 3)
	inv := 1 / side
	m.Set(0, 0, inv)
	m.Set(1, 1, inv)
	m.Set(2, 2, inv)
	return m, side * side * side
}

func TestUpperIncompleteGammaMatchesElementaryClosedForm(t *testing.T) {
	// Gamma(1,x) = exp(-x); Gamma(2,x) = (1+x)*exp(-x). a=1 is the case
	// rPower=2 feeds into upperIncompleteGamma; a=2 would be rPower=1,
	// which Build handles on its Coulomb path without calling it.
	for _, x := range []float64{0.1, 1.0, 3.5, 10.0} {
		got := upperIncompleteGamma(1, x)
		want := math.Exp(-x)
		if math.Abs(got-want) > 1e-6*math.Max(1, want) {
			t.Errorf("Gamma(1,%v) = %v, want %v", x, got, want)
		}
		got2 := upperIncompleteGamma(2, x)
		want2 := (1 + x) * math.Exp(-x)
		if math.Abs(got2-want2) > 1e-6*math.Max(1, want2) {
			t.Errorf("Gamma(2,%v) = %v, want %v", x, got2, want2)
		}
	}
}

func TestUpperIncompleteGammaRecursionConsistency(t *testing.T) {
	// Gamma(a+1,x) = a*Gamma(a,x) + x^a*exp(-x), checked for a negative
	// integer (the rPower=6 dispersion case uses a=-3).
	a, x := -3.0, 2.5
	lhs := upperIncompleteGamma(a+1, x)
	rhs := a*upperIncompleteGamma(a, x) + math.Pow(x, a)*math.Exp(-x)
	if math.Abs(lhs-rhs) > 1e-8*math.Max(1, math.Abs(rhs)) {
		t.Errorf("incomplete gamma recursion failed: Gamma(-2,x)=%v, a*Gamma(-3,x)+x^a*exp(-x)=%v", lhs, rhs)
	}
}

func TestExpInt1PositiveAndDecreasing(t *testing.T) {
	prev := math.Inf(1)
	for _, x := range []float64{0.05, 0.5, 1.0, 2.0, 5.0, 10.0} {
		v := expInt1(x)
		if v <= 0 {
			t.Errorf("E1(%v) = %v, want positive", x, v)
		}
		if v > prev {
			t.Errorf("E1 should be monotonically decreasing; E1 at a larger x (%v) exceeded the previous value", x)
		}
		prev = v
	}
}

func TestDCTermExcluded(t *testing.T) {
	recip, vol := cubicReciprocal(20.0)
	tb, err := Build(1, 0.3, 6, 16, 16, 16, recip, vol)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tb.Value(0, 0, 0) != 0 {
		t.Errorf("theta(0,0,0) = %v, want 0 (DC term must be excluded)", tb.Value(0, 0, 0))
	}
}

func TestThetaPositiveAwayFromDC(t *testing.T) {
	recip, vol := cubicReciprocal(20.0)
	tb, err := Build(1, 0.3, 6, 16, 16, 16, recip, vol)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v := tb.Value(1, 0, 0); v <= 0 {
		t.Errorf("theta(1,0,0) = %v, want positive", v)
	}
}

// TestThetaHermitianSymmetry is spec.md section 8's "theta is
// Hermitian-symmetric on the half-complex grid" property: theta depends
// only on |k|^2, so negating every axis index leaves it unchanged.
// Within the stored half-complex grid that negation is directly
// checkable at c=0 (0 and C-0=C are the same residue), where the
// mirrored index also lands inside the stored half.
func TestThetaHermitianSymmetry(t *testing.T) {
	recip, vol := cubicReciprocal(20.0)
	tb, err := Build(1, 0.3, 6, 16, 16, 16, recip, vol)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	A, B := tb.A, tb.B
	for _, pt := range [][2]int{{1, 0}, {0, 3}, {2, 5}, {7, 1}} {
		ia, ib := pt[0], pt[1]
		mia, mib := (A-ia)%A, (B-ib)%B
		got, want := tb.Value(ia, ib, 0), tb.Value(mia, mib, 0)
		if math.Abs(got-want) > 1e-12*math.Max(1, math.Abs(want)) {
			t.Errorf("theta(%d,%d,0) = %v, theta(%d,%d,0) = %v; want equal by k -> -k symmetry", ia, ib, got, mia, mib, want)
		}
	}
}

func TestThetaDispersionKernelRuns(t *testing.T) {
	recip, vol := cubicReciprocal(20.0)
	// rPower=6 exercises the a<=0 incomplete-gamma path (a = 3-6 = -3).
	tb, err := Build(6, 0.3, 6, 12, 12, 12, recip, vol)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, v := range tb.Theta {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("dispersion theta table contains a non-finite value: %v", v)
		}
	}
}
