/*
 * spline_test.go, part of gopme.
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

package spline

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/rmera/gopme/matrix"
)

func identityMatrix() *matrix.Matrix[float64] {
	m := matrix.New[float64](3, 3)
	for i := 0; i < 3; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func TestPartitionOfUnity(t *testing.T) {
	for _, order := range []int{4, 6, 8} {
		for _, w := range []float64{0.0, 0.137, 0.5, 0.873, 0.999} {
			weights := Build(order, 0, w)
			sum := floats.Sum(weights.Values[0])
			if math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("order %d, w=%v: spline weights sum to %v, want 1", order, w, sum)
			}
		}
	}
}

func TestDerivativeSumsToZero(t *testing.T) {
	for _, order := range []int{4, 6, 8} {
		for _, w := range []float64{0.0, 0.25, 0.6, 0.9} {
			weights := Build(order, 1, w)
			sum := floats.Sum(weights.Values[1])
			if math.Abs(sum) > 1e-9 {
				t.Errorf("order %d, w=%v: first-derivative weights sum to %v, want 0", order, w, sum)
			}
		}
	}
}

func TestValuesNonNegative(t *testing.T) {
	weights := Build(6, 0, 0.42)
	for i, v := range weights.Values[0] {
		if v < 0 {
			t.Errorf("spline value %d is negative: %v", i, v)
		}
	}
}

func TestNCartesian(t *testing.T) {
	cases := map[int]int{0: 1, 1: 4, 2: 10}
	for order, want := range cases {
		if got := NCartesian(order); got != want {
			t.Errorf("NCartesian(%d) = %d, want %d", order, got, want)
		}
	}
}

func TestExponentsOrdering(t *testing.T) {
	got := Exponents(2)
	want := []Exponent{
		{0, 0, 0},
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{2, 0, 0}, {1, 1, 0}, {1, 0, 1}, {0, 2, 0}, {0, 1, 1}, {0, 0, 2},
	}
	if len(got) != len(want) {
		t.Fatalf("Exponents(2) returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Exponents(2)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCartesianToFractionalIdentity(t *testing.T) {
	m := CartesianToFractional(identityMatrix(), 2)
	n, _ := m.Dims()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			want := 0.0
			if r == c {
				want = 1.0
			}
			if got := m.At(r, c); math.Abs(got-want) > 1e-12 {
				t.Errorf("identity fracToCart should produce an identity transform; (%d,%d)=%v, want %v", r, c, got, want)
			}
		}
	}
}
