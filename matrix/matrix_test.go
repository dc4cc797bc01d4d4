/*
 * matrix_test.go, part of gopme.
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

import "testing"

func TestBorrowSharesStorage(t *testing.T) {
	data := make([]float64, 6)
	m := Borrow(data, 2, 3)
	m.Set(0, 0, 5)
	if data[0] != 5 {
		t.Errorf("Borrow did not share storage with its backing slice")
	}
}

func TestTransposeInvolution(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	tr := m.Transpose()
	back := tr.Transpose()
	if !m.AlmostEquals(back, 1e-12) {
		t.Errorf("transposing twice did not recover the original matrix")
	}
	r, c := tr.Dims()
	if r != 3 || c != 2 {
		t.Errorf("Transpose gave wrong shape: got %dx%d, want 3x2", r, c)
	}
}

func TestTransposeInPlace(t *testing.T) {
	m, _ := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	m.TransposeInPlace()
	r, c := m.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("TransposeInPlace gave wrong shape: got %dx%d, want 3x2", r, c)
	}
	want := [][2]float64{{1, 4}, {2, 5}, {3, 6}}
	for i, row := range want {
		if m.At(i, 0) != row[0] || m.At(i, 1) != row[1] {
			t.Errorf("row %d = (%v, %v), want (%v, %v)", i, m.At(i, 0), m.At(i, 1), row[0], row[1])
		}
	}
}

func TestInverse3x3(t *testing.T) {
	m, _ := FromRows([][]float64{
		{2, 0, 0},
		{0, 3, 0},
		{0, 0, 4},
	})
	inv, err := Inverse(m)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	prod, err := Multiply(m, inv)
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := 0.0
			if r == c {
				want = 1.0
			}
			if got := prod.At(r, c); abs(got-want) > 1e-9 {
				t.Errorf("(m*inv)[%d][%d] = %v, want %v", r, c, got, want)
			}
		}
	}
}

// TestInverse3x3NonDiagonal is spec.md section 8 scenario 5: a
// non-diagonal 3x3 matrix, checked the same way, since the closed-form
// cofactor path (unlike the spectral fallback) never touches the
// diagonalizer at all.
func TestInverse3x3NonDiagonal(t *testing.T) {
	m, _ := FromRows([][]float64{
		{2, 0, 1},
		{3, 1, 0},
		{0, 4, 1},
	})
	inv, err := Inverse(m)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	prod, err := Multiply(inv, m)
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := 0.0
			if r == c {
				want = 1.0
			}
			if got := prod.At(r, c); abs(got-want) > 1e-14 {
				t.Errorf("(inv*m)[%d][%d] = %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestInverseSingular(t *testing.T) {
	m, _ := FromRows([][]float64{
		{1, 2, 3},
		{2, 4, 6},
		{7, 8, 9},
	})
	if _, err := Inverse(m); err == nil {
		t.Errorf("expected an error inverting a singular matrix, got nil")
	}
}

func TestDiagonalizeSymmetricRecomposition(t *testing.T) {
	m, _ := FromRows([][]float64{
		{2, 1, 0},
		{1, 2, 1},
		{0, 1, 2},
	})
	evalsReal, evalsImag, vectors, err := Diagonalize(m, Ascending)
	if err != nil {
		t.Fatalf("Diagonalize: %v", err)
	}
	for i := 1; i < len(evalsReal); i++ {
		if evalsReal[i] < evalsReal[i-1] {
			t.Errorf("eigenvalues not ascending: %v", evalsReal)
		}
	}
	for i, im := range evalsImag {
		if abs(im) > 1e-9 {
			t.Errorf("eigenvalue %d has unexpected imaginary part %v for a symmetric matrix", i, im)
		}
	}

	// recompose V * diag(lambda) * V^T and compare to m
	scaled := vectors.Clone()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			scaled.Set(r, c, scaled.At(r, c)*evalsReal[c])
		}
	}
	recomposed, err := Multiply(scaled, vectors.Transpose())
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}
	if !recomposed.AlmostEquals(m, 1e-9) {
		t.Errorf("V*diag(lambda)*V^T did not recompose the original symmetric matrix:\n%v\nvs\n%v", recomposed, m)
	}
}

func TestPanicsOnShapeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic adding mismatched shapes via Add")
		}
	}()
	a := New[float64](2, 2)
	b := New[float64](3, 3)
	a.Add(a, b)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
