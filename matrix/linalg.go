/*
 * linalg.go, part of gopme.
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
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SortOrder controls how Diagonalize orders the eigenpairs it
// returns, by the real part of the eigenvalue.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// singularGuard is the threshold below which an eigenvalue is treated
// as singular when inverting via spectral decomposition.
const singularGuard = 1e-12

// Multiply returns a*b. a.cols must equal b.rows. Multiply works for
// any Element (real or complex), unlike the rest of this file, since
// it needs nothing but +, * and a zero value.
func Multiply[T Element](a, b *Matrix[T]) (*Matrix[T], error) {
	if a.cols != b.rows {
		return nil, fmt.Errorf("gopme/matrix: cannot multiply a %dx%d matrix by a %dx%d matrix", a.rows, a.cols, b.rows, b.cols)
	}
	out := New[T](a.rows, b.cols)
	for r := 0; r < a.rows; r++ {
		for k := 0; k < a.cols; k++ {
			link := a.At(r, k)
			if link == 0 {
				continue
			}
			for c := 0; c < b.cols; c++ {
				out.Set(r, c, out.At(r, c)+link*b.At(k, c))
			}
		}
	}
	return out, nil
}

// TransposeInPlace transposes m in place using the classical
// cycle-following permutation on the linearized buffer, exactly as the
// original's transposeMemoryInPlace does. m must be contiguous
// (stride == cols); borrowed sub-views are not transposable in place.
func (m *Matrix[T]) TransposeInPlace() {
	if !m.IsContiguous() {
		panic(ErrNonContig)
	}
	n := m.rows * m.cols
	if n == 0 {
		m.rows, m.cols, m.stride = m.cols, m.rows, m.rows
		return
	}
	rowWidth := m.rows
	visited := make([]bool, n)
	for cycle := 1; cycle < n; cycle++ {
		if visited[cycle] {
			continue
		}
		a := cycle
		for {
			if a == n-1 {
				a = n - 1
			} else {
				a = (rowWidth * a) % (n - 1)
			}
			m.data[a], m.data[cycle] = m.data[cycle], m.data[a]
			visited[a] = true
			if a == cycle {
				break
			}
		}
	}
	m.rows, m.cols, m.stride = m.cols, m.rows, m.rows
}

// Transpose returns a transposed deep copy of m, leaving m untouched.
func (m *Matrix[T]) Transpose() *Matrix[T] {
	out := m.Clone()
	out.TransposeInPlace()
	return out
}

// Diagonalize diagonalizes m, leaving it untouched, delegating to
// gonum's general real eigensolver (mat.Eigen), the collaborator
// standing in for the LAPACK dgeev wrapper the original calls through
// LapackWrapper<Real>::diagonalizer(). m must be square. Eigenpairs
// are sorted by the real part of the eigenvalue according to order;
// the i-th column of vectors is the eigenvector for eigenvalue i.
//
// Only the real part of each eigenvector is retained, matching the
// original's own simplification of storing eigenvectors in a
// Matrix<Real> regardless of whether the underlying LAPACK routine
// found complex-conjugate pairs; for the symmetric matrices Inverse
// calls this on, eigenvectors are guaranteed real so nothing is lost.
func Diagonalize[T Real](m *Matrix[T], order SortOrder) (evalsReal, evalsImag []T, vectors *Matrix[T], err error) {
	if m.rows != m.cols {
		panic(ErrNotSquare)
	}
	n := m.rows
	a := mat.NewDense(n, n, nil)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			a.Set(r, c, float64(m.At(r, c)))
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenRight); !ok {
		return nil, nil, nil, fmt.Errorf("gopme/matrix: eigensolver failed to converge on a %dx%d matrix", n, n)
	}
	values := eig.Values(nil)
	var vecsC mat.CDense
	eig.VectorsTo(&vecsC)

	type pair struct {
		re, im float64
		col    int
	}
	pairs := make([]pair, n)
	for i, v := range values {
		pairs[i] = pair{re: real(v), im: imag(v), col: i}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if order == Descending {
			return pairs[i].re > pairs[j].re
		}
		return pairs[i].re < pairs[j].re
	})

	evalsReal = make([]T, n)
	evalsImag = make([]T, n)
	vectors = New[T](n, n)
	for newCol, p := range pairs {
		evalsReal[newCol] = T(p.re)
		evalsImag[newCol] = T(p.im)
		for r := 0; r < n; r++ {
			vectors.Set(r, newCol, T(real(vecsC.At(r, p.col))))
		}
	}
	return evalsReal, evalsImag, vectors, nil
}

// Inverse inverts m, leaving it untouched. For 3x3 matrices it uses
// the direct closed-form cofactor/determinant formula; otherwise m
// must be symmetric, and the inverse is obtained by diagonalizing,
// inverting each eigenvalue, and recomposing V*diag(1/lambda)*V^T.
func Inverse[T Real](m *Matrix[T]) (*Matrix[T], error) {
	if m.rows != m.cols {
		panic(ErrNotSquare)
	}
	if m.rows == 3 {
		return inverse3x3(m)
	}
	assertSymmetric(m)

	evalsReal, evalsImag, vectors, err := Diagonalize(m, Ascending)
	if err != nil {
		return nil, err
	}
	for i, im := range evalsImag {
		if math.Abs(float64(im)) > singularGuard {
			return nil, fmt.Errorf("gopme/matrix: unexpected complex eigenvalue (index %d) inverting a %dx%d matrix", i, m.rows, m.rows)
		}
	}
	n := m.rows
	invDiag := make([]T, n)
	for i, lambda := range evalsReal {
		if math.Abs(float64(lambda)) < singularGuard {
			return nil, fmt.Errorf("gopme/matrix: matrix is singular (eigenvalue %d is %g, below guard %g)", i, lambda, singularGuard)
		}
		invDiag[i] = 1 / lambda
	}
	scaled := vectors.Transpose()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			scaled.Set(r, c, scaled.At(r, c)*invDiag[r])
		}
	}
	return Multiply(vectors, scaled)
}

func inverse3x3[T Real](m *Matrix[T]) (*Matrix[T], error) {
	a00, a01, a02 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	a10, a11, a12 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	a20, a21, a22 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	det := a00*(a11*a22-a21*a12) - a01*(a10*a22-a12*a20) + a02*(a10*a21-a11*a20)
	if math.Abs(float64(det)) < singularGuard {
		return nil, fmt.Errorf("gopme/matrix: 3x3 matrix is singular (determinant %g)", det)
	}
	invDet := 1 / det

	out := New[T](3, 3)
	out.Set(0, 0, (a11*a22-a21*a12)*invDet)
	out.Set(0, 1, (a02*a21-a01*a22)*invDet)
	out.Set(0, 2, (a01*a12-a02*a11)*invDet)
	out.Set(1, 0, (a12*a20-a10*a22)*invDet)
	out.Set(1, 1, (a00*a22-a02*a20)*invDet)
	out.Set(1, 2, (a02*a10-a00*a12)*invDet)
	out.Set(2, 0, (a10*a21-a11*a20)*invDet)
	out.Set(2, 1, (a01*a20-a00*a21)*invDet)
	out.Set(2, 2, (a00*a11-a01*a10)*invDet)
	return out, nil
}

func assertSymmetric[T Real](m *Matrix[T]) {
	const threshold = 1e-10
	for r := 0; r < m.rows; r++ {
		for c := 0; c < r; c++ {
			if math.Abs(float64(m.At(r, c)-m.At(c, r))) > threshold {
				panic(ErrNotSymmetric)
			}
		}
	}
}
