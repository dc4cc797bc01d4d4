/*
 * matrix.go, part of gopme.
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

// Package matrix provides the dense, row-major matrix container used
// throughout gopme: a thin wrapper that can either own its backing
// slice or borrow one handed in by a caller (an FFT scratch buffer, a
// parameter array marshaled in at the flat-call boundary, and so on),
// the same own-or-borrow split gochem's v3.Matrix keeps over
// gonum/mat64.Dense.
package matrix

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Element is the set of scalar types a Matrix can hold: both floating
// point precisions (for coordinates, grids, splines) and both complex
// precisions (for the half-complex reciprocal-space grid).
type Element interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// Real restricts the element set to the two precisions gopme runs its
// numerics at. Operations that require an ordering or an eigensolver
// (Multiply is the exception: it works for any Element) are defined
// only for Real, mirroring the design note in SPEC_FULL.md about
// monomorphizing over scalar precision instead of dispatching at
// runtime.
type Real interface {
	~float32 | ~float64
}

// PanicMsg is used for precondition violations: bad shapes, non-square
// or non-symmetric input, non-contiguous slice arithmetic. These are
// programmer errors, not recoverable runtime conditions, so they panic
// rather than returning an error -- the same split gochem's v3 package
// makes with its ErrShape/ErrNotXx3Matrix PanicMsg values.
type PanicMsg string

func (p PanicMsg) Error() string { return string(p) }

const (
	ErrShape        PanicMsg = "gopme/matrix: dimension mismatch"
	ErrNotSquare    PanicMsg = "gopme/matrix: operation requires a square matrix"
	ErrNotSymmetric PanicMsg = "gopme/matrix: operation requires a symmetric matrix"
	ErrNonContig    PanicMsg = "gopme/matrix: operation requires a contiguous (stride==1) slice"
)

// Matrix is a dense R x C matrix stored row-major. data may be a
// freshly allocated slice (owning) or a slice handed in by the caller
// (borrowing); Matrix never frees or reallocates data behind the
// caller's back. stride is the distance between the starts of
// consecutive rows, equal to cols for an owning matrix but possibly
// larger for a sub-view produced by View.
type Matrix[T Element] struct {
	rows, cols, stride int
	data               []T
}

// New allocates a new, zero-filled, owning R x C matrix.
func New[T Element](rows, cols int) *Matrix[T] {
	if rows < 0 || cols < 0 {
		panic(ErrShape)
	}
	return &Matrix[T]{rows: rows, cols: cols, stride: cols, data: make([]T, rows*cols)}
}

// Borrow wraps an already-allocated, contiguous row-major slice as an
// R x C matrix without copying. The caller retains ownership; data
// must stay valid and of length at least rows*cols for as long as the
// returned Matrix (or any view derived from it) is in use.
func Borrow[T Element](data []T, rows, cols int) *Matrix[T] {
	if rows < 0 || cols < 0 || len(data) < rows*cols {
		panic(ErrShape)
	}
	return &Matrix[T]{rows: rows, cols: cols, stride: cols, data: data}
}

// FromRows builds an owning matrix from row-major literal data, the
// equivalent of the original's braced-initializer-list constructor.
func FromRows[T Element](rows [][]T) (*Matrix[T], error) {
	if len(rows) == 0 {
		return &Matrix[T]{}, nil
	}
	cols := len(rows[0])
	m := New[T](len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("gopme/matrix: inconsistent row lengths in literal matrix (row %d has %d, want %d)", r, len(row), cols)
		}
		copy(m.data[r*m.stride:r*m.stride+cols], row)
	}
	return m, nil
}

// Dims returns the matrix's row and column counts.
func (m *Matrix[T]) Dims() (rows, cols int) { return m.rows, m.cols }

// At returns the element at (row, col). Like the original, indices are
// not bounds-checked by this package; an out-of-range index panics via
// the ordinary slice-indexing panic rather than a dedicated check.
func (m *Matrix[T]) At(row, col int) T { return m.data[row*m.stride+col] }

// Set stores v at (row, col).
func (m *Matrix[T]) Set(row, col int, v T) { m.data[row*m.stride+col] = v }

// SetConstant sets every element of the matrix to value.
func (m *Matrix[T]) SetConstant(value T) {
	for r := 0; r < m.rows; r++ {
		row := m.data[r*m.stride : r*m.stride+m.cols]
		for c := range row {
			row[c] = value
		}
	}
}

// SetZero sets every element of the matrix to the zero value.
func (m *Matrix[T]) SetZero() { var z T; m.SetConstant(z) }

// Row returns a contiguous, stride-1 view over row r.
func (m *Matrix[T]) Row(r int) *SliceView[T] {
	start := r * m.stride
	return &SliceView[T]{data: m.data, begin: start, end: start + m.cols, stride: 1}
}

// Col returns a strided view over column c.
func (m *Matrix[T]) Col(c int) *SliceView[T] {
	start := c
	end := (m.rows-1)*m.stride + c + 1
	return &SliceView[T]{data: m.data, begin: start, end: end, stride: m.stride}
}

// View returns a view onto the r x c block of m starting at (i, j).
// The view shares storage with m: writes through either are visible
// in the other. It must not outlive m.
func (m *Matrix[T]) View(i, j, r, c int) *Matrix[T] {
	if i < 0 || j < 0 || r < 0 || c < 0 || i+r > m.rows || j+c > m.cols {
		panic(ErrShape)
	}
	return &Matrix[T]{rows: r, cols: c, stride: m.stride, data: m.data[i*m.stride+j:]}
}

// IsContiguous reports whether m's storage has no gaps between rows,
// i.e. whether m is safe to pass to operations (TransposeInPlace,
// flattened FFT calls) that require stride == cols.
func (m *Matrix[T]) IsContiguous() bool { return m.stride == m.cols }

// RawData exposes the backing slice of an owning or a full-width
// (stride == cols) view, for collaborators (the FFT wrapper, the
// spline spreader) that need a flat buffer rather than indexed access.
func (m *Matrix[T]) RawData() []T {
	if !m.IsContiguous() {
		panic(ErrNonContig)
	}
	return m.data[:m.rows*m.cols]
}

// Clone returns a deep, owning copy of m.
func (m *Matrix[T]) Clone() *Matrix[T] {
	out := New[T](m.rows, m.cols)
	for r := 0; r < m.rows; r++ {
		copy(out.data[r*out.stride:r*out.stride+m.cols], m.data[r*m.stride:r*m.stride+m.cols])
	}
	return out
}

// Copy overwrites m's contents with other's. Both must have the same
// shape.
func (m *Matrix[T]) Copy(other *Matrix[T]) {
	assertSameSize(m, other)
	for r := 0; r < m.rows; r++ {
		copy(m.data[r*m.stride:r*m.stride+m.cols], other.data[r*other.stride:r*other.stride+other.cols])
	}
}

// Scale multiplies every element of src by factor, storing the result
// in m (which may be src itself).
func (m *Matrix[T]) Scale(factor T, src *Matrix[T]) {
	assertSameSize(m, src)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			m.Set(r, c, factor*src.At(r, c))
		}
	}
}

// Add stores a+b element-wise in m.
func (m *Matrix[T]) Add(a, b *Matrix[T]) {
	assertSameSize(a, b)
	assertSameSize(m, a)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			m.Set(r, c, a.At(r, c)+b.At(r, c))
		}
	}
}

// AddInPlace accumulates other into m element-wise: m += other. This
// is the hot accumulation path used by grid spreading.
func (m *Matrix[T]) AddInPlace(other *Matrix[T]) {
	assertSameSize(m, other)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			m.Set(r, c, m.At(r, c)+other.At(r, c))
		}
	}
}

// AlmostEquals reports whether m and other have the same shape and
// every corresponding pair of elements differs by no more than tol in
// magnitude, handling both real and complex element types the way the
// original's two almostEquals overloads (one per std::is_floating_point
// branch) do.
func (m *Matrix[T]) AlmostEquals(other *Matrix[T], tol float64) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if magnitude(m.At(r, c)-other.At(r, c)) > tol {
				return false
			}
		}
	}
	return true
}

func magnitude[T Element](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return math.Abs(float64(x))
	case float64:
		return math.Abs(x)
	case complex64:
		return cmplx.Abs(complex128(x))
	case complex128:
		return cmplx.Abs(x)
	}
	return 0
}

func assertSameSize[T Element](a, b *Matrix[T]) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(ErrShape)
	}
}

func (m *Matrix[T]) String() string {
	s := ""
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			s += fmt.Sprintf("%v ", m.At(r, c))
		}
		s += "\n"
	}
	return s
}
