// Package banded builds and manipulates the diagonal storage of symmetric
// banded matrices, primarily the difference-penalty operators used for
// Whittaker smoothing.
//
// A band is stored as a slice of diagonals, each of length equal to the
// matrix size. The full representation orders diagonals from the uppermost
// to the lowermost; the lower-only representation starts at the main
// diagonal and proceeds downward, relying on symmetry for the upper half.
// The diagonal with offset k carries the matrix entry for column c at slice
// index c, so the leading (upper) or trailing (lower) |k| entries of each
// off-diagonal are structural zeros.
package banded

import "errors"

// Errors returned by the banded matrix kernel.
var (
	ErrInvalidSize     = errors.New("banded: data size must be > 0")
	ErrInvalidOrder    = errors.New("banded: difference order must be >= 0")
	ErrColumnMismatch  = errors.New("banded: diagonal column counts differ")
	ErrUncenteredBands = errors.New("banded: symmetric bands must differ by whole diagonal pairs")
)

// DiffPenaltyDiagonals returns the diagonals of D_order^T * D_order, where
// D_order is the finite-difference matrix of the given order on size points.
// The result has 2*order+1 diagonals, or order+1 when lowerOnly is true.
// Orders 1 to 3 use closed-form fills when the signal is long enough; other
// orders, and signals with size <= 2*order, go through a general banded
// product that matches the closed forms exactly. A positive padding appends
// that many all-zero diagonals via PadDiagonals.
func DiffPenaltyDiagonals(size, order int, lowerOnly bool, padding int) ([][]float64, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	if order < 0 {
		return nil, ErrInvalidOrder
	}

	var lower [][]float64
	switch {
	case order == 0:
		lower = [][]float64{constRow(size, 1)}
	case order <= 3 && size > 2*order:
		lower = fastPenaltyDiagonals(size, order)
	default:
		lower = productPenaltyDiagonals(size, order)
	}

	diagonals := lower
	if !lowerOnly {
		diagonals = LowerToFull(lower)
	}

	return PadDiagonals(diagonals, padding, lowerOnly), nil
}

// fastPenaltyDiagonals fills the known diagonal patterns for orders 1-3.
// Valid only when size > 2*order so the edge entries do not overlap.
func fastPenaltyDiagonals(size, order int) [][]float64 {
	lower := make([][]float64, order+1)
	switch order {
	case 1:
		main := constRow(size, 2)
		main[0], main[size-1] = 1, 1
		off := constRow(size, -1)
		off[size-1] = 0
		lower[0], lower[1] = main, off
	case 2:
		main := constRow(size, 6)
		main[0], main[size-1] = 1, 1
		main[1], main[size-2] = 5, 5
		off1 := constRow(size, -4)
		off1[0], off1[size-2] = -2, -2
		off1[size-1] = 0
		off2 := constRow(size, 1)
		off2[size-2], off2[size-1] = 0, 0
		lower[0], lower[1], lower[2] = main, off1, off2
	case 3:
		main := constRow(size, 20)
		main[0], main[size-1] = 1, 1
		main[1], main[size-2] = 10, 10
		main[2], main[size-3] = 19, 19
		off1 := constRow(size, -15)
		off1[0], off1[size-2] = -3, -3
		off1[1], off1[size-3] = -12, -12
		off1[size-1] = 0
		off2 := constRow(size, 6)
		off2[0], off2[size-3] = 3, 3
		off2[size-2], off2[size-1] = 0, 0
		off3 := constRow(size, -1)
		off3[size-3], off3[size-2], off3[size-1] = 0, 0, 0
		lower[0], lower[1], lower[2], lower[3] = main, off1, off2, off3
	}
	return lower
}

// productPenaltyDiagonals computes the lower diagonals of D^T * D directly
// from the difference stencil, summing over the overlapping rows of D. Used
// for orders above 3 and for signals too short for the closed forms.
func productPenaltyDiagonals(size, order int) [][]float64 {
	stencil := diffStencil(order)
	numRows := size - order // rows of the difference matrix; may be <= 0

	lower := make([][]float64, order+1)
	for j := 0; j <= order; j++ {
		diag := make([]float64, size)
		for i := 0; i+j < size; i++ {
			// entry (i+j, i); D[r][c] = stencil[c-r] for r <= c <= r+order
			rLo := i + j - order
			if rLo < 0 {
				rLo = 0
			}
			rHi := i
			if rHi > numRows-1 {
				rHi = numRows - 1
			}
			var sum float64
			for r := rLo; r <= rHi; r++ {
				sum += stencil[i+j-r] * stencil[i-r]
			}
			diag[i] = sum
		}
		lower[j] = diag
	}
	return lower
}

// diffStencil returns the coefficients of one row of the order-th finite
// difference matrix, e.g. [1, -2, 1] for order 2.
func diffStencil(order int) []float64 {
	s := []float64{1}
	for k := 0; k < order; k++ {
		next := make([]float64, len(s)+1)
		for i := range next {
			var prev, cur float64
			if i > 0 {
				prev = s[i-1]
			}
			if i < len(s) {
				cur = s[i]
			}
			next[i] = prev - cur
		}
		s = next
	}
	return s
}

// PadDiagonals appends padding all-zero diagonals to a banded representation:
// on the trailing side only for lower-only storage, on both sides for the
// symmetric full storage. A padding of zero or less returns the input.
func PadDiagonals(diagonals [][]float64, padding int, lowerOnly bool) [][]float64 {
	if padding <= 0 || len(diagonals) == 0 {
		return diagonals
	}

	cols := len(diagonals[0])
	out := make([][]float64, 0, len(diagonals)+2*padding)
	if !lowerOnly {
		for i := 0; i < padding; i++ {
			out = append(out, make([]float64, cols))
		}
	}
	out = append(out, diagonals...)
	for i := 0; i < padding; i++ {
		out = append(out, make([]float64, cols))
	}
	return out
}

// AddDiagonals adds two banded representations that may have different
// bandwidths, zero-extending the narrower band before adding. Lower-only
// bands align on the main diagonal; symmetric bands align on the band
// center, which requires the row-count difference to be even.
func AddDiagonals(a, b [][]float64, lowerOnly bool) ([][]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrColumnMismatch
	}
	if len(a[0]) != len(b[0]) {
		return nil, ErrColumnMismatch
	}
	if len(a) < len(b) {
		a, b = b, a
	}

	offset := 0
	if !lowerOnly {
		diff := len(a) - len(b)
		if diff%2 != 0 {
			return nil, ErrUncenteredBands
		}
		offset = diff / 2
	}

	out := make([][]float64, len(a))
	for i, row := range a {
		out[i] = append([]float64(nil), row...)
	}
	for i, row := range b {
		dst := out[i+offset]
		for c, v := range row {
			dst[c] += v
		}
	}
	return out, nil
}

// LowerToFull reconstructs the full symmetric band from its lower-only
// representation by mirroring each sub-diagonal into the matching
// super-diagonal position.
func LowerToFull(lower [][]float64) [][]float64 {
	if len(lower) == 0 {
		return nil
	}

	bandwidth := len(lower) - 1
	cols := len(lower[0])
	full := make([][]float64, 0, 2*bandwidth+1)
	for j := bandwidth; j > 0; j-- {
		// super-diagonal +j is the sub-diagonal -j shifted right by j
		row := make([]float64, cols)
		copy(row[j:], lower[j][:cols-j])
		full = append(full, row)
	}
	for _, row := range lower {
		full = append(full, append([]float64(nil), row...))
	}
	return full
}

// ShiftRows converts between diagonal-ordering conventions by shifting the
// first upperCount rows right and the last lowerCount rows left, each by its
// distance from the main diagonal. The shift is done in place; the input is
// mutated and returned.
func ShiftRows(matrix [][]float64, upperCount, lowerCount int) [][]float64 {
	for i := 0; i < upperCount && i < len(matrix); i++ {
		shiftRight(matrix[i], upperCount-i)
	}
	for i := 0; i < lowerCount && i < len(matrix); i++ {
		shiftLeft(matrix[len(matrix)-1-i], lowerCount-i)
	}
	return matrix
}

func shiftRight(row []float64, n int) {
	if n <= 0 {
		return
	}
	if n > len(row) {
		n = len(row)
	}
	copy(row[n:], row[:len(row)-n])
	for i := 0; i < n && i < len(row); i++ {
		row[i] = 0
	}
}

func shiftLeft(row []float64, n int) {
	if n <= 0 {
		return
	}
	if n > len(row) {
		n = len(row)
	}
	copy(row, row[n:])
	for i := len(row) - n; i < len(row); i++ {
		row[i] = 0
	}
}

func constRow(size int, value float64) []float64 {
	row := make([]float64, size)
	for i := range row {
		row[i] = value
	}
	return row
}
