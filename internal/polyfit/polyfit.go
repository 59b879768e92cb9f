// Package polyfit provides polynomial least-squares fitting on a Vandermonde
// basis, including masked fits for iteratively reclassified points and the
// conversion of coefficients fit on a mapped domain back to the caller's
// x-domain.
package polyfit

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrUnderdetermined is returned when fewer points than coefficients remain
// in a masked fit.
var ErrUnderdetermined = errors.New("polyfit: fewer points than polynomial coefficients")

// Vander builds the Vandermonde matrix of x with columns x^0 through x^order.
func Vander(x []float64, order int) *mat.Dense {
	rows := len(x)
	cols := order + 1
	v := mat.NewDense(rows, cols, nil)
	for i, xv := range x {
		p := 1.0
		for j := 0; j < cols; j++ {
			v.Set(i, j, p)
			p *= xv
		}
	}
	return v
}

// Fit owns a QR factorization of a Vandermonde matrix so that repeated
// solves against new right-hand sides reuse the factorization.
type Fit struct {
	vander *mat.Dense
	qr     mat.QR
	cols   int
}

// NewFit factorizes the Vandermonde of x up to the given order.
func NewFit(x []float64, order int) (*Fit, error) {
	if len(x) < order+1 {
		return nil, ErrUnderdetermined
	}
	v := Vander(x, order)
	f := &Fit{vander: v, cols: order + 1}
	f.qr.Factorize(v)
	return f, nil
}

// Solve returns the least-squares coefficients for y, in increasing order.
func (f *Fit) Solve(y []float64) ([]float64, error) {
	var dst mat.Dense
	if err := f.qr.SolveTo(&dst, false, mat.NewDense(len(y), 1, y)); err != nil {
		return nil, err
	}
	coef := make([]float64, f.cols)
	for j := range coef {
		coef[j] = dst.At(j, 0)
	}
	return coef, nil
}

// Eval evaluates the fitted polynomial at every row of the Vandermonde.
func (f *Fit) Eval(coef []float64) []float64 {
	return Eval(f.vander, coef)
}

// Eval multiplies a Vandermonde matrix by a coefficient vector.
func Eval(vander *mat.Dense, coef []float64) []float64 {
	rows, _ := vander.Dims()
	var dst mat.VecDense
	dst.MulVec(vander, mat.NewVecDense(len(coef), coef))
	out := make([]float64, rows)
	for i := range out {
		out[i] = dst.AtVec(i)
	}
	return out
}

// FitMasked solves the least-squares fit restricted to the rows of vander
// where mask is true. The mask changes each iteration, so the reduced system
// is factorized per call.
func FitMasked(vander *mat.Dense, y []float64, mask []bool) ([]float64, error) {
	_, cols := vander.Dims()
	count := 0
	for _, m := range mask {
		if m {
			count++
		}
	}
	if count < cols {
		return nil, ErrUnderdetermined
	}

	sub := mat.NewDense(count, cols, nil)
	rhs := mat.NewDense(count, 1, nil)
	r := 0
	for i, m := range mask {
		if !m {
			continue
		}
		for j := 0; j < cols; j++ {
			sub.Set(r, j, vander.At(i, j))
		}
		rhs.Set(r, 0, y[i])
		r++
	}

	var qr mat.QR
	qr.Factorize(sub)
	var dst mat.Dense
	if err := qr.SolveTo(&dst, false, rhs); err != nil {
		return nil, err
	}
	coef := make([]float64, cols)
	for j := range coef {
		coef[j] = dst.At(j, 0)
	}
	return coef, nil
}

// ConvertDomain rewrites coefficients fit against x mapped onto [-1, 1] as
// coefficients in the original x-domain [lo, hi], by expanding the
// composition p(offset + scale*x) with a Horner recurrence on polynomials.
func ConvertDomain(coef []float64, lo, hi float64) []float64 {
	span := hi - lo
	if span == 0 || len(coef) == 0 {
		return append([]float64(nil), coef...)
	}
	offset := -(hi + lo) / span
	scale := 2 / span

	result := []float64{coef[len(coef)-1]}
	for k := len(coef) - 2; k >= 0; k-- {
		// result = result*(offset + scale*x) + coef[k]
		next := make([]float64, len(result)+1)
		for i, c := range result {
			next[i] += c * offset
			next[i+1] += c * scale
		}
		next[0] += coef[k]
		result = next
	}
	return result
}
