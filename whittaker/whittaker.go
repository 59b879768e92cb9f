// Package whittaker solves the penalized least-squares systems behind
// Whittaker smoothing: (lam*P + diag(w)) c = diag(w) y, where P is a
// difference-penalty operator stored by its diagonals and w is a mutable
// weight vector. The penalty band is built once per System and reused across
// reweighting iterations; only the weight diagonal changes between solves.
package whittaker

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-baseline/banded"
)

// Errors returned by the penalized system solver.
var (
	ErrInvalidDiffOrder = errors.New("whittaker: difference order must be >= 1")
	ErrInvalidLambda    = errors.New("whittaker: smoothing parameter must be > 0")
	ErrTooFewPoints     = errors.New("whittaker: data size must exceed the difference order")
	ErrSizeMismatch     = errors.New("whittaker: slice length does not match the system size")
	ErrSingular         = errors.New("whittaker: penalized system is not positive-definite")
)

// WeightRule maps a residual and the current weight of one point to its new
// weight, e.g. an asymmetric rule giving small weights to large positive
// residuals or a mask rule forcing peak points to zero.
type WeightRule func(residual, weight float64) float64

// System owns the banded representation of one penalized least-squares
// problem. A System must not be shared by concurrent solves; construct one
// per fitting run.
type System struct {
	size    int
	order   int
	penalty [][]float64 // lower diagonals of lam*P, fixed for the System's lifetime
	weights []float64
	rhs     []float64
}

// NewSystem builds the lower diagonals of lam times the diffOrder-th
// difference penalty on size points. All weights start at 1.
func NewSystem(size, diffOrder int, lam float64) (*System, error) {
	if diffOrder < 1 {
		return nil, ErrInvalidDiffOrder
	}
	if lam <= 0 {
		return nil, ErrInvalidLambda
	}
	if size <= diffOrder {
		return nil, ErrTooFewPoints
	}

	penalty, err := banded.DiffPenaltyDiagonals(size, diffOrder, true, 0)
	if err != nil {
		return nil, fmt.Errorf("whittaker: building penalty diagonals: %w", err)
	}
	for _, row := range penalty {
		for i := range row {
			row[i] *= lam
		}
	}

	weights := make([]float64, size)
	for i := range weights {
		weights[i] = 1
	}

	return &System{
		size:    size,
		order:   diffOrder,
		penalty: penalty,
		weights: weights,
		rhs:     make([]float64, size),
	}, nil
}

// Size returns the number of points in the system.
func (s *System) Size() int { return s.size }

// Weights returns a copy of the current weight diagonal.
func (s *System) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

// Reweight replaces the weight diagonal. The penalty band is untouched.
func (s *System) Reweight(weights []float64) error {
	if len(weights) != s.size {
		return ErrSizeMismatch
	}
	copy(s.weights, weights)
	return nil
}

// ReweightFunc updates every weight from the matching residual using rule,
// returning a copy of the new weight diagonal.
func (s *System) ReweightFunc(residual []float64, rule WeightRule) ([]float64, error) {
	if len(residual) != s.size {
		return nil, ErrSizeMismatch
	}
	for i, r := range residual {
		s.weights[i] = rule(r, s.weights[i])
	}
	return s.Weights(), nil
}

// Solve solves (lam*P + diag(w)) c = w*y for c with the current weights.
// The combined band is formed by diagonal addition and factored with a
// banded Cholesky decomposition; a system that is not positive-definite,
// such as one whose weights have all collapsed to zero, returns ErrSingular.
func (s *System) Solve(y []float64) ([]float64, error) {
	if len(y) != s.size {
		return nil, ErrSizeMismatch
	}

	combined, err := banded.AddDiagonals(s.penalty, [][]float64{s.weights}, true)
	if err != nil {
		return nil, fmt.Errorf("whittaker: combining bands: %w", err)
	}

	// gonum stores the upper triangle row-major; by symmetry the entry
	// (i, i+j) equals the lower diagonal j at column i.
	k := s.order
	data := make([]float64, s.size*(k+1))
	for i := 0; i < s.size; i++ {
		for j := 0; j <= k && i+j < s.size; j++ {
			data[i*(k+1)+j] = combined[j][i]
		}
	}
	band := mat.NewSymBandDense(s.size, k, data)

	var chol mat.BandCholesky
	if ok := chol.Factorize(band); !ok {
		return nil, ErrSingular
	}

	vecmath.MulBlock(s.rhs, s.weights, y)

	var solution mat.VecDense
	if err := chol.SolveVecTo(&solution, mat.NewVecDense(s.size, s.rhs)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	out := make([]float64, s.size)
	copy(out, solution.RawVector().Data)
	return out, nil
}

// SolveWeighted replaces the weight diagonal and solves in one call.
func (s *System) SolveWeighted(y, weights []float64) ([]float64, error) {
	if err := s.Reweight(weights); err != nil {
		return nil, err
	}
	return s.Solve(y)
}

// Smooth performs one-shot Whittaker smoothing of y and returns the fitted
// baseline together with the weights used. A nil weights slice uses unit
// weights everywhere.
func Smooth(y []float64, lam float64, diffOrder int, weights []float64) ([]float64, []float64, error) {
	system, err := NewSystem(len(y), diffOrder, lam)
	if err != nil {
		return nil, nil, err
	}
	if weights != nil {
		if err := system.Reweight(weights); err != nil {
			return nil, nil, err
		}
	}
	baseline, err := system.Solve(y)
	if err != nil {
		return nil, nil, err
	}
	return baseline, system.Weights(), nil
}
