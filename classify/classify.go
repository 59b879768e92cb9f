// Package classify partitions the samples of a 1-D signal into baseline and
// peak points and reconstructs a smooth baseline estimate from the
// classification.
//
// Six classifiers share one contract: given the measured data, optional
// x-values, and an optional weight vector whose zeros force points to be
// treated as peaks, each returns a Result holding the reconstructed baseline
// and per-algorithm diagnostics. The algorithms differ in the statistic they
// threshold:
//
//   - Golotvin: rolling range (grey dilation minus erosion)
//   - Dietrich: squared first difference of the smoothed signal
//   - StdDistribution: rolling standard deviation, bimodal split
//   - FastChrom: rolling standard deviation, percentile threshold
//   - CWTBR: continuous wavelet transform at a minimum-entropy scale
//   - FABC: Haar wavelet transform power with Whittaker smoothing
//
// Parameters come in per-algorithm structs; start from the matching
// DefaultXParams value rather than a zero struct. Non-fatal conditions are
// reported through Result.Warnings and computation continues with a
// documented fallback.
package classify

import (
	"errors"

	"github.com/cwbudde/algo-baseline/internal/core"
	"github.com/cwbudde/algo-baseline/internal/smooth"
	"github.com/cwbudde/algo-baseline/pad"
)

// Errors returned by all classifiers.
var (
	ErrEmptyData      = errors.New("classify: empty data")
	ErrLengthMismatch = errors.New("classify: x, weights, and data lengths must match")
)

// Warning is a non-fatal condition encountered during classification. The
// computation continues with a degenerate but usable fallback.
type Warning string

// Warnings reported by the classifiers.
const (
	WarnNoBaselinePoints Warning = "no baseline points found"
	WarnNoPeakPoints     Warning = "no peak points found"
	WarnFewPoints        Warning = "not enough baseline points for the statistic; threshold multiplier is likely too low"
	WarnDegenerateFit    Warning = "histogram fit degenerated; falling back to the unrefined threshold"
)

// Result is the outcome of one classification and reconstruction run.
type Result struct {
	// Baseline is the reconstructed baseline, same length as the input.
	Baseline []float64

	// Mask marks baseline points true and peak points false.
	Mask []bool

	// Coef holds polynomial coefficients in increasing order, converted to
	// the caller's x-domain. Only set when requested.
	Coef []float64

	// TolHistory records the relative change of each reweighting iteration.
	// A final entry above the tolerance means the fit did not converge.
	TolHistory []float64

	// Weights is the final weight vector of algorithms that end in a
	// penalized solve.
	Weights []float64

	// BestScale is the wavelet scale selected by the entropy sweep.
	BestScale float64

	Warnings []Warning
}

// setup validates the shared inputs. The returned x-values are mapped onto
// [-1, 1] for numerically stable polynomial fits; lo and hi preserve the
// original domain for coefficient conversion. The weight mask is true
// wherever the caller's weight is non-zero.
func setup(data, x, weights []float64) (y, xs []float64, weightMask []bool, lo, hi float64, err error) {
	n := len(data)
	if n == 0 {
		return nil, nil, nil, 0, 0, ErrEmptyData
	}

	y = append([]float64(nil), data...)

	if x == nil {
		xs = core.Linspace(-1, 1, n)
		lo, hi = -1, 1
	} else {
		if len(x) != n {
			return nil, nil, nil, 0, 0, ErrLengthMismatch
		}
		lo, hi = core.GetDomain(x)
		xs = core.MapDomain(x, lo, hi, -1, 1)
	}

	weightMask = make([]bool, n)
	if weights == nil {
		for i := range weightMask {
			weightMask[i] = true
		}
	} else {
		if len(weights) != n {
			return nil, nil, nil, 0, 0, ErrLengthMismatch
		}
		for i, w := range weights {
			weightMask[i] = w != 0
		}
	}

	return y, xs, weightMask, lo, hi, nil
}

// defaultHalfWindow is the data-driven fallback for rolling-statistic
// half-windows: half the stabilized grey-dilation window, rounded up.
func defaultHalfWindow(y []float64) int {
	return (smooth.OptimizeWindow(y) + 1) / 2
}

// andMask combines a computed mask with the caller's weight mask.
func andMask(mask, weightMask []bool) []bool {
	out := make([]bool, len(mask))
	for i := range mask {
		out[i] = mask[i] && weightMask[i]
	}
	return out
}

// smoothBaseline applies the interpolate-then-smooth policy: the rough
// baseline is padded and run through a moving average of 2*halfWindow+1
// points. A half-window of zero returns the rough baseline untouched.
func smoothBaseline(rough []float64, halfWindow int, opts pad.Options) ([]float64, error) {
	if halfWindow <= 0 {
		return append([]float64(nil), rough...), nil
	}
	padded, err := pad.Edges(rough, halfWindow, opts)
	if err != nil {
		return nil, err
	}
	return smooth.UniformFilter(padded, halfWindow), nil
}
