package classify

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-baseline/cwt"
	"github.com/cwbudde/algo-baseline/pad"
	"github.com/cwbudde/algo-baseline/whittaker"
)

// FABCParams configures FABC.
type FABCParams struct {
	// Lam is the Whittaker smoothing parameter; larger values give
	// smoother baselines. Non-positive reverts to 1e6.
	Lam float64

	// Scale is the Haar wavelet scale and should roughly match the FWHM of
	// the peaks. Zero or negative derives it from the data.
	Scale int

	// NumStd scales the power threshold. Non-positive reverts to 3.
	NumStd float64

	// DiffOrder is the order of the difference penalty. Non-positive
	// reverts to 2.
	DiffOrder int

	// Pad selects how edges are extended before the wavelet transform.
	Pad pad.Options
}

// DefaultFABCParams returns the standard FABC configuration.
func DefaultFABCParams() FABCParams {
	return FABCParams{
		Lam:       1e6,
		NumStd:    3,
		DiffOrder: 2,
	}
}

// FABC is fully automatic baseline correction. It thresholds the squared
// Haar wavelet transform of the signal, a robust estimate of the squared
// first derivative, the same way Dietrich thresholds the power spectrum, and
// reconstructs the baseline by Whittaker smoothing with the mask as weights.
// FABC never uses x-values, so unlike the other classifiers it takes none.
func FABC(data, weights []float64, p FABCParams) (Result, error) {
	y, _, weightMask, _, _, err := setup(data, nil, weights)
	if err != nil {
		return Result{}, err
	}
	n := len(y)

	lam := p.Lam
	if lam <= 0 {
		lam = 1e6
	}
	scale := p.Scale
	if scale <= 0 {
		scale = defaultHalfWindow(y)
	}
	numStd := p.NumStd
	if numStd <= 0 {
		numStd = 3
	}
	diffOrder := p.DiffOrder
	if diffOrder <= 0 {
		diffOrder = 2
	}

	halfWindow := scale * 2
	padded, err := pad.Edges(y, halfWindow, p.Pad)
	if err != nil {
		return Result{}, err
	}
	coeffs, err := cwt.Transform(padded, cwt.Haar, float64(scale))
	if err != nil {
		return Result{}, err
	}
	deriv := coeffs[halfWindow : halfWindow+n]
	power := make([]float64, n)
	vecmath.MulBlock(power, deriv, deriv)

	mask, warnings := iterThreshold(power, numStd)
	mask = andMask(removeSinglePoints(mask), weightMask)

	maskWeights := make([]float64, n)
	for i, m := range mask {
		if m {
			maskWeights[i] = 1
		}
	}
	baseline, finalWeights, err := whittaker.Smooth(y, lam, diffOrder, maskWeights)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Baseline: baseline,
		Mask:     mask,
		Weights:  finalWeights,
		Warnings: warnings,
	}, nil
}
