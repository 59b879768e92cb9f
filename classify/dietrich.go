package classify

import (
	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-baseline/internal/core"
	"github.com/cwbudde/algo-baseline/internal/polyfit"
	"github.com/cwbudde/algo-baseline/internal/smooth"
	"github.com/cwbudde/algo-baseline/pad"
)

// DietrichParams configures Dietrich.
type DietrichParams struct {
	// SmoothHalfWindow sets the pre-smoothing moving average. Negative
	// derives ceil(N/256) from the data; zero skips smoothing.
	SmoothHalfWindow int

	// NumStd scales the power-spectrum threshold. Defaults to 3.
	NumStd float64

	// InterpHalfWindow is the averaging window flanking each peak segment.
	// Negative reverts to 5.
	InterpHalfWindow int

	// PolyOrder is the order of the refining polynomial. Negative reverts
	// to 5.
	PolyOrder int

	// MaxIter bounds the polynomial refit. Zero returns the interpolated
	// baseline without a polynomial stage; negative reverts to 50.
	MaxIter int

	// Tol is the relative coefficient change that stops the refit.
	// Non-positive reverts to 1e-3.
	Tol float64

	// ReturnCoef converts the final coefficients to the caller's x-domain
	// and stores them in Result.Coef.
	ReturnCoef bool

	// Pad selects how edges are extended before smoothing.
	Pad pad.Options
}

// DefaultDietrichParams returns the standard Dietrich configuration.
func DefaultDietrichParams() DietrichParams {
	return DietrichParams{
		SmoothHalfWindow: -1,
		NumStd:           3,
		InterpHalfWindow: 5,
		PolyOrder:        5,
		MaxIter:          50,
		Tol:              1e-3,
	}
}

// Dietrich classifies baseline points from the power spectrum of the data,
// the squared first difference of the smoothed signal. Points below an
// iteratively tightened mean plus NumStd standard deviations threshold are
// baseline. The interpolated baseline is then refined by repeatedly fitting
// a polynomial and replacing the interpolated sections with the fit.
func Dietrich(data, x, weights []float64, p DietrichParams) (Result, error) {
	y, xs, weightMask, lo, hi, err := setup(data, x, weights)
	if err != nil {
		return Result{}, err
	}
	n := len(y)

	smoothHalfWindow := p.SmoothHalfWindow
	if smoothHalfWindow < 0 {
		smoothHalfWindow = (n + 255) / 256
	}
	numStd := p.NumStd
	if numStd <= 0 {
		numStd = 3
	}
	interpHalfWindow := p.InterpHalfWindow
	if interpHalfWindow < 0 {
		interpHalfWindow = 5
	}
	polyOrder := p.PolyOrder
	if polyOrder < 0 {
		polyOrder = 5
	}
	if polyOrder > n-1 {
		polyOrder = n - 1
	}
	maxIter := p.MaxIter
	if maxIter < 0 {
		maxIter = 50
	}
	tol := p.Tol
	if tol <= 0 {
		tol = 1e-3
	}

	smoothY := y
	if smoothHalfWindow > 0 {
		padded, err := pad.Edges(y, smoothHalfWindow, p.Pad)
		if err != nil {
			return Result{}, err
		}
		smoothY = smooth.UniformFilter(padded, smoothHalfWindow)
	}

	diff := make([]float64, n)
	for i := 1; i < n; i++ {
		diff[i] = smoothY[i] - smoothY[i-1]
	}
	power := make([]float64, n)
	vecmath.MulBlock(power, diff, diff)

	mask, warnings := iterThreshold(power, numStd)
	mask = andMask(removeSinglePoints(mask), weightMask)

	rough, interpWarnings := averagedInterp(xs, y, mask, interpHalfWindow)
	warnings = append(warnings, interpWarnings...)

	result := Result{Mask: mask, Warnings: warnings}
	if maxIter == 0 {
		result.Baseline = rough
		return result, nil
	}

	fit, err := polyfit.NewFit(xs, polyOrder)
	if err != nil {
		return Result{}, err
	}
	coef, err := fit.Solve(rough)
	if err != nil {
		return Result{}, err
	}
	baseline := fit.Eval(coef)
	if maxIter > 1 {
		oldCoef := coef
		tolHistory := make([]float64, 0, maxIter-1)
		for i := 0; i < maxIter-1; i++ {
			for j, m := range mask {
				if m {
					rough[j] = baseline[j]
				}
			}
			coef, err = fit.Solve(rough)
			if err != nil {
				return Result{}, err
			}
			baseline = fit.Eval(coef)
			difference := core.RelativeDifference(oldCoef, coef)
			tolHistory = append(tolHistory, difference)
			if difference < tol {
				break
			}
			oldCoef = coef
		}
		result.TolHistory = tolHistory
	}
	if p.ReturnCoef {
		result.Coef = polyfit.ConvertDomain(coef, lo, hi)
	}
	result.Baseline = baseline
	return result, nil
}

// iterThreshold masks points above the mean plus numStd sample standard
// deviations of the power spectrum, recomputing the statistics over the
// surviving points until the mask is stable.
func iterThreshold(power []float64, numStd float64) ([]bool, []Warning) {
	n := len(power)
	threshold := stat.Mean(power, nil) + numStd*stat.StdDev(power, nil)
	mask := make([]bool, n)
	for i, v := range power {
		mask[i] = v < threshold
	}

	var warnings []Warning
	masked := make([]float64, 0, n)
	for {
		masked = masked[:0]
		for i, m := range mask {
			if m {
				masked = append(masked, power[i])
			}
		}
		if len(masked) < 2 {
			warnings = append(warnings, WarnFewPoints)
			break
		}
		threshold = stat.Mean(masked, nil) + numStd*stat.StdDev(masked, nil)
		changed := false
		for i, v := range power {
			keep := v < threshold
			if keep != mask[i] {
				changed = true
				mask[i] = keep
			}
		}
		if !changed {
			break
		}
	}
	return mask, warnings
}
