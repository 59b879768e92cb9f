package classify

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/cwbudde/algo-baseline/cwt"
	"github.com/cwbudde/algo-baseline/internal/core"
	"github.com/cwbudde/algo-baseline/internal/morph"
	"github.com/cwbudde/algo-baseline/internal/polyfit"
	"github.com/cwbudde/algo-baseline/pad"
)

// CWTBRParams configures CWTBR.
type CWTBRParams struct {
	// PolyOrder is the order of the fitted baseline polynomial. Negative
	// reverts to 5.
	PolyOrder int

	// NumStd scales the residual threshold during the iterative fit.
	// Non-positive reverts to 1.5.
	NumStd float64

	// MaxScale bounds the wavelet scale sweep. Zero or negative reverts
	// to 50.
	MaxScale int

	// MaskHalfWindow sets the erosion window applied to the initial
	// wavelet mask. Negative reverts to 2.
	MaskHalfWindow int

	// MaxIter bounds the iterative polynomial fit. Negative reverts to 50.
	MaxIter int

	// Tol is the relative baseline change that stops the fit.
	// Non-positive reverts to 1e-3.
	Tol float64

	// Pad selects how edges are extended before the wavelet transform.
	Pad pad.Options
}

// DefaultCWTBRParams returns the standard CWT-BR configuration.
func DefaultCWTBRParams() CWTBRParams {
	return CWTBRParams{
		PolyOrder:      5,
		NumStd:         1.5,
		MaxScale:       50,
		MaskHalfWindow: 2,
		MaxIter:        50,
		Tol:            1e-3,
	}
}

// CWTBR implements continuous wavelet transform baseline recognition.
// The Ricker wavelet transform is evaluated over increasing scales until the
// Shannon entropy of the coefficients passes its first minimum. A Gaussian is
// fitted to the histogram of the selected coefficients to separate the noise
// distribution from the peaks, giving the initial baseline mask, which is
// then refined by iterative polynomial fitting with residual thresholding.
func CWTBR(data, x, weights []float64, p CWTBRParams) (Result, error) {
	y, xs, weightMask, _, _, err := setup(data, x, weights)
	if err != nil {
		return Result{}, err
	}
	n := len(y)

	polyOrder := p.PolyOrder
	if polyOrder < 0 {
		polyOrder = 5
	}
	if polyOrder > n-1 {
		polyOrder = n - 1
	}
	numStd := p.NumStd
	if numStd <= 0 {
		numStd = 1.5
	}
	maxScale := p.MaxScale
	if maxScale <= 0 {
		maxScale = 50
	}
	maskHalfWindow := p.MaskHalfWindow
	if maskHalfWindow < 0 {
		maskHalfWindow = 2
	}
	maxIter := p.MaxIter
	if maxIter < 0 {
		maxIter = 50
	}
	tol := p.Tol
	if tol <= 0 {
		tol = 1e-3
	}

	vander := polyfit.Vander(xs, polyOrder)

	// Scale y onto [-1, 1] so the residual fit is more numerically stable;
	// the final baseline is mapped back before returning.
	yLo, yHi := core.GetDomain(y)
	mapped := core.MapDomain(y, yLo, yHi, -1, 1)

	halfWindow := maxScale * 2
	padded, err := pad.Edges(mapped, halfWindow, p.Pad)
	if err != nil {
		return Result{}, err
	}

	// Low scales are dominated by noise, so start the sweep above them.
	minScale := n / 500
	if minScale < 2 {
		minScale = 2
	}
	if minScale > maxScale {
		minScale = maxScale
	}
	waveletCWT, bestScale, err := entropySweep(padded, n, halfWindow, minScale, maxScale)
	if err != nil {
		return Result{}, err
	}
	absWavelet := make([]float64, n)
	for i, v := range waveletCWT {
		absWavelet[i] = math.Abs(v)
	}

	sigmaOpt, numSigma, warnings := fitNoiseSigma(waveletCWT)

	initial := make([]bool, n)
	for i, v := range absWavelet {
		initial[i] = v < numSigma*sigmaOpt
	}
	wavMask := erodeReflect(initial, maskHalfWindow)
	wavMask = andMask(wavMask, weightMask)

	checkHalfWindow := n / 200
	baselineOld := mapped
	baseline := mapped
	mask := append([]bool(nil), wavMask...)
	tolHistory := make([]float64, 0, maxIter+1)
	for i := 0; i <= maxIter; i++ {
		coef, err := polyfit.FitMasked(vander, mapped, mask)
		if err != nil {
			warnings = append(warnings, WarnFewPoints)
			break
		}
		baseline = polyfit.Eval(vander, coef)

		residual := make([]float64, n)
		for j := range residual {
			residual[j] = mapped[j] - baseline[j]
		}
		threshold := numStd * populationStd(residual)
		for j, r := range residual {
			if r > threshold {
				mask[j] = false
			}
		}

		// Refit after discarding outliers so negative peaks cannot drag
		// the polynomial down.
		coef, err = polyfit.FitMasked(vander, mapped, mask)
		if err != nil {
			warnings = append(warnings, WarnFewPoints)
			break
		}
		baseline = polyfit.Eval(vander, coef)

		difference := core.RelativeDifference(baselineOld, baseline)
		tolHistory = append(tolHistory, difference)
		if difference < tol {
			break
		}
		baselineOld = baseline

		below := make([]bool, n)
		for j := range below {
			below[j] = mapped[j] < baseline[j]
		}
		for j, added := range morph.BinaryErode(below, checkHalfWindow) {
			if added {
				mask[j] = true
			}
		}
	}

	return Result{
		Baseline:   core.MapDomain(baseline, -1, 1, yLo, yHi),
		Mask:       mask,
		TolHistory: tolHistory,
		BestScale:  float64(bestScale),
		Warnings:   warnings,
	}, nil
}

// entropySweep transforms the padded signal at each scale and stops at the
// first scale whose Shannon entropy rises again after falling, returning the
// coefficients of that scale restricted to the unpadded region.
func entropySweep(padded []float64, n, halfWindow, minScale, maxScale int) ([]float64, int, error) {
	shannonOld := math.Inf(-1)
	shannonCurrent := math.Inf(-1)
	var waveletCWT []float64
	bestScale := minScale
	for scale := minScale; scale <= maxScale; scale++ {
		full, err := cwt.Transform(padded, cwt.Ricker, float64(scale))
		if err != nil {
			return nil, 0, err
		}
		waveletCWT = full[halfWindow : halfWindow+n]
		bestScale = scale
		entropy := cwt.ShannonEntropy(waveletCWT)
		if shannonCurrent < shannonOld && entropy > shannonCurrent {
			break
		}
		shannonOld = shannonCurrent
		shannonCurrent = entropy
	}
	return waveletCWT, bestScale, nil
}

// fitNoiseSigma estimates the standard deviation of the noise distribution
// of the wavelet coefficients by fitting a zero-centered Gaussian to their
// histogram, rebinning until the bin count stabilizes. The returned
// multiplier widens with the share of histogram area outside the Gaussian.
func fitNoiseSigma(waveletCWT []float64) (sigmaOpt, numSigma float64, warnings []Warning) {
	wstd := populationStd(waveletCWT)
	if wstd == 0 {
		// Flat coefficients carry no peak information.
		return 0, math.Inf(1), []Warning{WarnDegenerateFit}
	}

	lo, hi := core.GetDomain(waveletCWT)
	ptpMultiple := 8 * (hi - lo)

	numBins := 200
	counts, centers := histogram(waveletCWT, numBins)
	params := []float64{floats.Max(counts), math.Log10(0.2 * wstd)}
	for i := 0; i < 10; i++ {
		params = fitGaussian(centers, counts, params)
		sigmaOpt = math.Pow(10, params[1])

		newBins := int(math.Ceil(ptpMultiple / sigmaOpt))
		if newBins < 1 {
			newBins = 1
		}
		// Keeps a runaway sigma estimate from requesting absurd bin counts.
		if newBins > 100000 {
			newBins = 100000
		}
		if core.RelativeDifferenceScalar(float64(numBins), float64(newBins)) < 0.05 {
			break
		}
		numBins = newBins
		counts, centers = histogram(waveletCWT, numBins)
	}

	var gausArea, totalArea float64
	for i := 1; i < len(centers); i++ {
		area := 0.5 * (counts[i] + counts[i-1]) * (centers[i] - centers[i-1])
		totalArea += area
		if math.Abs(centers[i]) < 3*sigmaOpt && math.Abs(centers[i-1]) < 3*sigmaOpt {
			gausArea += area
		}
	}
	if gausArea <= 0 {
		return sigmaOpt, 3, []Warning{WarnDegenerateFit}
	}
	numSigma = 0.6 + 10*((totalArea-gausArea)/gausArea)
	return sigmaOpt, numSigma, nil
}

// fitGaussian fits height and log10-sigma of a zero-centered Gaussian to the
// histogram bins above a fifth of the peak count, minimizing the squared
// error with Nelder-Mead.
func fitGaussian(centers, counts []float64, initial []float64) []float64 {
	cutoff := floats.Max(counts) / 5
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			height := p[0]
			sigma := math.Pow(10, p[1])
			var sse float64
			for i, c := range counts {
				if c <= cutoff {
					continue
				}
				d := c - height*math.Exp(-centers[i]*centers[i]/(2*sigma*sigma))
				sse += d * d
			}
			return sse
		},
	}
	result, err := optimize.Minimize(problem, append([]float64(nil), initial...), nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return initial
	}
	return result.X
}

// histogram counts values into equal-width bins spanning their range, with
// the last bin closed on both sides, and returns the counts with the bin
// centers.
func histogram(values []float64, bins int) (counts, centers []float64) {
	lo, hi := core.GetDomain(values)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)
	counts = make([]float64, bins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	centers = make([]float64, bins)
	for i := range centers {
		centers[i] = lo + width*(float64(i)+0.5)
	}
	return counts, centers
}

// erodeReflect erodes the mask with a window of 2*halfWindow+1 points using
// reflected borders, so edge entries are judged against mirrored neighbors
// instead of an implicit false boundary.
func erodeReflect(mask []bool, halfWindow int) []bool {
	n := len(mask)
	if halfWindow <= 0 || n == 1 {
		return append([]bool(nil), mask...)
	}
	padded := make([]bool, n+2*halfWindow)
	for i := range padded {
		j := i - halfWindow
		for j < 0 || j > n-1 {
			if j < 0 {
				j = -j
			} else {
				j = 2*(n-1) - j
			}
		}
		padded[i] = mask[j]
	}
	return morph.BinaryErode(padded, halfWindow)[halfWindow : halfWindow+n]
}

// populationStd is the standard deviation with no degrees-of-freedom
// correction.
func populationStd(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= n
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / n)
}
