package classify

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-baseline/internal/morph"
	"github.com/cwbudde/algo-baseline/internal/smooth"
	"github.com/cwbudde/algo-baseline/pad"
)

// StdDistributionParams configures StdDistribution.
type StdDistributionParams struct {
	// HalfWindow sets the rolling standard deviation window to
	// 2*HalfWindow+1 points and should roughly match the FWHM of the
	// peaks. Zero or negative derives it from the data.
	HalfWindow int

	// InterpHalfWindow is the averaging window flanking each peak segment.
	// Negative reverts to 5.
	InterpHalfWindow int

	// FillHalfWindow dilates each detected peak point by this many
	// neighbors on each side. Negative reverts to 3.
	FillHalfWindow int

	// NumStd scales the noise threshold. Non-positive reverts to 1.1.
	NumStd float64

	// SmoothHalfWindow controls the final moving average. Negative reuses
	// HalfWindow; zero skips smoothing.
	SmoothHalfWindow int

	// Pad selects how edges are extended for the final smoothing pass.
	Pad pad.Options
}

// DefaultStdDistributionParams returns the standard configuration.
func DefaultStdDistributionParams() StdDistributionParams {
	return StdDistributionParams{
		InterpHalfWindow: 5,
		FillHalfWindow:   3,
		NumStd:           1.1,
		SmoothHalfWindow: -1,
	}
}

// StdDistribution splits the rolling standard deviations of the signal into
// a noise distribution and a peak distribution by repeatedly halving the
// median, then classifies as peak any point whose rolling deviation exceeds
// NumStd times the noise median. Detected peak points are dilated by
// FillHalfWindow before interpolation.
func StdDistribution(data, x, weights []float64, p StdDistributionParams) (Result, error) {
	y, xs, weightMask, _, _, err := setup(data, x, weights)
	if err != nil {
		return Result{}, err
	}
	n := len(y)

	halfWindow := p.HalfWindow
	if halfWindow <= 0 {
		halfWindow = defaultHalfWindow(y)
	}
	interpHalfWindow := p.InterpHalfWindow
	if interpHalfWindow < 0 {
		interpHalfWindow = 5
	}
	fillHalfWindow := p.FillHalfWindow
	if fillHalfWindow < 0 {
		fillHalfWindow = 3
	}
	numStd := p.NumStd
	if numStd <= 0 {
		numStd = 1.1
	}
	smoothHalfWindow := p.SmoothHalfWindow
	if smoothHalfWindow < 0 {
		smoothHalfWindow = halfWindow
	}

	// Reflect padding keeps the edge windows populated with real noise so
	// the rolling deviation stays meaningful there.
	padded, err := pad.Edges(y, halfWindow, pad.Options{Mode: pad.ModeReflect})
	if err != nil {
		return Result{}, err
	}
	std := smooth.RollingStd(padded, halfWindow, 1)[halfWindow : halfWindow+n]

	noiseStd := splitNoiseMedian(std)

	exceeds := make([]bool, n)
	for i, v := range std {
		exceeds[i] = v > numStd*noiseStd
	}
	dilated := morph.BinaryDilate(exceeds, fillHalfWindow)
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = !dilated[i] && weightMask[i]
	}

	rough, warnings := averagedInterp(xs, y, mask, interpHalfWindow)
	baseline, err := smoothBaseline(rough, smoothHalfWindow, p.Pad)
	if err != nil {
		return Result{}, err
	}
	return Result{Baseline: baseline, Mask: mask, Warnings: warnings}, nil
}

// splitNoiseMedian isolates the noise distribution of the rolling standard
// deviations: the median is replaced by the median of all values below twice
// it until the ratio of successive medians reaches 0.999.
func splitNoiseMedian(std []float64) float64 {
	med := median(std)
	med2, ok := medianBelow(std, 2*med)
	if !ok {
		return med
	}
	for med2/med < 0.999 {
		med = med2
		med2, ok = medianBelow(std, 2*med)
		if !ok {
			return med
		}
	}
	return med2
}

// median returns the middle value of a copy of values, averaging the two
// central entries for even lengths.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func medianBelow(values []float64, limit float64) (float64, bool) {
	subset := make([]float64, 0, len(values))
	for _, v := range values {
		if v < limit {
			subset = append(subset, v)
		}
	}
	if len(subset) == 0 {
		return 0, false
	}
	return median(subset), true
}
