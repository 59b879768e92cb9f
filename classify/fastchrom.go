package classify

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-baseline/internal/smooth"
	"github.com/cwbudde/algo-baseline/pad"
)

// FastChromParams configures FastChrom.
type FastChromParams struct {
	// HalfWindow sets the rolling standard deviation window to
	// 2*HalfWindow+1 points and should roughly match the FWHM of the
	// peaks. Zero or negative derives it from the data.
	HalfWindow int

	// Threshold classifies points whose rolling standard deviation falls
	// below it as baseline. NaN picks the 15th percentile of the rolling
	// standard deviations.
	Threshold float64

	// MinFWHM triggers re-interpolation of any region where the baseline
	// exceeds the data for more than this many consecutive points. Zero or
	// negative reverts to 2*HalfWindow.
	MinFWHM int

	// InterpHalfWindow is the averaging window flanking each peak segment.
	// Negative reverts to 5.
	InterpHalfWindow int

	// SmoothHalfWindow controls the final moving average. Negative reuses
	// HalfWindow; zero skips smoothing.
	SmoothHalfWindow int

	// MaxIter bounds the baseline-above-data fill iterations. Negative
	// reverts to 100.
	MaxIter int

	// Pad selects how edges are extended for the final smoothing pass.
	Pad pad.Options
}

// DefaultFastChromParams returns the standard FastChrom configuration.
func DefaultFastChromParams() FastChromParams {
	return FastChromParams{
		Threshold:        math.NaN(),
		InterpHalfWindow: 5,
		SmoothHalfWindow: -1,
		MaxIter:          100,
	}
}

// FastChrom classifies as baseline every point whose rolling standard
// deviation stays below the threshold, then repairs regions where the
// interpolated baseline ends up above the data by promoting the lowest point
// of each offending region to a baseline point and re-interpolating.
func FastChrom(data, x, weights []float64, p FastChromParams) (Result, error) {
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
	smoothHalfWindow := p.SmoothHalfWindow
	if smoothHalfWindow < 0 {
		smoothHalfWindow = halfWindow
	}
	minFWHM := p.MinFWHM
	if minFWHM <= 0 {
		minFWHM = 2 * halfWindow
	}
	maxIter := p.MaxIter
	if maxIter < 0 {
		maxIter = 100
	}

	padded, err := pad.Edges(y, halfWindow, pad.Options{Mode: pad.ModeReflect})
	if err != nil {
		return Result{}, err
	}
	std := smooth.RollingStd(padded, halfWindow, 1)[halfWindow : halfWindow+n]

	threshold := p.Threshold
	if math.IsNaN(threshold) {
		threshold = percentile(std, 15)
	}

	mask := make([]bool, n)
	for i, v := range std {
		mask[i] = v < threshold
	}
	mask = andMask(removeSinglePoints(mask), weightMask)

	rough, warnings := averagedInterp(xs, y, mask, interpHalfWindow)

	trueCount := 0
	for _, m := range mask {
		if m {
			trueCount++
		}
	}
	// Fixing peak regions only makes sense when both kinds exist.
	if trueCount > 0 && trueCount < n {
		segs := findPeakSegments(mask)
		for iter := 0; iter < maxIter; iter++ {
			modified := false
			for _, seg := range segs {
				if promoteLowestPoint(y, rough, mask, seg, minFWHM) {
					modified = true
				}
			}
			if !modified {
				break
			}
			rough, _ = averagedInterp(xs, y, mask, interpHalfWindow)
		}
	}

	baseline, err := smoothBaseline(rough, smoothHalfWindow, p.Pad)
	if err != nil {
		return Result{}, err
	}
	return Result{Baseline: baseline, Mask: mask, Warnings: warnings}, nil
}

// promoteLowestPoint checks one peak segment for a run of more than minFWHM
// consecutive points where the baseline sits above the data. If found, the
// point of the segment where the baseline overshoots the most becomes a
// baseline point so the next interpolation pass pulls the line down.
func promoteLowestPoint(y, baseline []float64, mask []bool, seg segment, minFWHM int) bool {
	below := make([]bool, seg.end-seg.start+1)
	for i := range below {
		below[i] = baseline[seg.start+i] < y[seg.start+i]
	}
	tooWide := false
	for _, run := range findPeakSegments(below) {
		if run.end-run.start > minFWHM {
			tooWide = true
			break
		}
	}
	if !tooWide {
		return false
	}
	lowest := seg.start
	lowestDiff := math.Inf(1)
	for i := seg.start; i <= seg.end; i++ {
		if d := y[i] - baseline[i]; d < lowestDiff {
			lowestDiff = d
			lowest = i
		}
	}
	mask[lowest] = true
	return true
}

// percentile computes the p-th percentile of values using linear
// interpolation between the closest ranks.
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
