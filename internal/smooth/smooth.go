// Package smooth holds the rolling statistics shared by the point
// classifiers: a fixed-window incremental standard deviation, a uniform
// (moving average) filter, and a heuristic for picking a default
// half-window from the data itself.
package smooth

import (
	"math"

	"github.com/cwbudde/algo-baseline/internal/core"
	"github.com/cwbudde/algo-baseline/internal/morph"
)

// RollingStd computes the standard deviation of every centered window of
// 2*halfWindow+1 points using an O(n) incremental update rather than a
// per-window recomputation. The input should be padded by halfWindow on
// both sides; only the output indices halfWindow through
// len(data)-halfWindow-1 are exact, and callers are expected to discard the
// rest. The trailing half-window in particular follows the historical
// behavior of emptying the window and is unreliable.
func RollingStd(data []float64, halfWindow, ddof int) []float64 {
	windowSize := 2*halfWindow + 1
	n := len(data)
	out := make([]float64, n)
	if n == 0 || windowSize > n {
		return out
	}
	if windowSize-ddof <= 0 {
		return out
	}

	squaredDiff := make([]float64, n)
	mean := data[0]

	// fill the first window
	for i := 1; i < windowSize; i++ {
		val := data[i]
		sizeFactor := float64(i) / float64(i+1)
		squaredDiff[i] = squaredDiff[i-1] + 2*sizeFactor*(val-mean)*(val-mean)
		mean = mean*sizeFactor + val/float64(i+1)
	}
	// halving the filled-window accumulator realigns the interior values
	squaredDiff[halfWindow] = squaredDiff[windowSize-1] / 2

	for j := halfWindow + 1; j < n-halfWindow; j++ {
		oldVal := data[j-halfWindow-1]
		newVal := data[j+halfWindow]
		valDiff := newVal - oldVal

		newMean := mean + valDiff/float64(windowSize)
		squaredDiff[j] = squaredDiff[j-1] + valDiff*(oldVal+newVal-mean-newMean)
		mean = newMean
	}

	// empty the last half-window; these values are discarded by callers
	size := windowSize
	for k := n - halfWindow + 1; k < n; k++ {
		val := data[k]
		sizeFactor := float64(size) / float64(size-1)
		squaredDiff[k] = squaredDiff[k-1] + 2*sizeFactor*(val-mean)*(val-mean)
		mean = mean*sizeFactor + val/float64(size-1)
		size--
	}

	norm := float64(windowSize - ddof)
	for i, v := range squaredDiff {
		if v < 0 {
			v = 0
		}
		out[i] = math.Sqrt(v / norm)
	}
	return out
}

// UniformFilter returns the moving average of padded over windows of
// 2*halfWindow+1 points, emitting only the positions whose window lies
// fully inside the input: the output is shorter than the input by
// 2*halfWindow. Callers pad first and so get one output per original point.
func UniformFilter(padded []float64, halfWindow int) []float64 {
	if halfWindow <= 0 {
		out := make([]float64, len(padded))
		copy(out, padded)
		return out
	}

	windowSize := 2*halfWindow + 1
	n := len(padded) - 2*halfWindow
	if n <= 0 {
		return nil
	}

	cumulative := make([]float64, len(padded)+1)
	for i, v := range padded {
		cumulative[i+1] = cumulative[i] + v
	}

	out := make([]float64, n)
	scale := 1 / float64(windowSize)
	for i := range out {
		out[i] = (cumulative[i+windowSize] - cumulative[i]) * scale
	}
	return out
}

// OptimizeWindow estimates a usable half-window for rolling statistics by
// growing the window until the grey dilation of the data stops changing.
// The estimate is rough but scales with the data size, which makes it a
// serviceable default when the caller knows nothing about peak widths.
func OptimizeWindow(data []float64) int {
	const (
		maxHits   = 3
		windowTol = 1e-6
	)

	maxHalfWindow := (len(data) - 1) / 2
	opt := 1
	hits := 0
	last := morph.GreyDilate(data, 1)
	for halfWindow := 2; halfWindow <= maxHalfWindow; halfWindow++ {
		dilated := morph.GreyDilate(data, halfWindow)
		if core.RelativeDifference(last, dilated) < windowTol {
			hits++
			if hits >= maxHits {
				opt = halfWindow - maxHits
				break
			}
		} else {
			hits = 0
			opt = halfWindow
		}
		last = dilated
	}

	if opt < 1 {
		opt = 1
	}
	return opt
}
