// Package pad extends signals past their edges so that rolling statistics
// and convolutions stay well behaved near the boundaries.
package pad

import "errors"

// Errors returned by padding functions.
var (
	ErrEmptyInput    = errors.New("pad: empty input")
	ErrInvalidLength = errors.New("pad: pad length must be >= 0")
)

// Mode selects how padded values are produced.
type Mode int

const (
	// ModeExtrapolate fits a line to the outermost ExtrapolateWindow points on
	// each side and extends it. This is the default.
	ModeExtrapolate Mode = iota

	// ModeReflect mirrors the signal about its edge samples without repeating
	// them: [a b c d] padded by 2 on the left becomes [c b | a b c d].
	ModeReflect

	// ModeEdge repeats the edge samples.
	ModeEdge

	// ModeConstant pads with ConstantValue.
	ModeConstant
)

// Options configures Edges.
type Options struct {
	Mode Mode

	// ExtrapolateWindow is the number of points used for the linear fit in
	// ModeExtrapolate. Zero or negative selects 2*padLength + 1.
	ExtrapolateWindow int

	// ConstantValue is the fill value for ModeConstant.
	ConstantValue float64
}

// Edges returns data extended by padLength values on both sides.
func Edges(data []float64, padLength int, opts Options) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if padLength < 0 {
		return nil, ErrInvalidLength
	}

	n := len(data)
	out := make([]float64, n+2*padLength)
	copy(out[padLength:], data)
	if padLength == 0 {
		return out, nil
	}

	switch opts.Mode {
	case ModeReflect:
		for i := 0; i < padLength; i++ {
			out[padLength-1-i] = data[reflectIndex(i+1, n)]
			out[padLength+n+i] = data[reflectIndex(n-2-i, n)]
		}
	case ModeEdge:
		for i := 0; i < padLength; i++ {
			out[i] = data[0]
			out[padLength+n+i] = data[n-1]
		}
	case ModeConstant:
		for i := 0; i < padLength; i++ {
			out[i] = opts.ConstantValue
			out[padLength+n+i] = opts.ConstantValue
		}
	default: // ModeExtrapolate
		window := opts.ExtrapolateWindow
		if window <= 0 {
			window = 2*padLength + 1
		}
		if window > n {
			window = n
		}
		extrapolateLeft(out[:padLength], data, window)
		extrapolateRight(out[padLength+n:], data, window)
	}

	return out, nil
}

// reflectIndex maps an out-of-range index into [0, n) by mirroring about the
// edge samples, cycling for pads wider than the signal.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// extrapolateLeft fills dst (the left pad, outermost value first) with a
// linear fit over the first window points of data.
func extrapolateLeft(dst, data []float64, window int) {
	slope, intercept := fitLine(data[:window])
	pad := len(dst)
	for i := range dst {
		// position i corresponds to x = i - pad relative to data[0]
		dst[i] = intercept + slope*float64(i-pad)
	}
}

// extrapolateRight fills dst (the right pad) from a linear fit over the last
// window points of data.
func extrapolateRight(dst, data []float64, window int) {
	tail := data[len(data)-window:]
	slope, intercept := fitLine(tail)
	for i := range dst {
		dst[i] = intercept + slope*float64(window+i)
	}
}

// fitLine returns the least-squares slope and intercept of data against the
// x-values 0..len(data)-1. A single point yields a flat line.
func fitLine(data []float64) (slope, intercept float64) {
	n := float64(len(data))
	if len(data) == 1 {
		return 0, data[0]
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range data {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
