// Package cwt computes single-scale continuous wavelet transforms of sampled
// signals. The transform is the "same"-mode convolution of the signal with a
// reversed, scale-dependent wavelet kernel; the convolution runs through an
// FFT so that large scales stay cheap.
package cwt

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Errors returned by transform functions.
var (
	ErrEmptyInput   = errors.New("cwt: empty input")
	ErrInvalidScale = errors.New("cwt: scale must be > 0")
)

// smallest normal float64, used to keep log terms finite
const tiny = 2.2250738585072014e-308

// Wavelet generates a kernel of the given number of points at a scale.
type Wavelet func(points int, scale float64) []float64

// Ricker returns the Ricker (Mexican hat) wavelet, the negative normalized
// second derivative of a Gaussian, centered on the kernel.
func Ricker(points int, scale float64) []float64 {
	out := make([]float64, points)
	amp := 2 / (math.Sqrt(3*scale) * math.Pow(math.Pi, 0.25))
	widthSq := scale * scale
	for i := range out {
		x := float64(i) - float64(points-1)/2
		out[i] = amp * (1 - x*x/widthSq) * math.Exp(-x*x/(2*widthSq))
	}
	return out
}

// Haar returns a Haar wavelet centered on the kernel. The weighting keeps
// the kernel antisymmetric for odd scales as well, and the 1/sqrt(scale)
// factor normalizes across scales.
func Haar(points int, scale float64) []float64 {
	out := make([]float64, points)
	norm := 1 / math.Sqrt(scale)
	for i := range out {
		x := float64(i) - float64(points-1)/2
		switch {
		case x > -scale/2 && x < 0:
			out[i] = norm
		case x > 0 && x < scale/2:
			out[i] = -norm
		}
	}
	return out
}

// Transform convolves data with the reversed wavelet kernel at one scale and
// returns the centered (same-length) portion. The kernel length is
// min(10*scale, len(data)).
func Transform(data []float64, wavelet Wavelet, scale float64) ([]float64, error) {
	n := len(data)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	if scale <= 0 {
		return nil, ErrInvalidScale
	}

	points := int(10 * scale)
	if points > n {
		points = n
	}
	if points < 1 {
		points = 1
	}
	kernel := wavelet(points, scale)

	// reversed kernel, matching convolution rather than correlation
	reversed := make([]float64, len(kernel))
	for i, v := range kernel {
		reversed[len(kernel)-1-i] = v
	}

	full, err := fftConvolve(data, reversed)
	if err != nil {
		return nil, err
	}

	start := (len(kernel) - 1) / 2
	out := make([]float64, n)
	copy(out, full[start:start+n])
	return out, nil
}

// fftConvolve returns the full linear convolution of a and b.
func fftConvolve(a, b []float64) ([]float64, error) {
	n := len(a) + len(b) - 1
	fftSize := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("cwt: failed to create FFT plan: %w", err)
	}

	aPadded := make([]complex128, fftSize)
	for i, v := range a {
		aPadded[i] = complex(v, 0)
	}
	aFreq := make([]complex128, fftSize)
	if err := plan.Forward(aFreq, aPadded); err != nil {
		return nil, fmt.Errorf("cwt: forward FFT failed: %w", err)
	}

	bPadded := make([]complex128, fftSize)
	for i, v := range b {
		bPadded[i] = complex(v, 0)
	}
	bFreq := make([]complex128, fftSize)
	if err := plan.Forward(bFreq, bPadded); err != nil {
		return nil, fmt.Errorf("cwt: forward FFT failed: %w", err)
	}

	for i := range aFreq {
		aFreq[i] *= bFreq[i]
	}

	resultTime := make([]complex128, fftSize)
	if err := plan.Inverse(resultTime, aFreq); err != nil {
		return nil, fmt.Errorf("cwt: inverse FFT failed: %w", err)
	}

	result := make([]float64, n)
	for i := range result {
		result[i] = real(resultTime[i])
	}
	return result, nil
}

// ShannonEntropy returns the Shannon entropy of the magnitude distribution
// of values, the criterion used to pick a transform scale.
func ShannonEntropy(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += math.Abs(v)
	}
	if total == 0 {
		return 0
	}

	var entropy float64
	for _, v := range values {
		p := math.Abs(v) / total
		entropy -= p * math.Log(p+tiny)
	}
	return entropy
}

func nextPowerOf2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}
