package testutil

import (
	"math"
	"math/rand"
)

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude]
// with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// GaussianPeak adds a Gaussian of the given height, center, and width to dst
// and returns it.
func GaussianPeak(dst []float64, height, center, sigma float64) []float64 {
	for i := range dst {
		d := float64(i) - center
		dst[i] += height * math.Exp(-d*d/(2*sigma*sigma))
	}
	return dst
}

// Spectrum builds a synthetic measurement: a constant baseline with a single
// Gaussian peak in the middle and reproducible uniform noise.
func Spectrum(length int, baseline, peakHeight, peakSigma, noiseAmplitude float64, seed int64) []float64 {
	out := GaussianPeak(DC(baseline, length), peakHeight, float64(length)/2, peakSigma)
	noise := DeterministicNoise(seed, noiseAmplitude, length)
	for i := range out {
		out[i] += noise[i]
	}
	return out
}
