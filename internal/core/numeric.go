package core

import "math"

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// Linspace fills a new slice with n evenly spaced values from start to stop,
// both endpoints included. A single point collapses to start.
func Linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	if n > 0 {
		out[n-1] = stop
	}
	return out
}

// GetDomain returns the minimum and maximum of data.
func GetDomain(data []float64) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// MapDomain linearly maps data from [oldLo, oldHi] onto [newLo, newHi] and
// returns the mapped copy. A degenerate source domain maps everything onto newLo.
func MapDomain(data []float64, oldLo, oldHi, newLo, newHi float64) []float64 {
	out := make([]float64, len(data))
	span := oldHi - oldLo
	if span == 0 {
		for i := range out {
			out[i] = newLo
		}
		return out
	}
	scale := (newHi - newLo) / span
	for i, v := range data {
		out[i] = newLo + (v-oldLo)*scale
	}
	return out
}

// Norm returns the Euclidean norm of data.
func Norm(data []float64) float64 {
	var sum float64
	for _, v := range data {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// RelativeDifference returns norm(b-a) / norm(a), the convergence criterion
// shared by the iterative fitting loops. A zero-norm reference is treated as
// having norm 1 so that an exactly zero baseline does not divide by zero.
func RelativeDifference(a, b []float64) float64 {
	var num float64
	for i := range a {
		d := b[i] - a[i]
		num += d * d
	}
	den := Norm(a)
	if den == 0 {
		den = 1
	}
	return math.Sqrt(num) / den
}

// RelativeDifferenceScalar is RelativeDifference for single values.
func RelativeDifferenceScalar(a, b float64) float64 {
	den := math.Abs(a)
	if den == 0 {
		den = 1
	}
	return math.Abs(b-a) / den
}
