package classify

import "gonum.org/v1/gonum/floats"

// removeSinglePoints cleans isolated entries from a baseline mask. A lone
// true surrounded by false becomes false, then a lone false surrounded by
// true becomes true. Applying it twice changes nothing.
func removeSinglePoints(mask []bool) []bool {
	n := len(mask)
	temp := make([]bool, n)
	for i := range mask {
		left := i > 0 && mask[i-1]
		right := i < n-1 && mask[i+1]
		temp[i] = mask[i] && (left || right)
	}
	out := make([]bool, n)
	for i := range temp {
		left := i > 0 && temp[i-1]
		right := i < n-1 && temp[i+1]
		out[i] = temp[i] || (left && right)
	}
	return out
}

// segment is one contiguous peak region extended to its flanking baseline
// points. start is the last baseline index before the run (clamped to 0) and
// end the first baseline index after it (clamped to the last index).
type segment struct {
	start, end int
}

// findPeakSegments locates every run of false entries in the mask.
func findPeakSegments(mask []bool) []segment {
	n := len(mask)
	var segs []segment
	i := 0
	for i < n {
		if mask[i] {
			i++
			continue
		}
		s := i
		for i < n && !mask[i] {
			i++
		}
		start := s - 1
		if start < 0 {
			start = 0
		}
		end := i
		if end > n-1 {
			end = n - 1
		}
		segs = append(segs, segment{start: start, end: end})
	}
	return segs
}

// averagedInterp builds a rough baseline by replacing every peak segment with
// a straight line between the mean values of the baseline windows flanking
// it. interpHalfWindow sets the averaging window; zero anchors the line on
// the single flanking samples. An all-false mask degenerates to one global
// interpolation and an all-true mask returns the data unchanged, both with a
// warning.
func averagedInterp(x, y []float64, mask []bool, interpHalfWindow int) ([]float64, []Warning) {
	n := len(y)
	out := append([]float64(nil), y...)

	trueCount := 0
	for _, m := range mask {
		if m {
			trueCount++
		}
	}
	var warnings []Warning
	switch trueCount {
	case 0:
		warnings = append(warnings, WarnNoBaselinePoints)
	case n:
		warnings = append(warnings, WarnNoPeakPoints)
		return out, warnings
	}

	for _, seg := range findPeakSegments(mask) {
		left := windowMean(y, seg.start, interpHalfWindow)
		right := windowMean(y, seg.end, interpHalfWindow)
		span := x[seg.end] - x[seg.start]
		if span == 0 {
			out[seg.start] = left
			continue
		}
		slope := (right - left) / span
		for i := seg.start; i <= seg.end; i++ {
			out[i] = left + slope*(x[i]-x[seg.start])
		}
	}
	return out, warnings
}

// windowMean averages y over [center-halfWindow, center+halfWindow], clamped
// to the slice bounds.
func windowMean(y []float64, center, halfWindow int) float64 {
	lo := center - halfWindow
	if lo < 0 {
		lo = 0
	}
	hi := center + halfWindow + 1
	if hi > len(y) {
		hi = len(y)
	}
	return floats.Sum(y[lo:hi]) / float64(hi-lo)
}
