// Package morph provides 1-D morphological operators over centered windows:
// grey dilation and erosion (sliding maximum and minimum) for rolling-range
// statistics, and binary dilation and erosion for mask cleanup.
package morph

// GreyDilate returns the sliding maximum of data over windows of
// 2*halfWindow+1 points. Windows are clamped at the edges, which matches a
// reflected border for extreme-value filters.
func GreyDilate(data []float64, halfWindow int) []float64 {
	return slidingExtremum(data, halfWindow, func(a, b float64) bool { return a > b })
}

// GreyErode returns the sliding minimum of data over windows of
// 2*halfWindow+1 points.
func GreyErode(data []float64, halfWindow int) []float64 {
	return slidingExtremum(data, halfWindow, func(a, b float64) bool { return a < b })
}

// slidingExtremum runs a monotonic-deque sliding window in O(n).
func slidingExtremum(data []float64, halfWindow int, better func(a, b float64) bool) []float64 {
	n := len(data)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if halfWindow <= 0 {
		copy(out, data)
		return out
	}

	deque := make([]int, 0, 2*halfWindow+1)
	for i := 0; i < n+halfWindow; i++ {
		if i < n {
			for len(deque) > 0 && !better(data[deque[len(deque)-1]], data[i]) {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, i)
		}
		center := i - halfWindow
		if center < 0 {
			continue
		}
		for deque[0] < center-halfWindow {
			deque = deque[1:]
		}
		out[center] = data[deque[0]]
	}
	return out
}

// BinaryDilate sets every point within halfWindow of a true point to true.
// Points beyond the mask edges count as false.
func BinaryDilate(mask []bool, halfWindow int) []bool {
	n := len(mask)
	out := make([]bool, n)
	last := -1 // index of most recent true at or before the scan position
	for i := 0; i < n; i++ {
		if mask[i] {
			last = i
		}
		if last >= i-halfWindow && last >= 0 {
			out[i] = true
			continue
		}
		for j := i + 1; j <= i+halfWindow && j < n; j++ {
			if mask[j] {
				out[i] = true
				break
			}
		}
	}
	return out
}

// BinaryErode keeps a point true only when its whole window of
// 2*halfWindow+1 points is true. Points beyond the mask edges count as
// false, so the outermost halfWindow points always erode.
func BinaryErode(mask []bool, halfWindow int) []bool {
	n := len(mask)
	out := make([]bool, n)
	run := 0 // length of the current run of true values ending at i
	for i := 0; i < n; i++ {
		if mask[i] {
			run++
		} else {
			run = 0
		}
		center := i - halfWindow
		if center >= 0 && run >= 2*halfWindow+1 {
			out[center] = true
		}
	}
	return out
}
