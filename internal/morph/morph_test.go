package morph

import (
	"math/rand"
	"testing"
)

func naiveExtremum(data []float64, halfWindow int, max bool) []float64 {
	out := make([]float64, len(data))
	for i := range data {
		lo, hi := i-halfWindow, i+halfWindow
		if lo < 0 {
			lo = 0
		}
		if hi > len(data)-1 {
			hi = len(data) - 1
		}
		best := data[lo]
		for j := lo + 1; j <= hi; j++ {
			if (max && data[j] > best) || (!max && data[j] < best) {
				best = data[j]
			}
		}
		out[i] = best
	}
	return out
}

func TestGreyDilateErodeAgainstNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	data := make([]float64, 250)
	for i := range data {
		data[i] = rng.NormFloat64()
	}

	for _, hw := range []int{1, 3, 10, 40} {
		dilated := GreyDilate(data, hw)
		eroded := GreyErode(data, hw)
		wantMax := naiveExtremum(data, hw, true)
		wantMin := naiveExtremum(data, hw, false)
		for i := range data {
			if dilated[i] != wantMax[i] {
				t.Fatalf("halfWindow %d, dilate[%d] = %v, want %v", hw, i, dilated[i], wantMax[i])
			}
			if eroded[i] != wantMin[i] {
				t.Fatalf("halfWindow %d, erode[%d] = %v, want %v", hw, i, eroded[i], wantMin[i])
			}
		}
	}
}

func TestGreyDilateZeroWindow(t *testing.T) {
	data := []float64{3, 1, 2}
	out := GreyDilate(data, 0)
	for i := range data {
		if out[i] != data[i] {
			t.Fatalf("index %d: got %v, want %v", i, out[i], data[i])
		}
	}
}

func TestBinaryDilate(t *testing.T) {
	mask := []bool{false, false, true, false, false, false, true, false}
	got := BinaryDilate(mask, 1)
	want := []bool{false, true, true, true, false, true, true, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBinaryErode(t *testing.T) {
	mask := []bool{true, true, true, true, false, true, true, true}
	got := BinaryErode(mask, 1)
	want := []bool{false, true, true, false, false, false, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBinaryDilateErodeDuality(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	mask := make([]bool, 120)
	for i := range mask {
		mask[i] = rng.Float64() < 0.5
	}

	inverted := make([]bool, len(mask))
	for i := range mask {
		inverted[i] = !mask[i]
	}

	// interior of dilation(mask) must equal NOT erosion(NOT mask); the edges
	// differ because both operators treat the outside as false
	dilated := BinaryDilate(mask, 2)
	eroded := BinaryErode(inverted, 2)
	for i := 2; i < len(mask)-2; i++ {
		if dilated[i] == eroded[i] {
			t.Fatalf("index %d: dilation and complement erosion both %v", i, dilated[i])
		}
	}
}
