package cwt

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestRickerShape(t *testing.T) {
	w := Ricker(11, 2)
	if len(w) != 11 {
		t.Fatalf("length = %d, want 11", len(w))
	}

	// symmetric with the maximum at the center
	for i := 0; i < 5; i++ {
		if math.Abs(w[i]-w[10-i]) > 1e-14 {
			t.Fatalf("asymmetry at %d: %v vs %v", i, w[i], w[10-i])
		}
	}
	for i, v := range w {
		if i != 5 && v >= w[5] {
			t.Fatalf("index %d value %v not below center %v", i, v, w[5])
		}
	}

	// center value matches the closed form 2/(sqrt(3a)*pi^(1/4))
	want := 2 / (math.Sqrt(3*2.0) * math.Pow(math.Pi, 0.25))
	if math.Abs(w[5]-want) > 1e-14 {
		t.Fatalf("center = %v, want %v", w[5], want)
	}
}

func TestHaarAntisymmetric(t *testing.T) {
	for _, scale := range []float64{2, 4, 5} {
		w := Haar(int(10*scale), scale)
		for i := range w {
			j := len(w) - 1 - i
			if math.Abs(w[i]+w[j]) > 1e-14 {
				t.Fatalf("scale %v: w[%d] = %v, w[%d] = %v, want antisymmetric", scale, i, w[i], j, w[j])
			}
		}
	}
}

func naiveSameConvolve(data, kernel []float64) []float64 {
	n := len(data)
	m := len(kernel)
	full := make([]float64, n+m-1)
	for i := range data {
		for j := range kernel {
			full[i+j] += data[i] * kernel[j]
		}
	}
	start := (m - 1) / 2
	return full[start : start+n]
}

func TestTransformMatchesDirectConvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	data := make([]float64, 64)
	for i := range data {
		data[i] = rng.NormFloat64()
	}

	const scale = 3.0
	got, err := Transform(data, Ricker, scale)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kernel := Ricker(30, scale)
	reversed := make([]float64, len(kernel))
	for i, v := range kernel {
		reversed[len(kernel)-1-i] = v
	}
	want := naiveSameConvolve(data, reversed)

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTransformOfConstantIsNearZero(t *testing.T) {
	data := make([]float64, 128)
	for i := range data {
		data[i] = 7
	}

	out, err := Transform(data, Ricker, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// zero-mean wavelet: interior response to a constant vanishes
	for i := 25; i < len(out)-25; i++ {
		if math.Abs(out[i]) > 1e-6 {
			t.Fatalf("index %d: response %v to constant input", i, out[i])
		}
	}
}

func TestTransformErrors(t *testing.T) {
	if _, err := Transform(nil, Ricker, 2); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("empty input error = %v, want ErrEmptyInput", err)
	}
	if _, err := Transform([]float64{1, 2}, Ricker, 0); !errors.Is(err, ErrInvalidScale) {
		t.Fatalf("zero scale error = %v, want ErrInvalidScale", err)
	}
}

func TestShannonEntropyUniformIsMaximal(t *testing.T) {
	uniform := []float64{1, 1, 1, 1}
	spiked := []float64{4, 0, 0, 0}

	hu := ShannonEntropy(uniform)
	hs := ShannonEntropy(spiked)
	if hu <= hs {
		t.Fatalf("uniform entropy %v not above spiked entropy %v", hu, hs)
	}
	if math.Abs(hu-math.Log(4)) > 1e-9 {
		t.Fatalf("uniform entropy = %v, want log(4)", hu)
	}
}
