package classify

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-baseline/internal/testutil"
)

// testSpectrum is a constant baseline of 5 with a Gaussian peak of height 10
// and width 10 centered at index 500, plus uniform noise of amplitude 0.05.
func testSpectrum() []float64 {
	return testutil.Spectrum(1000, 5, 10, 10, 0.05, 42)
}

// maskRate returns the fraction of true entries in mask[lo:hi].
func maskRate(mask []bool, lo, hi int) float64 {
	count := 0
	for _, m := range mask[lo:hi] {
		if m {
			count++
		}
	}
	return float64(count) / float64(hi-lo)
}

// maxDeviation returns the largest |data[i]-value| over [lo, hi).
func maxDeviation(data []float64, lo, hi int, value float64) float64 {
	worst := 0.0
	for _, v := range data[lo:hi] {
		if d := math.Abs(v - value); d > worst {
			worst = d
		}
	}
	return worst
}

func TestGolotvin(t *testing.T) {
	data := testSpectrum()
	p := DefaultGolotvinParams()
	p.HalfWindow = 15
	p.NumStd = 6

	result, err := Golotvin(data, nil, nil, p)
	if err != nil {
		t.Fatalf("Golotvin: %v", err)
	}
	testutil.RequireFinite(t, result.Baseline)
	if len(result.Baseline) != len(data) || len(result.Mask) != len(data) {
		t.Fatalf("output lengths = %d, %d, want %d", len(result.Baseline), len(result.Mask), len(data))
	}
	if rate := maskRate(result.Mask, 0, 400); rate < 0.9 {
		t.Fatalf("left baseline rate = %v, want >= 0.9", rate)
	}
	if rate := maskRate(result.Mask, 600, 1000); rate < 0.9 {
		t.Fatalf("right baseline rate = %v, want >= 0.9", rate)
	}
	if rate := maskRate(result.Mask, 460, 540); rate > 0.1 {
		t.Fatalf("peak region baseline rate = %v, want <= 0.1", rate)
	}
	if dev := maxDeviation(result.Baseline, 0, 1000, 5); dev > 0.5 {
		t.Fatalf("baseline deviates from 5 by %v", dev)
	}
}

func TestGolotvinAllBaselineWarns(t *testing.T) {
	data := testSpectrum()
	p := DefaultGolotvinParams()
	p.HalfWindow = 15
	p.NumStd = 1e6

	result, err := Golotvin(data, nil, nil, p)
	if err != nil {
		t.Fatalf("Golotvin: %v", err)
	}
	found := false
	for _, w := range result.Warnings {
		if w == WarnNoPeakPoints {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want %v", result.Warnings, WarnNoPeakPoints)
	}
}

func TestGolotvinWeightsForcePeaks(t *testing.T) {
	data := testSpectrum()
	weights := make([]float64, len(data))
	for i := range weights {
		if i < 100 || i > 120 {
			weights[i] = 1
		}
	}
	p := DefaultGolotvinParams()
	p.HalfWindow = 15
	p.NumStd = 6

	result, err := Golotvin(data, nil, weights, p)
	if err != nil {
		t.Fatalf("Golotvin: %v", err)
	}
	for i := 100; i <= 120; i++ {
		if result.Mask[i] {
			t.Fatalf("index %d: zero weight was classified as baseline", i)
		}
	}
}

func TestDietrich(t *testing.T) {
	data := testSpectrum()
	result, err := Dietrich(data, nil, nil, DefaultDietrichParams())
	if err != nil {
		t.Fatalf("Dietrich: %v", err)
	}
	testutil.RequireFinite(t, result.Baseline)
	if rate := maskRate(result.Mask, 0, 400); rate < 0.9 {
		t.Fatalf("left baseline rate = %v, want >= 0.9", rate)
	}
	if rate := maskRate(result.Mask, 470, 530); rate > 0.2 {
		t.Fatalf("peak region baseline rate = %v, want <= 0.2", rate)
	}
	if len(result.TolHistory) == 0 {
		t.Fatal("expected a tolerance history from the polynomial refit")
	}
	if len(result.TolHistory) > 49 {
		t.Fatalf("tolerance history has %d entries, limit is 49", len(result.TolHistory))
	}
	if result.Baseline[500] > 10 {
		t.Fatalf("baseline at peak = %v, expected well below the peak height", result.Baseline[500])
	}
	mean := 0.0
	for _, v := range result.Baseline[:400] {
		mean += v
	}
	mean /= 400
	testutil.RequireNear(t, mean, 5, 0.5)
}

func TestDietrichNoIterations(t *testing.T) {
	data := testSpectrum()
	p := DefaultDietrichParams()
	p.MaxIter = 0

	result, err := Dietrich(data, nil, nil, p)
	if err != nil {
		t.Fatalf("Dietrich: %v", err)
	}
	if result.TolHistory != nil {
		t.Fatalf("tol history = %v, want none without iterations", result.TolHistory)
	}
	if result.Coef != nil {
		t.Fatalf("coef = %v, want none without a polynomial stage", result.Coef)
	}
	testutil.RequireFinite(t, result.Baseline)
}

func TestDietrichReturnCoef(t *testing.T) {
	data := testSpectrum()
	x := make([]float64, len(data))
	for i := range x {
		x[i] = float64(i)
	}
	p := DefaultDietrichParams()
	p.ReturnCoef = true

	result, err := Dietrich(data, x, nil, p)
	if err != nil {
		t.Fatalf("Dietrich: %v", err)
	}
	if len(result.Coef) != 6 {
		t.Fatalf("coef length = %d, want 6", len(result.Coef))
	}
	// The converted coefficients evaluate on the original x-values.
	for _, i := range []int{0, 250, 500, 750, 999} {
		val := 0.0
		for j := len(result.Coef) - 1; j >= 0; j-- {
			val = val*x[i] + result.Coef[j]
		}
		testutil.RequireNear(t, val, result.Baseline[i], 1e-6)
	}
}

func TestStdDistribution(t *testing.T) {
	data := testSpectrum()
	p := DefaultStdDistributionParams()
	p.HalfWindow = 50

	result, err := StdDistribution(data, nil, nil, p)
	if err != nil {
		t.Fatalf("StdDistribution: %v", err)
	}
	testutil.RequireFinite(t, result.Baseline)
	if rate := maskRate(result.Mask, 0, 300); rate < 0.5 {
		t.Fatalf("left baseline rate = %v, want >= 0.5", rate)
	}
	if rate := maskRate(result.Mask, 460, 540); rate > 0.1 {
		t.Fatalf("peak region baseline rate = %v, want <= 0.1", rate)
	}
	if dev := maxDeviation(result.Baseline, 0, 300, 5); dev > 0.5 {
		t.Fatalf("baseline deviates from 5 by %v", dev)
	}
	if result.Baseline[500] > 7 {
		t.Fatalf("baseline at peak = %v, expected near 5", result.Baseline[500])
	}
}

func TestStdDistributionFlatSignal(t *testing.T) {
	data := testutil.DC(5, 200)
	p := DefaultStdDistributionParams()
	p.HalfWindow = 10

	result, err := StdDistribution(data, nil, nil, p)
	if err != nil {
		t.Fatalf("StdDistribution: %v", err)
	}
	for i, m := range result.Mask {
		if !m {
			t.Fatalf("index %d: flat signal classified as peak", i)
		}
	}
	testutil.RequireSliceNearlyEqual(t, result.Baseline, data, 1e-9)
}

func TestFastChrom(t *testing.T) {
	data := testSpectrum()
	p := DefaultFastChromParams()
	p.HalfWindow = 15
	p.Threshold = 0.045

	result, err := FastChrom(data, nil, nil, p)
	if err != nil {
		t.Fatalf("FastChrom: %v", err)
	}
	testutil.RequireFinite(t, result.Baseline)
	if rate := maskRate(result.Mask, 0, 400); rate < 0.9 {
		t.Fatalf("left baseline rate = %v, want >= 0.9", rate)
	}
	if rate := maskRate(result.Mask, 470, 530); rate > 0.1 {
		t.Fatalf("peak region baseline rate = %v, want <= 0.1", rate)
	}
	if dev := maxDeviation(result.Baseline, 0, 420, 5); dev > 0.3 {
		t.Fatalf("baseline deviates from 5 by %v", dev)
	}
	if result.Baseline[500] > 7 {
		t.Fatalf("baseline at peak = %v, expected near 5", result.Baseline[500])
	}
}

func TestFastChromDefaultThreshold(t *testing.T) {
	data := testSpectrum()
	p := DefaultFastChromParams()
	p.HalfWindow = 15

	result, err := FastChrom(data, nil, nil, p)
	if err != nil {
		t.Fatalf("FastChrom: %v", err)
	}
	testutil.RequireFinite(t, result.Baseline)
	// The 15th percentile threshold marks only the quietest points, so the
	// mask is sparse but the peak must still be excluded.
	if rate := maskRate(result.Mask, 470, 530); rate > 0.1 {
		t.Fatalf("peak region baseline rate = %v, want <= 0.1", rate)
	}
}

func TestCWTBR(t *testing.T) {
	data := testSpectrum()
	result, err := CWTBR(data, nil, nil, DefaultCWTBRParams())
	if err != nil {
		t.Fatalf("CWTBR: %v", err)
	}
	testutil.RequireFinite(t, result.Baseline)
	if result.BestScale < 2 || result.BestScale > 50 {
		t.Fatalf("best scale = %v, want within [2, 50]", result.BestScale)
	}
	if len(result.TolHistory) == 0 {
		t.Fatal("expected a tolerance history")
	}
	if len(result.TolHistory) > 51 {
		t.Fatalf("tolerance history has %d entries, limit is 51", len(result.TolHistory))
	}
	if rate := maskRate(result.Mask, 0, 400); rate < 0.5 {
		t.Fatalf("left baseline rate = %v, want >= 0.5", rate)
	}
	if dev := maxDeviation(result.Baseline, 100, 400, 5); dev > 1 {
		t.Fatalf("baseline deviates from 5 by %v", dev)
	}
	if result.Baseline[500] > 12 {
		t.Fatalf("baseline at peak = %v, expected well below the peak", result.Baseline[500])
	}
}

func TestFABC(t *testing.T) {
	data := testSpectrum()
	p := DefaultFABCParams()
	p.Scale = 10

	result, err := FABC(data, nil, p)
	if err != nil {
		t.Fatalf("FABC: %v", err)
	}
	testutil.RequireFinite(t, result.Baseline)
	if len(result.Weights) != len(data) {
		t.Fatalf("weights length = %d, want %d", len(result.Weights), len(data))
	}
	if rate := maskRate(result.Mask, 0, 400); rate < 0.9 {
		t.Fatalf("left baseline rate = %v, want >= 0.9", rate)
	}
	if rate := maskRate(result.Mask, 475, 495); rate > 0.2 {
		t.Fatalf("rising edge baseline rate = %v, want <= 0.2", rate)
	}
	if dev := maxDeviation(result.Baseline, 0, 400, 5); dev > 0.5 {
		t.Fatalf("baseline deviates from 5 by %v", dev)
	}
	if result.Baseline[500] > 12 {
		t.Fatalf("baseline at peak = %v, expected well below the peak", result.Baseline[500])
	}
}

func TestSetupErrors(t *testing.T) {
	if _, err := Golotvin(nil, nil, nil, DefaultGolotvinParams()); err != ErrEmptyData {
		t.Fatalf("empty data error = %v, want %v", err, ErrEmptyData)
	}
	data := []float64{1, 2, 3}
	if _, err := Golotvin(data, []float64{1, 2}, nil, DefaultGolotvinParams()); err != ErrLengthMismatch {
		t.Fatalf("short x error = %v, want %v", err, ErrLengthMismatch)
	}
	if _, err := Dietrich(data, nil, []float64{1}, DefaultDietrichParams()); err != ErrLengthMismatch {
		t.Fatalf("short weights error = %v, want %v", err, ErrLengthMismatch)
	}
	if _, err := FABC(nil, nil, DefaultFABCParams()); err != ErrEmptyData {
		t.Fatalf("empty data error = %v, want %v", err, ErrEmptyData)
	}
}
