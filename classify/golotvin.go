package classify

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-baseline/internal/morph"
	"github.com/cwbudde/algo-baseline/pad"
)

// GolotvinParams configures Golotvin. Zero or negative values fall back to
// the documented defaults where noted.
type GolotvinParams struct {
	// HalfWindow sets the rolling-range window to 2*HalfWindow+1 points.
	// Zero or negative derives it from the data.
	HalfWindow int

	// NumStd scales the noise threshold. Defaults to 2.
	NumStd float64

	// Sections is the number of equal slices searched for the quietest
	// region. Defaults to 32.
	Sections int

	// SmoothHalfWindow controls the final moving average. Negative reuses
	// HalfWindow; zero skips smoothing.
	SmoothHalfWindow int

	// InterpHalfWindow is the averaging window flanking each peak segment.
	// Negative reverts to 5.
	InterpHalfWindow int

	// Pad selects how edges are extended for the final smoothing pass.
	Pad pad.Options
}

// DefaultGolotvinParams returns the standard Golotvin configuration.
func DefaultGolotvinParams() GolotvinParams {
	return GolotvinParams{
		NumStd:           2,
		Sections:         32,
		SmoothHalfWindow: -1,
		InterpHalfWindow: 5,
	}
}

// Golotvin classifies baseline points by comparing the rolling range of the
// signal against the standard deviation of its quietest section. Points
// whose local range stays below NumStd times that noise estimate are kept as
// baseline; peak regions are bridged by averaged interpolation and the
// result smoothed.
func Golotvin(data, x, weights []float64, p GolotvinParams) (Result, error) {
	y, xs, weightMask, _, _, err := setup(data, x, weights)
	if err != nil {
		return Result{}, err
	}
	n := len(y)

	halfWindow := p.HalfWindow
	if halfWindow <= 0 {
		halfWindow = defaultHalfWindow(y)
	}
	numStd := p.NumStd
	if numStd <= 0 {
		numStd = 2
	}
	sections := p.Sections
	if sections <= 0 {
		sections = 32
	}
	if sections > n {
		sections = n
	}
	smoothHalfWindow := p.SmoothHalfWindow
	if smoothHalfWindow < 0 {
		smoothHalfWindow = halfWindow
	}
	interpHalfWindow := p.InterpHalfWindow
	if interpHalfWindow < 0 {
		interpHalfWindow = 5
	}

	minStd := math.Inf(1)
	for i := 0; i < sections; i++ {
		section := y[i*n/sections : (i+1)*n/sections]
		if len(section) < 2 {
			continue
		}
		if s := stat.StdDev(section, nil); s < minStd {
			minStd = s
		}
	}
	if math.IsInf(minStd, 1) {
		minStd = 0
	}

	dilated := morph.GreyDilate(y, halfWindow)
	eroded := morph.GreyErode(y, halfWindow)
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = dilated[i]-eroded[i] < numStd*minStd
	}
	mask = andMask(removeSinglePoints(mask), weightMask)

	rough, warnings := averagedInterp(xs, y, mask, interpHalfWindow)
	baseline, err := smoothBaseline(rough, smoothHalfWindow, p.Pad)
	if err != nil {
		return Result{}, err
	}
	return Result{Baseline: baseline, Mask: mask, Warnings: warnings}, nil
}
