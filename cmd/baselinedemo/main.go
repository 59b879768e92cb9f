// Command baselinedemo classifies the baseline of a synthetic spectrum and
// prints diagnostics for each classification method.
//
// Usage:
//
//	baselinedemo [flags] [method-name ...]
//
// Without arguments it runs every method.
//
// Examples:
//
//	baselinedemo golotvin
//	baselinedemo -points 2000 -noise 0.1 dietrich fabc
//	baselinedemo -list
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-baseline/classify"
)

type methodEntry struct {
	name string
	run  func(data []float64) (classify.Result, error)
}

var registry = []methodEntry{
	{"golotvin", func(data []float64) (classify.Result, error) {
		p := classify.DefaultGolotvinParams()
		p.HalfWindow = 15
		p.NumStd = 6
		return classify.Golotvin(data, nil, nil, p)
	}},
	{"dietrich", func(data []float64) (classify.Result, error) {
		return classify.Dietrich(data, nil, nil, classify.DefaultDietrichParams())
	}},
	{"stddistribution", func(data []float64) (classify.Result, error) {
		p := classify.DefaultStdDistributionParams()
		p.HalfWindow = 50
		return classify.StdDistribution(data, nil, nil, p)
	}},
	{"fastchrom", func(data []float64) (classify.Result, error) {
		p := classify.DefaultFastChromParams()
		p.HalfWindow = 15
		return classify.FastChrom(data, nil, nil, p)
	}},
	{"cwtbr", func(data []float64) (classify.Result, error) {
		return classify.CWTBR(data, nil, nil, classify.DefaultCWTBRParams())
	}},
	{"fabc", func(data []float64) (classify.Result, error) {
		p := classify.DefaultFABCParams()
		p.Scale = 10
		return classify.FABC(data, nil, p)
	}},
}

func main() {
	points := flag.Int("points", 1000, "number of samples in the synthetic spectrum")
	baseline := flag.Float64("baseline", 5, "constant baseline level")
	height := flag.Float64("height", 10, "peak height")
	sigma := flag.Float64("sigma", 10, "peak width (standard deviation in samples)")
	noise := flag.Float64("noise", 0.05, "uniform noise amplitude")
	seed := flag.Int64("seed", 42, "noise seed")
	list := flag.Bool("list", false, "list method names and exit")
	flag.Parse()

	if *list {
		for _, m := range registry {
			fmt.Println(m.name)
		}
		return
	}

	names := flag.Args()
	if len(names) == 0 {
		for _, m := range registry {
			names = append(names, m.name)
		}
	}

	data := synthesize(*points, *baseline, *height, *sigma, *noise, *seed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "method\tbaseline pts\tpeak pts\tmax residual\titerations\tbest scale\twarnings")
	exit := 0
	for _, name := range names {
		m, ok := lookup(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown method %q (use -list)\n", name)
			exit = 1
			continue
		}
		result, err := m.run(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", m.name, err)
			exit = 1
			continue
		}
		printResult(w, m.name, data, result)
	}
	w.Flush()
	os.Exit(exit)
}

// synthesize builds a constant baseline with one Gaussian peak in the middle
// and reproducible uniform noise.
func synthesize(points int, baseline, height, sigma, noise float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	center := float64(points) / 2
	data := make([]float64, points)
	for i := range data {
		d := float64(i) - center
		data[i] = baseline + height*math.Exp(-d*d/(2*sigma*sigma)) + (rng.Float64()*2-1)*noise
	}
	return data
}

func lookup(name string) (methodEntry, bool) {
	name = strings.ToLower(name)
	for _, m := range registry {
		if m.name == name {
			return m, true
		}
	}
	return methodEntry{}, false
}

func printResult(w *tabwriter.Writer, name string, data []float64, result classify.Result) {
	baselinePts := 0
	for _, m := range result.Mask {
		if m {
			baselinePts++
		}
	}
	maxResidual := 0.0
	for i, v := range data {
		if r := math.Abs(v - result.Baseline[i]); r > maxResidual && result.Mask[i] {
			maxResidual = r
		}
	}
	scale := "-"
	if result.BestScale > 0 {
		scale = fmt.Sprintf("%.0f", result.BestScale)
	}
	iterations := "-"
	if len(result.TolHistory) > 0 {
		iterations = fmt.Sprintf("%d", len(result.TolHistory))
	}
	warnings := make([]string, len(result.Warnings))
	for i, warning := range result.Warnings {
		warnings[i] = string(warning)
	}
	warnText := strings.Join(warnings, "; ")
	if warnText == "" {
		warnText = "-"
	}
	fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\t%s\t%s\t%s\n",
		name, baselinePts, len(result.Mask)-baselinePts, maxResidual, iterations, scale, warnText)
}
