// Package fit computes the least-squares calibration line and Pearson
// correlation of a set of samples.
//
// Fit is a pure function over a snapshot: it never mutates its input and
// returns the same Result for the same samples, so it may be called from any
// goroutine.
package fit

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/charlie0129/absorb/pkg/dataset"
)

// MinSamples is the smallest number of samples a line can be fitted to.
const MinSamples = 2

// Result is the fitted line y = Slope*x + Intercept.
type Result struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	// Correlation is Pearson's r. It is NaN when every y is equal.
	Correlation float64 `json:"correlation"`
	N           int     `json:"n"`
}

// Fit runs ordinary least squares over samples.
//
// slope = Σ((xi−x̄)(yi−ȳ)) / Σ((xi−x̄)²), intercept = ȳ − slope·x̄ and
// r = cov(x,y) / (σx·σy). Standard deviations use the sample (n−1)
// convention; r does not depend on that choice.
func Fit(samples []dataset.Sample) (Result, error) {
	n := len(samples)
	if n < MinSamples {
		return Result{}, &InsufficientDataError{N: n}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, s := range samples {
		xs[i] = s.X
		ys[i] = s.Y
	}
	return fitXY(xs, ys)
}

// FitDataSet fits the current samples of d.
func FitDataSet(d *dataset.DataSet) (Result, error) {
	xs, ys := d.XS(), d.YS()
	if len(xs) < MinSamples {
		return Result{}, &InsufficientDataError{N: len(xs)}
	}
	return fitXY(xs, ys)
}

func fitXY(xs, ys []float64) (Result, error) {
	if allEqual(xs) {
		return Result{}, &DegenerateInputError{X: xs[0]}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	// Squared deviations overflow well before the samples do.
	if !finite(slope, intercept, stat.Variance(xs, nil), stat.Variance(ys, nil)) {
		return Result{}, &NumericOverflowError{Slope: slope, Intercept: intercept}
	}

	r := math.NaN()
	if !allEqual(ys) {
		r = stat.Correlation(xs, ys, nil)
	}

	return Result{
		Slope:       slope,
		Intercept:   intercept,
		Correlation: r,
		N:           len(xs),
	}, nil
}

// PredictY evaluates the line at x.
func (r Result) PredictY(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// PredictX inverts the line, giving the concentration for an absorbance.
// It returns NaN for a horizontal line.
func (r Result) PredictX(y float64) float64 {
	if r.Slope == 0 {
		return math.NaN()
	}
	return (y - r.Intercept) / r.Slope
}

func allEqual(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
