// Package report turns fit results into the strings shown in dialogs and on
// the command line.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charlie0129/absorb/pkg/fit"
)

// Precision is the number of decimals shown for each figure.
type Precision struct {
	Coefficients int
	Correlation  int
}

// DefaultPrecision matches the classroom handout: four decimals for the
// line, three for r.
var DefaultPrecision = Precision{Coefficients: 4, Correlation: 3}

// Formula renders the line as "A = 0.0207x - 0.9098".
func Formula(r fit.Result, p Precision) string {
	sign := "+"
	if r.Intercept < 0 {
		sign = "-"
	}
	return fmt.Sprintf("A = %.*fx %s %.*f", p.Coefficients, r.Slope, sign, p.Coefficients, math.Abs(r.Intercept))
}

// Correlation renders "r = 0.997", or "r = undefined" when every y is equal.
func Correlation(r fit.Result, p Precision) string {
	if math.IsNaN(r.Correlation) {
		return "r = undefined"
	}
	return fmt.Sprintf("r = %.*f", p.Correlation, r.Correlation)
}

// Summary is the fit dialog body.
func Summary(r fit.Result, p Precision) string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "Linear fit complete")
	fmt.Fprintln(b)
	fmt.Fprintf(b, "Formula: %s\n", Formula(r, p))
	fmt.Fprintf(b, "Correlation: %s\n", Correlation(r, p))
	fmt.Fprintln(b)
	fmt.Fprint(b, "Click the line or use [ and ] to read values")
	return b.String()
}

// Concentration renders the inverse lookup for an absorbance reading.
func Concentration(r fit.Result, absorbance float64, p Precision) string {
	x := r.PredictX(absorbance)
	if math.IsNaN(x) {
		return fmt.Sprintf("A = %.3f: concentration undefined (horizontal line)", absorbance)
	}
	return fmt.Sprintf("A = %.3f: x = %.*f%%", absorbance, p.Coefficients, x)
}
