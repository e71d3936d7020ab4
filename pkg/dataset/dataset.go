// Package dataset holds the ordered concentration/absorbance samples shown in
// the data table. Insertion order is display order.
package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Sample is one row of the table. X is a percentage, Y an absorbance reading.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Field selects the column of a Sample.
type Field string

const (
	FieldX Field = "x"
	FieldY Field = "y"
)

var defaultSamples = []Sample{
	{50, 0.120},
	{55, 0.206},
	{60, 0.338},
	{65, 0.460},
	{70, 0.547},
	{75, 0.641},
	{80, 0.725},
}

// DefaultSamples returns a copy of the built-in seven-row table.
func DefaultSamples() []Sample {
	return clone(defaultSamples)
}

// DataSet is not safe for concurrent mutation. Readers get copies.
type DataSet struct {
	samples []Sample
}

// New seeds a DataSet with a copy of initial.
func New(initial []Sample) *DataSet {
	return &DataSet{samples: clone(initial)}
}

// Default seeds a DataSet with the built-in table.
func Default() *DataSet {
	return New(defaultSamples)
}

func (d *DataSet) Len() int { return len(d.samples) }

func (d *DataSet) At(i int) Sample { return d.samples[i] }

// Samples returns a snapshot.
func (d *DataSet) Samples() []Sample { return clone(d.samples) }

// XS returns a copy of the x column.
func (d *DataSet) XS() []float64 {
	xs := make([]float64, len(d.samples))
	for i, s := range d.samples {
		xs[i] = s.X
	}
	return xs
}

// YS returns a copy of the y column.
func (d *DataSet) YS() []float64 {
	ys := make([]float64, len(d.samples))
	for i, s := range d.samples {
		ys[i] = s.Y
	}
	return ys
}

// Edit replaces one field of the sample at index.
func (d *DataSet) Edit(index int, field Field, value float64) error {
	if index < 0 || index >= len(d.samples) {
		return &ValidationError{Index: index, Field: field, Msg: "index out of range"}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &ValidationError{Index: index, Field: field, Msg: "value is not a finite number"}
	}

	switch field {
	case FieldX:
		d.samples[index].X = value
	case FieldY:
		d.samples[index].Y = value
	default:
		return &ValidationError{Index: index, Field: field, Msg: "unknown field"}
	}

	return nil
}

// Reset restores the built-in table.
func (d *DataSet) Reset() {
	d.samples = clone(defaultSamples)
}

// Equal reports whether both sets hold the same samples in the same order.
func (d *DataSet) Equal(samples []Sample) bool {
	if len(d.samples) != len(samples) {
		return false
	}
	for i := range samples {
		if d.samples[i] != samples[i] {
			return false
		}
	}
	return true
}

// ParseValue parses a typed cell. A trailing percent sign is accepted since
// the table renders concentrations with one.
func ParseValue(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
	if err != nil {
		return 0, &ValidationError{Index: -1, Input: s, Msg: "not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Index: -1, Input: s, Msg: "not a finite number"}
	}
	return v, nil
}

// ParseField accepts "x"/"y" and the column names.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "concentration", "pct":
		return FieldX, nil
	case "y", "absorbance", "abs":
		return FieldY, nil
	}
	return "", &ValidationError{Index: -1, Input: s, Msg: "unknown column"}
}

func clone(s []Sample) []Sample {
	out := make([]Sample, len(s))
	copy(out, s)
	return out
}
