package fit

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData is matched by InsufficientDataError.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateInput is matched by DegenerateInputError.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrNumericOverflow is matched by NumericOverflowError.
	ErrNumericOverflow = errors.New("numeric overflow")
)

// InsufficientDataError is returned when fewer than two samples are given.
type InsufficientDataError struct {
	N int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("linear fit needs at least %d samples, got %d", MinSamples, e.N)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// DegenerateInputError is returned when every sample shares the same x.
type DegenerateInputError struct {
	X float64
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("all samples have x = %g, slope is undefined", e.X)
}

func (e *DegenerateInputError) Is(target error) bool { return target == ErrDegenerateInput }

// NumericOverflowError is returned when the samples are too large for the
// sums of squares to stay finite.
type NumericOverflowError struct {
	Slope     float64
	Intercept float64
}

func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("samples are too large to fit (slope %g, intercept %g)", e.Slope, e.Intercept)
}

func (e *NumericOverflowError) Is(target error) bool { return target == ErrNumericOverflow }
