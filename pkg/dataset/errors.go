package dataset

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("invalid value")

// ValidationError is returned when an edit is rejected. The DataSet is left
// unchanged.
type ValidationError struct {
	Index int
	Field Field
	Input string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("invalid value %q: %s", e.Input, e.Msg)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("row %d %s: %s", e.Index+1, e.Field, e.Msg)
	}
	return e.Msg
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
