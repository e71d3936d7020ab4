package session

import "errors"

var (
	// ErrUnknownAction is returned by Dispatch for an action with no handler.
	ErrUnknownAction = errors.New("unknown action")

	// ErrNoFit is returned when annotating before the fit line is drawn.
	ErrNoFit = errors.New("fit line not drawn")
)
