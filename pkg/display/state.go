package display

import "fmt"

// State is the plot progression. Order matters: a later state implies the
// earlier ones have been drawn.
type State string

const (
	StateBlank       State = "Blank"
	StateAxesDrawn   State = "AxesDrawn"
	StatePointsDrawn State = "PointsDrawn"
	StateFitDrawn    State = "FitDrawn"
)

// Action is a user request.
type Action string

const (
	ActionDrawAxes   Action = "DrawAxes"
	ActionPlotPoints Action = "PlotPoints"
	ActionFit        Action = "Fit"
	ActionReset      Action = "Reset"
)

// Actions lists every action in button order.
var Actions = []Action{ActionDrawAxes, ActionPlotPoints, ActionFit, ActionReset}

func (s State) rank() int {
	switch s {
	case StateAxesDrawn:
		return 1
	case StatePointsDrawn:
		return 2
	case StateFitDrawn:
		return 3
	}
	return 0
}

// AtLeast reports whether s is other or a later state.
func (s State) AtLeast(other State) bool {
	return s.rank() >= other.rank()
}

// Next returns the state after applying a to s. ok is false when the guard
// rejects the action; the returned state is then s unchanged.
func Next(s State, a Action) (next State, ok bool) {
	switch a {
	case ActionDrawAxes:
		return StateAxesDrawn, true
	case ActionPlotPoints:
		if s.AtLeast(StateAxesDrawn) {
			return StatePointsDrawn, true
		}
	case ActionFit:
		if s.AtLeast(StatePointsDrawn) {
			return StateFitDrawn, true
		}
	case ActionReset:
		return StateBlank, true
	}
	return s, false
}

// Allowed reports whether a would change anything from s.
func Allowed(s State, a Action) bool {
	_, ok := Next(s, a)
	return ok
}

// Requires names the state an action needs, for hints in the UI.
func Requires(a Action) State {
	switch a {
	case ActionPlotPoints:
		return StateAxesDrawn
	case ActionFit:
		return StatePointsDrawn
	}
	return StateBlank
}

// ParseAction accepts the action names and the short forms used on the
// command line.
func ParseAction(s string) (Action, error) {
	switch s {
	case "axes", "coordinates", string(ActionDrawAxes):
		return ActionDrawAxes, nil
	case "points", "plot", string(ActionPlotPoints):
		return ActionPlotPoints, nil
	case "fit", string(ActionFit):
		return ActionFit, nil
	case "reset", string(ActionReset):
		return ActionReset, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}
