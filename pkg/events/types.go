package events

import "encoding/json"

// Event name constants
const (
	DisplayState  = "display.state"
	DatasetEdit   = "dataset.edit"
	DatasetReset  = "dataset.reset"
	FitCompleted  = "fit.result"
	FitRejected   = "fit.rejected"
	ActionIgnored = "action.ignored"
)

// Event is a named JSON payload published by a session.
type Event struct {
	Name string          // event name
	Data json.RawMessage // Raw JSON payload
}

// DisplayStateEvent is the typed payload for display.state.
type DisplayStateEvent struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Action  string `json:"action"`
	Message string `json:"message,omitempty"`
	Ts      int64  `json:"ts"`
}

// DatasetEditEvent is the typed payload for dataset.edit.
type DatasetEditEvent struct {
	Index int     `json:"index"`
	Field string  `json:"field"`
	Old   float64 `json:"old"`
	New   float64 `json:"new"`
	Ts    int64   `json:"ts"`
}

// DatasetResetEvent is the typed payload for dataset.reset.
type DatasetResetEvent struct {
	Samples int    `json:"samples"`
	Message string `json:"message,omitempty"`
	Ts      int64  `json:"ts"`
}

// FitEvent is the typed payload for fit.result.
type FitEvent struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	// Correlation is omitted when undefined, since JSON has no NaN.
	Correlation *float64 `json:"correlation,omitempty"`
	N           int      `json:"n"`
	Ts          int64    `json:"ts"`
}

// FitRejectedEvent is the typed payload for fit.rejected.
type FitRejectedEvent struct {
	Reason string `json:"reason"`
	Ts     int64  `json:"ts"`
}

// ActionIgnoredEvent is the typed payload for action.ignored.
type ActionIgnoredEvent struct {
	Action   string `json:"action"`
	State    string `json:"state"`
	Requires string `json:"requires"`
	Ts       int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.DisplayStateEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.From, payload.To)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
