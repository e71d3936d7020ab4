package session

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/absorb/pkg/display"
	"github.com/charlie0129/absorb/pkg/events"
	"github.com/charlie0129/absorb/pkg/fit"
)

// handler performs the side effects of an action the guard has accepted. It
// must leave the session untouched when it returns an error.
type handler func(s *Session) (*fit.Result, error)

var handlers = map[display.Action]handler{
	display.ActionDrawAxes:   drawAxes,
	display.ActionPlotPoints: plotPoints,
	display.ActionFit:        drawFit,
	display.ActionReset:      reset,
}

var messages = map[display.Action]string{
	display.ActionDrawAxes:   "Axes established",
	display.ActionPlotPoints: "Points plotted",
	display.ActionFit:        "Linear fit complete",
	display.ActionReset:      "Reset complete",
}

// Message is the confirmation shown once a has been applied.
func Message(a display.Action) string { return messages[a] }

// Dispatch applies a. A guard rejection is not an error: the outcome reports
// Applied=false and nothing changes. Handler errors leave the state as it was.
func (s *Session) Dispatch(a display.Action) (Outcome, error) {
	h, ok := handlers[a]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}

	from := s.state
	out := Outcome{Action: a, From: from, To: from}
	log := s.log.WithFields(logrus.Fields{
		"action": a,
		"state":  from,
	})

	next, allowed := display.Next(from, a)
	if !allowed {
		log.WithField("requires", display.Requires(a)).Debug("action ignored")
		s.hub.Publish(events.ActionIgnored, events.ActionIgnoredEvent{
			Action:   string(a),
			State:    string(from),
			Requires: string(display.Requires(a)),
			Ts:       s.now().Unix(),
		})
		return out, nil
	}

	res, err := h(s)
	if err != nil {
		log.WithError(err).Warn("action failed")
		s.hub.Publish(events.FitRejected, events.FitRejectedEvent{
			Reason: err.Error(),
			Ts:     s.now().Unix(),
		})
		return out, err
	}

	s.state = next
	out.To = next
	out.Applied = true
	out.Fit = res

	log.WithField("to", next).Info("display state changed")
	s.hub.Publish(events.DisplayState, events.DisplayStateEvent{
		From:    string(from),
		To:      string(next),
		Action:  string(a),
		Message: Message(a),
		Ts:      s.now().Unix(),
	})

	return out, nil
}

func drawAxes(s *Session) (*fit.Result, error) {
	s.frame = Frame{State: display.StateAxesDrawn}
	return nil, nil
}

func plotPoints(s *Session) (*fit.Result, error) {
	s.frame = Frame{
		State:   display.StatePointsDrawn,
		Samples: s.data.Samples(),
	}
	return nil, nil
}

func drawFit(s *Session) (*fit.Result, error) {
	samples := s.data.Samples()
	res, err := fit.Fit(samples)
	if err != nil {
		return nil, err
	}

	s.frame = Frame{
		State:   display.StateFitDrawn,
		Samples: samples,
		Fit:     &res,
	}

	payload := events.FitEvent{
		Slope:     res.Slope,
		Intercept: res.Intercept,
		N:         res.N,
		Ts:        s.now().Unix(),
	}
	if !math.IsNaN(res.Correlation) {
		r := res.Correlation
		payload.Correlation = &r
	}
	s.hub.Publish(events.FitCompleted, payload)

	out := res
	return &out, nil
}

func reset(s *Session) (*fit.Result, error) {
	s.data.Reset()
	s.frame = Frame{State: display.StateBlank}
	s.hub.Publish(events.DatasetReset, events.DatasetResetEvent{
		Samples: s.data.Len(),
		Message: Message(display.ActionReset),
		Ts:      s.now().Unix(),
	})
	return nil, nil
}
