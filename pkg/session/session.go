// Package session owns the single dataset and plot progression of a running
// tool instance and dispatches user actions against them.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/absorb/pkg/annotation"
	"github.com/charlie0129/absorb/pkg/dataset"
	"github.com/charlie0129/absorb/pkg/display"
	"github.com/charlie0129/absorb/pkg/events"
	"github.com/charlie0129/absorb/pkg/fit"
)

// Frame is what the plot surface was last asked to draw. Samples and Fit are
// snapshots taken when the frame was drawn, so table edits show up only on
// the next draw action.
type Frame struct {
	State      display.State
	Samples    []dataset.Sample
	Fit        *fit.Result
	Annotation *annotation.Placement
}

// Outcome describes the effect of one dispatched action.
type Outcome struct {
	Action display.Action
	From   display.State
	To     display.State
	// Applied is false when the guard ignored the action.
	Applied bool
	Fit     *fit.Result
}

type Session struct {
	id    string
	data  *dataset.DataSet
	state display.State
	frame Frame
	hub   *events.EventHub
	log   *logrus.Entry
	now   func() time.Time
}

type Option func(*Session)

// WithEventHub publishes session events to h.
func WithEventHub(h *events.EventHub) Option {
	return func(s *Session) { s.hub = h }
}

// WithSamples seeds the table with samples instead of the built-in table.
// Reset still restores the built-in table.
func WithSamples(samples []dataset.Sample) Option {
	return func(s *Session) { s.data = dataset.New(samples) }
}

func withClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func New(opts ...Option) *Session {
	id := uuid.NewString()
	s := &Session{
		id:    id,
		data:  dataset.Default(),
		state: display.StateBlank,
		frame: Frame{State: display.StateBlank},
		log:   logrus.WithField("session", id),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() display.State { return s.state }

// Samples returns a snapshot of the current table.
func (s *Session) Samples() []dataset.Sample { return s.data.Samples() }

// Frame returns a copy of the drawn frame.
func (s *Session) Frame() Frame {
	f := s.frame
	if f.Samples != nil {
		f.Samples = append([]dataset.Sample(nil), f.Samples...)
	}
	if f.Fit != nil {
		r := *f.Fit
		f.Fit = &r
	}
	if f.Annotation != nil {
		p := *f.Annotation
		f.Annotation = &p
	}
	return f
}

// Fit runs the engine over the current table without touching the plot.
func (s *Session) Fit() (fit.Result, error) {
	return fit.FitDataSet(s.data)
}

// Edit parses raw and stores it in the given cell. On failure the table is
// unchanged and a *dataset.ValidationError is returned.
func (s *Session) Edit(index int, field dataset.Field, raw string) error {
	v, err := dataset.ParseValue(raw)
	if err != nil {
		var ve *dataset.ValidationError
		if errors.As(err, &ve) {
			ve.Index = index
			ve.Field = field
		}
		s.log.WithFields(logrus.Fields{
			"index": index,
			"field": field,
			"input": raw,
		}).Debug("rejected cell edit")
		return err
	}
	return s.EditValue(index, field, v)
}

// EditValue stores v in the given cell.
func (s *Session) EditValue(index int, field dataset.Field, v float64) error {
	var old float64
	if index >= 0 && index < s.data.Len() {
		if field == dataset.FieldX {
			old = s.data.At(index).X
		} else {
			old = s.data.At(index).Y
		}
	}

	if err := s.data.Edit(index, field, v); err != nil {
		s.log.WithError(err).Debug("rejected cell edit")
		return err
	}

	s.log.WithFields(logrus.Fields{
		"index": index,
		"field": field,
		"old":   old,
		"new":   v,
	}).Info("cell edited")

	s.hub.Publish(events.DatasetEdit, events.DatasetEditEvent{
		Index: index,
		Field: string(field),
		Old:   old,
		New:   v,
		Ts:    s.now().Unix(),
	})

	return nil
}

// Annotate labels the point of the drawn fit line at x.
func (s *Session) Annotate(x float64) (annotation.Placement, error) {
	if s.state != display.StateFitDrawn || s.frame.Fit == nil {
		return annotation.Placement{}, ErrNoFit
	}
	p := annotation.Place(x, s.frame.Fit.PredictY(x))
	s.frame.Annotation = &p
	return p, nil
}

// ClearAnnotation removes the label, if any.
func (s *Session) ClearAnnotation() {
	s.frame.Annotation = nil
}
