package config

import "github.com/sirupsen/logrus"

type Config interface {
	XMin() float64
	XMax() float64
	XStep() float64
	YMin() float64
	YMax() float64
	YStep() float64

	CoefficientDigits() int
	CorrelationDigits() int

	// Editable enables in-place editing of table cells.
	Editable() bool

	Title() string
	XLabel() string
	YLabel() string

	// Load reads the configuration from the source.
	Load() error

	LogrusFields() logrus.Fields
}
