package config

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/absorb/pkg/utils/ptr"
)

var (
	// The canonical viewport is the fixed-table variant: x in [45, 85],
	// y in [0, 0.9].
	defaultFileConfig = &RawFileConfig{
		XMin:              ptr.To(45.0),
		XMax:              ptr.To(85.0),
		XStep:             ptr.To(5.0),
		YMin:              ptr.To(0.0),
		YMax:              ptr.To(0.9),
		YStep:             ptr.To(0.1),
		CoefficientDigits: ptr.To(4),
		CorrelationDigits: ptr.To(3),
		Editable:          ptr.To(true),
		Title:             ptr.To("Spectrophotometric Data Processing"),
		XLabel:            ptr.To("Concentration (%)"),
		YLabel:            ptr.To("Absorbance (A)"),
	}
)

const maxDigits = 10

// MaxTicks bounds the number of gridlines along one axis.
const MaxTicks = 1000

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// DefaultPath is <user config dir>/absorb/config.json, or an empty string
// when the platform has no config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "absorb", "config.json")
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	XMin              *float64 `json:"xMin,omitempty"`
	XMax              *float64 `json:"xMax,omitempty"`
	XStep             *float64 `json:"xStep,omitempty"`
	YMin              *float64 `json:"yMin,omitempty"`
	YMax              *float64 `json:"yMax,omitempty"`
	YStep             *float64 `json:"yStep,omitempty"`
	CoefficientDigits *int     `json:"coefficientDigits,omitempty"`
	CorrelationDigits *int     `json:"correlationDigits,omitempty"`
	Editable          *bool    `json:"editable,omitempty"`
	Title             *string  `json:"title,omitempty"`
	XLabel            *string  `json:"xLabel,omitempty"`
	YLabel            *string  `json:"yLabel,omitempty"`
}

func get[T any](f *File, field func(*RawFileConfig) *T) T {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(field(f.c), *field(defaultFileConfig))
}

func (f *File) XMin() float64 { return get(f, func(c *RawFileConfig) *float64 { return c.XMin }) }
func (f *File) XMax() float64 { return get(f, func(c *RawFileConfig) *float64 { return c.XMax }) }
func (f *File) XStep() float64 { return get(f, func(c *RawFileConfig) *float64 { return c.XStep }) }
func (f *File) YMin() float64 { return get(f, func(c *RawFileConfig) *float64 { return c.YMin }) }
func (f *File) YMax() float64 { return get(f, func(c *RawFileConfig) *float64 { return c.YMax }) }
func (f *File) YStep() float64 { return get(f, func(c *RawFileConfig) *float64 { return c.YStep }) }

func (f *File) CoefficientDigits() int {
	return get(f, func(c *RawFileConfig) *int { return c.CoefficientDigits })
}

func (f *File) CorrelationDigits() int {
	return get(f, func(c *RawFileConfig) *int { return c.CorrelationDigits })
}

func (f *File) Editable() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.Editable })
}

func (f *File) Title() string { return get(f, func(c *RawFileConfig) *string { return c.Title }) }
func (f *File) XLabel() string { return get(f, func(c *RawFileConfig) *string { return c.XLabel }) }
func (f *File) YLabel() string { return get(f, func(c *RawFileConfig) *string { return c.YLabel }) }

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.filepath == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if err := conf.validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config in file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (c *RawFileConfig) validate() error {
	xMin := ptr.Deref(c.XMin, *defaultFileConfig.XMin)
	xMax := ptr.Deref(c.XMax, *defaultFileConfig.XMax)
	yMin := ptr.Deref(c.YMin, *defaultFileConfig.YMin)
	yMax := ptr.Deref(c.YMax, *defaultFileConfig.YMax)

	if xMin >= xMax {
		return pkgerrors.Errorf("xMin (%g) must be less than xMax (%g)", xMin, xMax)
	}
	if yMin >= yMax {
		return pkgerrors.Errorf("yMin (%g) must be less than yMax (%g)", yMin, yMax)
	}
	xStep := ptr.Deref(c.XStep, *defaultFileConfig.XStep)
	yStep := ptr.Deref(c.YStep, *defaultFileConfig.YStep)
	if xStep <= 0 {
		return pkgerrors.Errorf("xStep must be positive, got %g", xStep)
	}
	if yStep <= 0 {
		return pkgerrors.Errorf("yStep must be positive, got %g", yStep)
	}
	if n := math.Floor((xMax-xMin)/xStep) + 1; !(n <= MaxTicks) {
		return pkgerrors.Errorf("xStep %g gives %.0f ticks over [%g, %g], at most %d are allowed", xStep, n, xMin, xMax, MaxTicks)
	}
	if n := math.Floor((yMax-yMin)/yStep) + 1; !(n <= MaxTicks) {
		return pkgerrors.Errorf("yStep %g gives %.0f ticks over [%g, %g], at most %d are allowed", yStep, n, yMin, yMax, MaxTicks)
	}
	for name, d := range map[string]*int{
		"coefficientDigits": c.CoefficientDigits,
		"correlationDigits": c.CorrelationDigits,
	} {
		if d != nil && (*d < 0 || *d > maxDigits) {
			return pkgerrors.Errorf("%s must be between 0 and %d, got %d", name, maxDigits, *d)
		}
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"xRange":            []float64{f.XMin(), f.XMax(), f.XStep()},
		"yRange":            []float64{f.YMin(), f.YMax(), f.YStep()},
		"coefficientDigits": f.CoefficientDigits(),
		"correlationDigits": f.CorrelationDigits(),
		"editable":          f.Editable(),
	}
}
