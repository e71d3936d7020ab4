package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charlie0129/absorb/pkg/utils/ptr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return p
}

func assertDefaults(t *testing.T, c Config) {
	t.Helper()
	if c.XMin() != 45 || c.XMax() != 85 || c.XStep() != 5 {
		t.Fatalf("unexpected x range %v %v %v", c.XMin(), c.XMax(), c.XStep())
	}
	if c.YMin() != 0 || c.YMax() != 0.9 || c.YStep() != 0.1 {
		t.Fatalf("unexpected y range %v %v %v", c.YMin(), c.YMax(), c.YStep())
	}
	if c.CoefficientDigits() != 4 || c.CorrelationDigits() != 3 {
		t.Fatalf("unexpected digits %d %d", c.CoefficientDigits(), c.CorrelationDigits())
	}
	if !c.Editable() {
		t.Fatalf("expected editing enabled by default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := NewFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	assertDefaults(t, c)
}

func TestLoadEmptyPathAndFile(t *testing.T) {
	c, err := NewFile("")
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	assertDefaults(t, c)

	c, err = NewFile(writeConfig(t, "  \n"))
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	assertDefaults(t, c)
}

func TestLoadOverrides(t *testing.T) {
	c, err := NewFile(writeConfig(t, `{"yMin": -0.05, "yMax": 0.8, "correlationDigits": 4, "editable": false, "xLabel": "Urushiol (%)"}`))
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	if c.YMin() != -0.05 || c.YMax() != 0.8 {
		t.Fatalf("y range not overridden: %v %v", c.YMin(), c.YMax())
	}
	if c.CorrelationDigits() != 4 {
		t.Fatalf("expected 4 correlation digits, got %d", c.CorrelationDigits())
	}
	if c.Editable() {
		t.Fatalf("expected editing disabled")
	}
	if c.XLabel() != "Urushiol (%)" {
		t.Fatalf("unexpected x label %q", c.XLabel())
	}
	// Untouched keys keep their defaults.
	if c.XMin() != 45 || c.CoefficientDigits() != 4 || c.YLabel() != "Absorbance (A)" {
		t.Fatalf("defaults lost after partial override")
	}
	if len(c.LogrusFields()) == 0 {
		t.Fatalf("expected log fields")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"malformed":        `{"xMin": `,
		"inverted x":       `{"xMin": 90}`,
		"inverted y":       `{"yMin": 1, "yMax": 0.5}`,
		"zero step":        `{"xStep": 0}`,
		"negative step":    `{"yStep": -0.1}`,
		"too many digits":  `{"coefficientDigits": 11}`,
		"tiny step":        `{"yStep": 1e-12}`,
		"too many x ticks": `{"xMin": 0, "xMax": 1000, "xStep": 1}`,
		"huge range":       `{"yMin": -1e308, "yMax": 1e308}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewFile(writeConfig(t, content)); err == nil {
				t.Fatalf("expected error for %s", content)
			}
		})
	}
}

func TestLoadMaxTicks(t *testing.T) {
	c, err := NewFile(writeConfig(t, `{"xMin": 0, "xMax": 999, "xStep": 1}`))
	if err != nil {
		t.Fatalf("expected %d ticks to be accepted: %v", MaxTicks, err)
	}
	if c.XStep() != 1 || c.XMax() != 999 {
		t.Fatalf("unexpected x axis %v..%v by %v", c.XMin(), c.XMax(), c.XStep())
	}
}

func TestNewFileFromConfig(t *testing.T) {
	c := NewFileFromConfig(&RawFileConfig{XMax: ptr.To(100.0)}, "")
	if c.XMax() != 100 || c.XMin() != 45 {
		t.Fatalf("unexpected range %v..%v", c.XMin(), c.XMax())
	}
	assertDefaults(t, NewFileFromConfig(nil, ""))
}
