package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charlie0129/absorb/pkg/dataset"
	"github.com/charlie0129/absorb/pkg/display"
	"github.com/charlie0129/absorb/pkg/session"
)

func parseFloatArg(args []string, valueName string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("invalid number of arguments")
	}

	value, err := dataset.ParseValue(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", valueName, err)
	}

	return value, nil
}

// parsePoints parses repeated "x,y" flags. No flags means the built-in table.
func parsePoints(raw []string) ([]dataset.Sample, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	samples := make([]dataset.Sample, 0, len(raw))
	for _, r := range raw {
		xs, ys, ok := strings.Cut(r, ",")
		if !ok {
			return nil, fmt.Errorf("invalid point %q: expected concentration,absorbance: %w", r, dataset.ErrValidation)
		}
		x, err := dataset.ParseValue(xs)
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", r, err)
		}
		y, err := dataset.ParseValue(ys)
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", r, err)
		}
		samples = append(samples, dataset.Sample{X: x, Y: y})
	}

	return samples, nil
}

func addPointsFlag(cmd *cobra.Command, points *[]string) {
	cmd.Flags().StringArrayVar(points, "point", nil, "sample as concentration,absorbance (repeatable); replaces the built-in table")
}

// samplesOrDefault returns the parsed flag samples, or the built-in table.
func samplesOrDefault(points []string) ([]dataset.Sample, error) {
	samples, err := parsePoints(points)
	if err != nil {
		return nil, err
	}
	if samples == nil {
		samples = dataset.DefaultSamples()
	}
	return samples, nil
}

// step is one replay instruction: either a display action or a cell edit.
type step struct {
	raw    string
	action display.Action

	edit  bool
	index int
	field dataset.Field
	value string
}

// parseStep accepts an action name or edit:<row>:<x|y>:<value>. Rows are
// numbered from 1 as in the table output.
func parseStep(s string) (step, error) {
	if rest, ok := strings.CutPrefix(s, "edit:"); ok {
		parts := strings.SplitN(rest, ":", 3)
		if len(parts) != 3 {
			return step{}, fmt.Errorf("invalid step %q: expected edit:<row>:<x|y>:<value>", s)
		}
		row, err := strconv.Atoi(parts[0])
		if err != nil {
			return step{}, fmt.Errorf("invalid row in step %q: %v", s, err)
		}
		field, err := dataset.ParseField(parts[1])
		if err != nil {
			return step{}, fmt.Errorf("invalid step %q: %w", s, err)
		}
		return step{raw: s, edit: true, index: row - 1, field: field, value: parts[2]}, nil
	}

	a, err := display.ParseAction(s)
	if err != nil {
		return step{}, fmt.Errorf("%w: %q", session.ErrUnknownAction, s)
	}
	return step{raw: s, action: a}, nil
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func good(format string, a ...interface{}) string {
	return color.New(color.Bold, color.FgGreen).Sprintf(format, a...)
}

func bad(format string, a ...interface{}) string {
	return color.New(color.Bold, color.FgRed).Sprintf(format, a...)
}
