package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charlie0129/absorb/pkg/annotation"
	"github.com/charlie0129/absorb/pkg/config"
	"github.com/charlie0129/absorb/pkg/dataset"
	"github.com/charlie0129/absorb/pkg/fit"
	"github.com/charlie0129/absorb/pkg/report"
)

func precisionOf(c config.Config) report.Precision {
	return report.Precision{
		Coefficients: c.CoefficientDigits(),
		Correlation:  c.CorrelationDigits(),
	}
}

// fitPoints loads the config and fits the flag samples or the built-in table.
func fitPoints(points []string) (fit.Result, report.Precision, error) {
	c, err := loadConfig()
	if err != nil {
		return fit.Result{}, report.Precision{}, err
	}
	samples, err := samplesOrDefault(points)
	if err != nil {
		return fit.Result{}, report.Precision{}, err
	}
	r, err := fit.Fit(samples)
	if err != nil {
		return fit.Result{}, report.Precision{}, fmt.Errorf("failed to fit: %w", err)
	}
	return r, precisionOf(c), nil
}

func NewFitCommand() *cobra.Command {
	var points []string

	cmd := &cobra.Command{
		Use:     "fit",
		Short:   "Fit a line through the samples",
		GroupID: gBasic,
		Long: `Fit a least-squares line through the samples and print the formula and the correlation coefficient.

Without --point the built-in table is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, prec, err := fitPoints(points)
			if err != nil {
				return err
			}
			printFit(cmd.OutOrStdout(), r, prec)
			return nil
		},
	}
	addPointsFlag(cmd, &points)

	return cmd
}

func printFit(w io.Writer, r fit.Result, prec report.Precision) {
	fmt.Fprintf(w, "%s %d\n", bold("Samples:"), r.N)
	fmt.Fprintf(w, "%s %s\n", bold("Formula:"), good("%s", report.Formula(r, prec)))
	fmt.Fprintf(w, "%s %s\n", bold("Correlation:"), report.Correlation(r, prec))
}

func NewTableCommand() *cobra.Command {
	var points []string

	cmd := &cobra.Command{
		Use:     "table",
		Short:   "Print the samples",
		GroupID: gBasic,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			samples, err := samplesOrDefault(points)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), c, samples)
			return nil
		},
	}
	addPointsFlag(cmd, &points)

	return cmd
}

func printTable(w io.Writer, c config.Config, samples []dataset.Sample) {
	xw := max(len(c.XLabel()), 6)
	fmt.Fprintf(w, "%s\n", bold("%-4s%-*s  %s", "#", xw, c.XLabel(), c.YLabel()))
	for i, s := range samples {
		fmt.Fprintf(w, "%-4d%-*s  %.3f\n", i+1, xw, fmt.Sprintf("%.0f%%", s.X), s.Y)
	}
}

func NewPredictCommand() *cobra.Command {
	var points []string

	cmd := &cobra.Command{
		Use:     "predict [absorbance]",
		Short:   "Read the concentration for an absorbance off the fitted line",
		GroupID: gTools,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseFloatArg(args, "absorbance")
			if err != nil {
				return err
			}
			r, prec, err := fitPoints(points)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Concentration(r, a, prec))
			return nil
		},
	}
	addPointsFlag(cmd, &points)

	return cmd
}

func NewAnnotateCommand() *cobra.Command {
	var (
		points  []string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:     "annotate [concentration]",
		Short:   "Show the label the plot would draw for a point on the fitted line",
		GroupID: gTools,
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseFloatArg(args, "concentration")
			if err != nil {
				return err
			}
			r, _, err := fitPoints(points)
			if err != nil {
				return err
			}
			p := annotation.Place(x, r.PredictY(x))
			if jsonOut {
				b, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			printPlacement(cmd.OutOrStdout(), p)
			return nil
		},
	}
	addPointsFlag(cmd, &points)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the placement as JSON")

	return cmd
}

func printPlacement(w io.Writer, p annotation.Placement) {
	fmt.Fprintf(w, "%s %s\n", bold("Label:"), strings.Join(p.Lines, " "))
	fmt.Fprintf(w, "%s (%.3f, %.3f)\n", bold("Point:"), p.X, p.Y)
	fmt.Fprintf(w, "%s (%.3f, %.3f) %s bucket\n", bold("Box:"), p.LabelX, p.LabelY, p.Bucket)
}
