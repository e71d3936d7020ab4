package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charlie0129/absorb/pkg/dataset"
	"github.com/charlie0129/absorb/pkg/session"
	"github.com/charlie0129/absorb/pkg/tui"
	"github.com/charlie0129/absorb/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewUICommand() *cobra.Command {
	var points []string

	cmd := &cobra.Command{
		Use:     "ui",
		Short:   "Start the terminal UI",
		GroupID: gBasic,
		Long: `Start the terminal UI.

Keys:
  1/a  draw axes        2/p  plot points
  3/f  fit the data     4/r  reset
  arrows or hjkl select a cell, e/Enter edits it, Esc cancels
  [ and ] move the value label along the fitted line, clicking the line works too
  q quits`,
		RunE: func(_ *cobra.Command, _ []string) error {
			samples, err := parsePoints(points)
			if err != nil {
				return err
			}
			return runUI(samples)
		},
	}

	addPointsFlag(cmd, &points)

	return cmd
}

func runUI(samples []dataset.Sample) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}

	var opts []session.Option
	if len(samples) > 0 {
		opts = append(opts, session.WithSamples(samples))
	}

	app := tui.New(c, opts...)
	if err := app.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
