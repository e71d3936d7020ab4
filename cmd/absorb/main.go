package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/absorb/pkg/config"
	"github.com/charlie0129/absorb/pkg/dataset"
	"github.com/charlie0129/absorb/pkg/fit"
	"github.com/charlie0129/absorb/pkg/session"
)

var (
	logLevel   = "info"
	configPath = config.DefaultPath()
)

var (
	gBasic        = "Basic:"
	gTools        = "Tools:"
	commandGroups = []string{
		gBasic,
		gTools,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func loadConfig() (config.Config, error) {
	c, err := config.NewFile(configPath)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(c.LogrusFields()).WithField("path", configPath).Debug("config loaded")
	return c, nil
}

func handleCmdError(err error) {
	if errors.Is(err, fit.ErrInsufficientData) {
		fmt.Fprintln(os.Stderr, "\nError: not enough samples to fit a line")
		fmt.Fprintln(os.Stderr, "  - Give at least two --point x,y values")
	} else if errors.Is(err, fit.ErrDegenerateInput) {
		fmt.Fprintln(os.Stderr, "\nError: every sample has the same concentration")
		fmt.Fprintln(os.Stderr, "  - A line cannot be fitted through a vertical set of points")
	} else if errors.Is(err, fit.ErrNumericOverflow) {
		fmt.Fprintln(os.Stderr, "\nError: sample values are too large to fit")
		fmt.Fprintln(os.Stderr, "  - Check the table for a mistyped exponent such as 1e200")
	} else if errors.Is(err, dataset.ErrValidation) {
		fmt.Fprintln(os.Stderr, "\nError: invalid value")
		fmt.Fprintln(os.Stderr, "  - Numbers may carry a trailing % sign, e.g. 55% or 0.245")
	} else if errors.Is(err, session.ErrUnknownAction) {
		fmt.Fprintln(os.Stderr, "\nError: unknown action")
		fmt.Fprintln(os.Stderr, "  - Valid steps are axes, points, fit, reset and edit:<row>:<x|y>:<value>")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "absorb",
		Short: "absorb fits a spectrophotometric calibration curve",
		Long: `absorb fits a spectrophotometric calibration curve.

It plots absorbance against concentration for a small sample table, fits a
least-squares line and reads values off it. Without a subcommand it starts the
terminal UI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runUI(nil)
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewUICommand(),
		NewFitCommand(),
		NewTableCommand(),
		NewPredictCommand(),
		NewAnnotateCommand(),
		NewReplayCommand(),
		NewVersionCommand(),
	)

	return cmd
}
