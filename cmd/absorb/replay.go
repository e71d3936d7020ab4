package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/charlie0129/absorb/pkg/events"
	"github.com/charlie0129/absorb/pkg/report"
	"github.com/charlie0129/absorb/pkg/session"
)

func NewReplayCommand() *cobra.Command {
	var (
		points     []string
		showEvents bool
	)

	cmd := &cobra.Command{
		Use:     "replay [step]...",
		Short:   "Run UI actions without a terminal and print what happens",
		GroupID: gTools,
		Long: `Run UI actions against a session without a terminal and print each outcome.

Steps are axes, points, fit, reset, or edit:<row>:<x|y>:<value> with rows
numbered from 1. Steps that fail are reported and the rest still run.

Example:
  absorb replay axes points edit:2:y:0.2 fit points fit`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			samples, err := parsePoints(points)
			if err != nil {
				return err
			}

			steps := make([]step, 0, len(args))
			for _, a := range args {
				s, err := parseStep(a)
				if err != nil {
					return err
				}
				steps = append(steps, s)
			}

			hub := events.NewEventHub()
			opts := []session.Option{session.WithEventHub(hub)}
			if samples != nil {
				opts = append(opts, session.WithSamples(samples))
			}
			s := session.New(opts...)

			var sub chan events.Event
			if showEvents {
				sub = hub.Subscribe()
				defer hub.Unsubscribe(sub)
			}

			return replay(cmd.OutOrStdout(), s, sub, steps, precisionOf(c))
		},
	}
	addPointsFlag(cmd, &points)
	cmd.Flags().BoolVar(&showEvents, "events", false, "also print the events each step publishes")

	return cmd
}

// replay runs steps in order and returns the first error, if any, after all
// of them have run.
func replay(w io.Writer, s *session.Session, sub chan events.Event, steps []step, prec report.Precision) error {
	var errs []error

	for i, st := range steps {
		prefix := bold("%2d %-16s", i+1, st.raw)

		if st.edit {
			if err := s.Edit(st.index, st.field, st.value); err != nil {
				fmt.Fprintf(w, "%s %s %v\n", prefix, bad("error"), err)
				errs = append(errs, err)
			} else {
				fmt.Fprintf(w, "%s %s row %d %s = %s\n", prefix, good("edited"), st.index+1, st.field, st.value)
			}
			printEvents(w, sub)
			continue
		}

		out, err := s.Dispatch(st.action)
		switch {
		case err != nil:
			fmt.Fprintf(w, "%s %s %v\n", prefix, bad("error"), err)
			errs = append(errs, err)
		case !out.Applied:
			fmt.Fprintf(w, "%s ignored in %s\n", prefix, out.From)
		case out.Fit != nil:
			fmt.Fprintf(w, "%s %s -> %s: %s, %s\n", prefix, out.From, good("%s", out.To), report.Formula(*out.Fit, prec), report.Correlation(*out.Fit, prec))
		default:
			fmt.Fprintf(w, "%s %s -> %s: %s\n", prefix, out.From, good("%s", out.To), session.Message(st.action))
		}
		printEvents(w, sub)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d steps failed: %w", len(errs), len(steps), errors.Join(errs...))
	}
	return nil
}

func printEvents(w io.Writer, sub chan events.Event) {
	if sub == nil {
		return
	}
	for _, ev := range events.Drain(sub) {
		fmt.Fprintf(w, "   %s %s\n", ev.Name, string(ev.Data))
	}
}
