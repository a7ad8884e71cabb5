package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Motzart/exercises-app/internal/practice/duration"
	"github.com/Motzart/exercises-app/internal/practice/stats"
)

func newStatsCmd(opts *options) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show practice totals, streak and top exercises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}

			store, ctx, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			engine := stats.NewEngine(store, stats.WithLocation(loc), stats.WithClock(opts.now))

			summary, err := engine.Summary(ctx)
			if err != nil {
				return fmt.Errorf("failed to get summary: %w", err)
			}
			streak, err := engine.PracticeStreak(ctx)
			if err != nil {
				return fmt.Errorf("failed to get streak: %w", err)
			}
			ranking, err := engine.TopExercisesByTime(ctx, top, nil, nil)
			if err != nil {
				return fmt.Errorf("failed to get top exercises: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, row := range []struct {
				label   string
				seconds int64
			}{
				{"today", summary.Today},
				{"yesterday", summary.Yesterday},
				{"this week", summary.ThisWeek},
				{"last week", summary.LastWeek},
				{"this month", summary.ThisMonth},
				{"last month", summary.LastMonth},
				{"total", summary.Total},
			} {
				fmt.Fprintf(w, "%s\t%s\n", row.label, duration.Format(row.seconds))
			}
			fmt.Fprintf(w, "streak\t%d days\n", streak)

			if len(ranking) > 0 {
				fmt.Fprintln(w, "\nTOP\tTIME\tSESSIONS")
				for _, ex := range ranking {
					fmt.Fprintf(w, "%s\t%s\t%d\n", ex.ExerciseName, duration.Format(ex.TotalSeconds), ex.SessionCount)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "number of exercises to rank")
	return cmd
}
