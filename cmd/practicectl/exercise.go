package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Motzart/exercises-app/internal/practice/duration"
	"github.com/Motzart/exercises-app/internal/practice/exercises"
)

func newExerciseCmd(opts *options) *cobra.Command {
	exerciseCmd := &cobra.Command{
		Use:   "exercise",
		Short: "Manage exercises",
	}
	exerciseCmd.AddCommand(newExerciseAddCmd(opts))
	exerciseCmd.AddCommand(newExerciseListCmd(opts))
	return exerciseCmd
}

func newExerciseAddCmd(opts *options) *cobra.Command {
	var (
		in       exercises.NewExercise
		estimate string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an exercise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seconds, err := duration.Parse(estimate)
			if err != nil {
				return fmt.Errorf("invalid estimate %q: %w", estimate, err)
			}
			in.EstimatedTimeSeconds = seconds
			in.UserID = opts.userID

			store, ctx, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			ex, err := store.AddExercise(ctx, in)
			if err != nil {
				return fmt.Errorf("failed to add exercise: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ex.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "exercise name")
	cmd.Flags().StringVar(&in.Author, "author", "", "author or composer")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().StringVar(&estimate, "estimate", "", `daily target, e.g. "0h:15m"`)
	cmd.Flags().BoolVar(&in.Favorite, "favorite", false, "mark as favorite")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newExerciseListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exercises, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, ctx, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			list, err := store.ListExercises(ctx, opts.userID)
			if err != nil {
				return fmt.Errorf("failed to list exercises: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tAUTHOR\tTARGET\tFAV")
			for _, ex := range list {
				fav := ""
				if ex.Favorite {
					fav = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ex.ID, ex.Name, ex.Author, duration.Format(ex.EstimatedTimeSeconds), fav)
			}
			return w.Flush()
		},
	}
}
