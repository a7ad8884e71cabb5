package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Motzart/exercises-app/internal/practice/duration"
	"github.com/Motzart/exercises-app/internal/practice/timer"
)

func newPracticeCmd(opts *options) *cobra.Command {
	var tick time.Duration
	cmd := &cobra.Command{
		Use:   "practice <exercise-id>",
		Short: "Time a practice session",
		Long:  "Starts a timer for the exercise. Enter pauses and resumes, f saves the session, q discards it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tick <= 0 {
				return fmt.Errorf("tick must be positive, got %s", tick)
			}

			store, ctx, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(store)

			ex, err := store.GetExercise(ctx, opts.userID, args[0])
			if err != nil {
				return fmt.Errorf("failed to get exercise: %w", err)
			}

			out := &syncWriter{w: cmd.OutOrStdout()}
			t := timer.New(ex.ID, timer.WithClock(opts.now))
			t.Start()
			out.printf("practicing %s: Enter pauses/resumes, f saves, q discards\n", ex.Name)

			loopCtx, cancel := context.WithCancel(ctx)
			watchDone := make(chan struct{})
			go func() {
				defer close(watchDone)
				_ = timer.Watch(loopCtx, t, tick, func(elapsed time.Duration) {
					out.printf("\r%-8s %s ", t.State(), duration.Format(int64(elapsed/time.Second)))
				})
			}()
			defer func() {
				cancel()
				<-watchDone
			}()

			input := readLines(loopCtx, cmd.InOrStdin())
			for {
				select {
				case <-ctx.Done():
					out.printf("\ninterrupted, session discarded\n")
					return nil
				case line, ok := <-input:
					if !ok {
						out.printf("\ninput closed, session discarded\n")
						return nil
					}
					switch strings.ToLower(strings.TrimSpace(line)) {
					case "":
						if !t.Pause() {
							t.Resume()
						}
						out.printf("\r%-8s %s\n", t.State(), duration.Format(int64(t.Elapsed()/time.Second)))
					case "f":
						in, ok := t.Finish()
						if !ok {
							return fmt.Errorf("timer not running")
						}
						in.UserID = opts.userID
						record, err := store.Insert(ctx, in)
						if err != nil {
							return fmt.Errorf("failed to save session: %w", err)
						}
						log.Debugf("session [%s] saved", record.ID)
						out.printf("\nsaved %s of %s\n", duration.Format(record.DurationSeconds), ex.Name)
						return nil
					case "q":
						out.printf("\nsession discarded\n")
						return nil
					default:
						out.printf("unknown command %q\n", line)
					}
				}
			}
		},
	}
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "display refresh interval")
	return cmd
}

// readLines feeds lines of r into the returned channel until r ends or ctx
// is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// syncWriter serializes the ticker output with command output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}
