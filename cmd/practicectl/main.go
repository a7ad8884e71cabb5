// practicectl keeps an offline practice journal: exercises, timed sessions
// and the stats derived from them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Motzart/exercises-app/internal/auth"
	"github.com/Motzart/exercises-app/internal/logging"
	"github.com/Motzart/exercises-app/internal/practice/localstore"
)

const defaultUser = "local"

type options struct {
	dbPath   string
	userID   string
	timezone string
	logLevel string
	now      func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(&options{now: time.Now}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "practicectl",
		Short:         "Offline practice journal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			log.SetLevel(logging.GetLevel(opts.logLevel))
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", defaultDBPath(), "journal database path")
	rootCmd.PersistentFlags().StringVar(&opts.userID, "user", defaultUser, "journal owner")
	rootCmd.PersistentFlags().StringVar(&opts.timezone, "tz", "Local", "timezone calendar days are cut in")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(newExerciseCmd(opts))
	rootCmd.AddCommand(newPracticeCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newMigrateCmd())

	return rootCmd
}

// openStore opens the journal and returns a context carrying the owner.
func (o *options) openStore(ctx context.Context) (*localstore.Store, context.Context, error) {
	store, err := localstore.Open(o.dbPath, localstore.WithClock(o.now))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	log.Debugf("journal opened: %s", o.dbPath)
	return store, auth.WithUserID(ctx, o.userID), nil
}

func (o *options) location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", o.timezone, err)
	}
	return loc, nil
}

func closeStore(store *localstore.Store) {
	if err := store.Close(); err != nil {
		log.Errorf("failed to close journal: %s", err)
	}
}
