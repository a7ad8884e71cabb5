package sessions

import (
	"fmt"
	"time"

	"github.com/Motzart/exercises-app/internal/practice"
)

var (
	ErrInvalidSession  = fmt.Errorf("session %w", practice.ErrInvalidInput)
	ErrUnknownExercise = fmt.Errorf("session exercise %w", practice.ErrNotFound)
)

// Record is one completed practice run. DurationSeconds is the measured
// active time; it excludes pauses and so can be shorter than the
// StartedAt..EndedAt span.
type Record struct {
	ID              string    `json:"id"`
	ExerciseID      string    `json:"exerciseId"`
	ExerciseName    string    `json:"exerciseName,omitempty"`
	UserID          string    `json:"userId"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	DurationSeconds int64     `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Input struct {
	ExerciseID      string    `json:"exerciseId"`
	UserID          string    `json:"-"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	DurationSeconds int64     `json:"durationSeconds"`
}

func (in Input) Validate() error {
	switch {
	case in.ExerciseID == "":
		return fmt.Errorf("%w: exercise id empty", ErrInvalidSession)
	case in.UserID == "":
		return practice.ErrNotAuthenticated
	case in.StartedAt.IsZero() || in.EndedAt.IsZero():
		return fmt.Errorf("%w: started/ended at missing", ErrInvalidSession)
	case in.EndedAt.Before(in.StartedAt):
		return fmt.Errorf("%w: ended before started", ErrInvalidSession)
	case in.DurationSeconds < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidSession)
	case in.DurationSeconds > int64(in.EndedAt.Sub(in.StartedAt)/time.Second):
		return fmt.Errorf("%w: duration %ds exceeds wall clock span", ErrInvalidSession, in.DurationSeconds)
	}
	return nil
}

// Filter selects records by exercise and by an inclusive created_at window.
// Zero values mean no restriction.
type Filter struct {
	ExerciseID string
	From       *time.Time
	To         *time.Time
}

type LastSession struct {
	ExerciseID      string    `json:"exerciseId"`
	StartedAt       time.Time `json:"startedAt"`
	DurationSeconds int64     `json:"durationSeconds"`
}

// Matches reports whether r passes f. Stores without query support filter
// with it client side.
func (f Filter) Matches(r Record) bool {
	if f.ExerciseID != "" && r.ExerciseID != f.ExerciseID {
		return false
	}
	if f.From != nil && r.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
