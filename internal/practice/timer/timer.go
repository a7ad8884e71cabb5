// Package timer measures active practice time of a single run. Time is
// integrated from clock readings taken at state transitions, so a late or
// skipped display tick never changes the recorded duration.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Motzart/exercises-app/internal/practice/sessions"
)

type State int

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, state := range []State{Idle, Running, Paused, Stopped} {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown timer state %q", text)
}

// Interval is one closed running period.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Timer struct {
	mutex sync.Mutex
	now   func() time.Time

	exerciseID   string
	state        State
	startedAt    time.Time
	endedAt      time.Time
	runningSince time.Time
	accumulated  time.Duration
	intervals    []Interval
}

type Option func(*Timer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		t.now = now
	}
}

func New(exerciseID string, opts ...Option) *Timer {
	t := &Timer{
		now:        time.Now,
		exerciseID: exerciseID,
		state:      Idle,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Timer) ExerciseID() string {
	return t.exerciseID
}

func (t *Timer) State() State {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.state
}

func (t *Timer) StartedAt() time.Time {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.startedAt
}

// Start begins the run. On a paused timer it resumes.
func (t *Timer) Start() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	switch t.state {
	case Idle:
		now := t.now()
		t.startedAt = now
		t.runningSince = now
		t.state = Running
		return true
	case Paused:
		return t.resumeLocked()
	}
	return false
}

func (t *Timer) Pause() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.state != Running {
		return false
	}
	t.closeIntervalLocked(t.now())
	t.state = Paused
	return true
}

func (t *Timer) Resume() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.state != Paused {
		return false
	}
	return t.resumeLocked()
}

func (t *Timer) resumeLocked() bool {
	t.runningSince = t.now()
	t.state = Running
	return true
}

// Finish stops the timer and returns the session it measured, without the
// user id. An idle timer emits nothing and stays idle.
func (t *Timer) Finish() (sessions.Input, bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.state != Running && t.state != Paused {
		return sessions.Input{}, false
	}

	now := t.now()
	if t.state == Running {
		t.closeIntervalLocked(now)
	}
	t.state = Stopped
	t.endedAt = now

	return sessions.Input{
		ExerciseID:      t.exerciseID,
		StartedAt:       t.startedAt,
		EndedAt:         t.endedAt,
		DurationSeconds: int64(t.accumulated / time.Second),
	}, true
}

// Elapsed is the active time so far, live while running.
func (t *Timer) Elapsed() time.Duration {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.state == Running {
		if live := t.now().Sub(t.runningSince); live > 0 {
			return t.accumulated + live
		}
	}
	return t.accumulated
}

func (t *Timer) Intervals() []Interval {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	intervals := make([]Interval, len(t.intervals))
	copy(intervals, t.intervals)
	return intervals
}

func (t *Timer) closeIntervalLocked(now time.Time) {
	// a clock stepping backwards must not shrink the total
	if now.Before(t.runningSince) {
		now = t.runningSince
	}
	t.accumulated += now.Sub(t.runningSince)
	t.intervals = append(t.intervals, Interval{Start: t.runningSince, End: now})
}

// Watch calls fn with the elapsed time on every tick until ctx is done or the
// timer stops. It blocks the calling goroutine.
func Watch(ctx context.Context, t *Timer, interval time.Duration, fn func(elapsed time.Duration)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if t.State() == Stopped {
				return nil
			}
			fn(t.Elapsed())
		}
	}
}
