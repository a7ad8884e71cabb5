package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/practice/sessions"
	"github.com/Motzart/exercises-app/internal/telemetry/metrics"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=timer_mocks_test.go -package=timer_test

var (
	ErrTimerNotFound    = fmt.Errorf("timer %w", practice.ErrNotFound)
	ErrNothingToFinish  = fmt.Errorf("timer never started, nothing to finish: %w", practice.ErrInvalidInput)
	ErrTimerAlreadyDone = fmt.Errorf("timer already finished: %w", practice.ErrInvalidInput)
)

const (
	// DefaultIdleTTL is how long an untouched timer stays registered.
	DefaultIdleTTL = 12 * time.Hour
	sweepInterval  = time.Minute
)

type sessionsStore interface {
	Insert(ctx context.Context, in sessions.Input) (*sessions.Record, error)
}

// Snapshot is the externally visible view of a registered timer.
type Snapshot struct {
	ID             string     `json:"id"`
	ExerciseID     string     `json:"exerciseId"`
	State          State      `json:"state"`
	ElapsedSeconds int64      `json:"elapsedSeconds"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	Intervals      []Interval `json:"intervals"`
	// Changed is false when the command was ignored in the current state.
	Changed bool `json:"changed"`
}

type entry struct {
	userID  string
	timer   *Timer
	touched time.Time

	// finishMutex serializes Finish calls on one timer
	finishMutex sync.Mutex
	// pending holds a finished session whose insert failed, for retry
	pending *sessions.Input
	done    bool
}

// Registry keeps the open timers of all users, one per practice view.
// Timers not touched for the idle TTL are dropped like a discard.
type Registry struct {
	mutex     sync.Mutex
	timers    map[string]*entry
	store     sessionsStore
	metrics   *metrics.Manager
	clock     func() time.Time
	newID     func() string
	idleTTL   time.Duration
	lastSweep time.Time
}

type RegistryOption func(*Registry)

func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.idleTTL = ttl
		}
	}
}

func NewRegistry(store sessionsStore, metrics *metrics.Manager, clock func() time.Time, opts ...RegistryOption) *Registry {
	if clock == nil {
		clock = time.Now
	}
	r := &Registry{
		timers:  map[string]*entry{},
		store:   store,
		metrics: metrics,
		clock:   clock,
		newID:   uuid.NewString,
		idleTTL: DefaultIdleTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Open(userID, exerciseID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, practice.ErrNotAuthenticated
	}
	if exerciseID == "" {
		return Snapshot{}, fmt.Errorf("%w: exercise id empty", practice.ErrInvalidInput)
	}

	id := r.newID()
	t := New(exerciseID, WithClock(r.clock))

	r.mutex.Lock()
	now := r.clock()
	if now.Sub(r.lastSweep) >= sweepInterval {
		r.sweepLocked(now)
	}
	r.timers[id] = &entry{userID: userID, timer: t, touched: now}
	r.mutex.Unlock()

	r.metrics.GaugeOpenTimers.Inc()
	log.Debugf("timer [%s] opened for exercise [%s]", id, exerciseID)

	return snapshot(id, t, true), nil
}

func (r *Registry) Get(userID, id string) (Snapshot, error) {
	e, err := r.lookup(userID, id)
	if err != nil {
		return Snapshot{}, err
	}
	return snapshot(id, e.timer, false), nil
}

func (r *Registry) Start(userID, id string) (Snapshot, error) {
	return r.command(userID, id, (*Timer).Start)
}

func (r *Registry) Pause(userID, id string) (Snapshot, error) {
	return r.command(userID, id, (*Timer).Pause)
}

func (r *Registry) Resume(userID, id string) (Snapshot, error) {
	return r.command(userID, id, (*Timer).Resume)
}

func (r *Registry) command(userID, id string, cmd func(*Timer) bool) (Snapshot, error) {
	e, err := r.lookup(userID, id)
	if err != nil {
		return Snapshot{}, err
	}
	changed := cmd(e.timer)
	return snapshot(id, e.timer, changed), nil
}

// Finish stops the timer and persists its session. The timer leaves the
// registry only once the session is stored; a failed insert can be retried
// by finishing again.
func (r *Registry) Finish(ctx context.Context, userID, id string) (rec *sessions.Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timer.registry.finish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	e, err := r.lookup(userID, id)
	if err != nil {
		return nil, err
	}

	e.finishMutex.Lock()
	defer e.finishMutex.Unlock()

	if e.done {
		return nil, ErrTimerAlreadyDone
	}

	if e.pending == nil {
		in, ok := e.timer.Finish()
		if !ok {
			return nil, ErrNothingToFinish
		}
		in.UserID = e.userID
		e.pending = &in
	}

	rec, err = r.store.Insert(ctx, *e.pending)
	if err != nil {
		// rejected input never becomes valid, drop the timer
		if errors.Is(err, practice.ErrInvalidInput) || errors.Is(err, practice.ErrNotFound) {
			e.done = true
			r.remove(id)
		}
		return nil, fmt.Errorf("persist timer session: %w", err)
	}

	e.done = true
	r.remove(id)
	r.metrics.CounterSessionsRecorded.Inc()
	r.metrics.CounterSessionSeconds.Add(float64(rec.DurationSeconds))
	log.Debugf("timer [%s] finished: session [%s], %ds", id, rec.ID, rec.DurationSeconds)

	return rec, nil
}

// Discard drops the timer without persisting anything.
func (r *Registry) Discard(userID, id string) error {
	e, err := r.lookup(userID, id)
	if err != nil {
		return err
	}

	state := e.timer.State()
	r.remove(id)
	if state == Running || state == Paused {
		r.metrics.CounterTimersDiscarded.Inc()
	}
	log.Debugf("timer [%s] discarded in state %s", id, state)
	return nil
}

func (r *Registry) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.timers)
}

func (r *Registry) lookup(userID, id string) (*entry, error) {
	if userID == "" {
		return nil, practice.ErrNotAuthenticated
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	e, ok := r.timers[id]
	if !ok || e.userID != userID {
		return nil, ErrTimerNotFound
	}
	now := r.clock()
	if r.expired(e, now) {
		r.dropLocked(id, e)
		return nil, ErrTimerNotFound
	}
	e.touched = now
	return e, nil
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return now.Sub(e.touched) > r.idleTTL
}

func (r *Registry) sweepLocked(now time.Time) {
	r.lastSweep = now
	for id, e := range r.timers {
		if r.expired(e, now) {
			r.dropLocked(id, e)
		}
	}
}

func (r *Registry) dropLocked(id string, e *entry) {
	delete(r.timers, id)
	r.metrics.GaugeOpenTimers.Dec()

	state := e.timer.State()
	if state == Running || state == Paused {
		r.metrics.CounterTimersDiscarded.Inc()
	}
	log.Debugf("timer [%s] expired in state %s", id, state)
}

func (r *Registry) remove(id string) {
	r.mutex.Lock()
	_, ok := r.timers[id]
	delete(r.timers, id)
	r.mutex.Unlock()

	if ok {
		r.metrics.GaugeOpenTimers.Dec()
	}
}

func snapshot(id string, t *Timer, changed bool) Snapshot {
	s := Snapshot{
		ID:             id,
		ExerciseID:     t.ExerciseID(),
		State:          t.State(),
		ElapsedSeconds: int64(t.Elapsed() / time.Second),
		Intervals:      t.Intervals(),
		Changed:        changed,
	}
	if startedAt := t.StartedAt(); !startedAt.IsZero() {
		s.StartedAt = &startedAt
	}
	return s
}
