package timer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Motzart/exercises-app/internal/practice/timer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

func TestTimer_Accumulation(t *testing.T) {
	clock := newFakeClock()
	startedAt := clock.Now()
	tm := timer.New("ex-1", timer.WithClock(clock.Now))
	assert.Equal(t, timer.Idle, tm.State())

	require.True(t, tm.Start())
	clock.Advance(5 * time.Second)
	assert.Equal(t, 5*time.Second, tm.Elapsed())

	require.True(t, tm.Pause())
	clock.Advance(10 * time.Second)
	assert.Equal(t, 5*time.Second, tm.Elapsed(), "paused time is not counted")

	require.True(t, tm.Resume())
	clock.Advance(3 * time.Second)

	in, ok := tm.Finish()
	require.True(t, ok)
	assert.Equal(t, timer.Stopped, tm.State())
	assert.Equal(t, "ex-1", in.ExerciseID)
	assert.Equal(t, int64(8), in.DurationSeconds)
	assert.Equal(t, startedAt, in.StartedAt)
	assert.Equal(t, 18*time.Second, in.EndedAt.Sub(in.StartedAt))

	intervals := tm.Intervals()
	require.Len(t, intervals, 2)
	assert.Equal(t, 5*time.Second, intervals[0].End.Sub(intervals[0].Start))
	assert.Equal(t, 3*time.Second, intervals[1].End.Sub(intervals[1].Start))
	assert.False(t, intervals[1].Start.Before(intervals[0].End))
}

func TestTimer_FinishWhilePaused(t *testing.T) {
	clock := newFakeClock()
	tm := timer.New("ex-1", timer.WithClock(clock.Now))

	require.True(t, tm.Start())
	clock.Advance(90*time.Second + 700*time.Millisecond)
	require.True(t, tm.Pause())
	clock.Advance(time.Minute)

	in, ok := tm.Finish()
	require.True(t, ok)
	assert.Equal(t, int64(90), in.DurationSeconds, "truncated to whole seconds")
	assert.Len(t, tm.Intervals(), 1)
}

func TestTimer_IgnoredCommands(t *testing.T) {
	clock := newFakeClock()
	tm := timer.New("ex-1", timer.WithClock(clock.Now))

	assert.False(t, tm.Pause())
	assert.False(t, tm.Resume())
	_, ok := tm.Finish()
	assert.False(t, ok, "idle timer emits nothing")
	assert.Equal(t, timer.Idle, tm.State())

	require.True(t, tm.Start())
	firstStart := tm.StartedAt()
	clock.Advance(time.Second)
	assert.False(t, tm.Start(), "start while running")
	assert.False(t, tm.Resume())
	assert.Equal(t, firstStart, tm.StartedAt())

	require.True(t, tm.Pause())
	assert.False(t, tm.Pause())
	clock.Advance(time.Second)
	assert.True(t, tm.Start(), "start while paused resumes")
	assert.Equal(t, timer.Running, tm.State())
	assert.Equal(t, firstStart, tm.StartedAt(), "started at captured once")

	_, ok = tm.Finish()
	require.True(t, ok)
	assert.False(t, tm.Start())
	assert.False(t, tm.Pause())
	_, ok = tm.Finish()
	assert.False(t, ok, "stopped is terminal")
}

func TestTimer_ClockStepsBack(t *testing.T) {
	clock := newFakeClock()
	tm := timer.New("ex-1", timer.WithClock(clock.Now))

	require.True(t, tm.Start())
	clock.Advance(-time.Minute)
	require.True(t, tm.Pause())
	assert.Equal(t, time.Duration(0), tm.Elapsed())
}

func TestTimer_ClockStepsBackWhileRunning(t *testing.T) {
	clock := newFakeClock()
	tm := timer.New("ex-1", timer.WithClock(clock.Now))

	require.True(t, tm.Start())
	clock.Advance(10 * time.Second)
	require.True(t, tm.Pause())
	require.True(t, tm.Resume())

	clock.Advance(-time.Hour)
	assert.Equal(t, timer.Running, tm.State())
	assert.Equal(t, 10*time.Second, tm.Elapsed())

	clock.Advance(time.Hour + 5*time.Second)
	assert.Equal(t, 15*time.Second, tm.Elapsed())
}

func TestStateText(t *testing.T) {
	for state, text := range map[timer.State]string{
		timer.Idle:     "idle",
		timer.Running:  "running",
		timer.Paused:   "paused",
		timer.Stopped:  "stopped",
		timer.State(9): "unknown",
	} {
		b, err := state.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, text, string(b))
	}
}

func TestWatch(t *testing.T) {
	tm := timer.New("ex-1")
	require.True(t, tm.Start())

	ticks := make(chan time.Duration, 100)
	done := make(chan error)
	go func() {
		done <- timer.Watch(context.Background(), tm, 5*time.Millisecond, func(elapsed time.Duration) {
			ticks <- elapsed
		})
	}()

	first := <-ticks
	second := <-ticks
	assert.GreaterOrEqual(t, second, first)

	_, ok := tm.Finish()
	require.True(t, ok)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop with the timer")
	}
}

func TestWatch_ContextCancel(t *testing.T) {
	tm := timer.New("ex-1")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() {
		done <- timer.Watch(ctx, tm, time.Millisecond, func(time.Duration) {})
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
	assert.Equal(t, timer.Idle, tm.State())
}
