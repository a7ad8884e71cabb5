// Package stats derives practice totals, day series, rankings and streaks
// from a user's session records.
package stats

import (
	"context"
	"time"

	"github.com/Motzart/exercises-app/internal/auth"
	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/practice/calendar"
	"github.com/Motzart/exercises-app/internal/practice/sessions"
	"github.com/Motzart/exercises-app/internal/telemetry/metrics"
)

//go:generate mockgen -source=$GOFILE -destination=stats_mocks_test.go -package=stats_test

type sessionsStore interface {
	List(ctx context.Context, userID string, filter sessions.Filter) ([]sessions.Record, error)
}

// aggregateStore is implemented by stores that can sum and count server side.
// Results must equal the client side reduction of List.
type aggregateStore interface {
	SumDuration(ctx context.Context, userID string, filter sessions.Filter) (int64, error)
	CountDistinctDays(ctx context.Context, userID string, filter sessions.Filter, loc *time.Location) (int, error)
}

type Engine struct {
	store   sessionsStore
	agg     aggregateStore
	now     func() time.Time
	loc     *time.Location
	metrics *metrics.Manager
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLocation sets the timezone that calendar days are cut in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(store sessionsStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
		loc:   time.UTC,
	}
	if agg, ok := store.(aggregateStore); ok {
		e.agg = agg
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) observe(op string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.HistAggregationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (e *Engine) clientFallback() {
	if e.metrics != nil {
		e.metrics.CounterAggregationStoreFalls.Inc()
	}
}

func (e *Engine) list(ctx context.Context, userID string, filter sessions.Filter) ([]sessions.Record, error) {
	records, err := e.store.List(ctx, userID, filter)
	if err != nil {
		return nil, practice.StoreError("list sessions", err)
	}
	return records, nil
}

func (e *Engine) sum(ctx context.Context, userID string, filter sessions.Filter) (int64, error) {
	if e.agg != nil {
		total, err := e.agg.SumDuration(ctx, userID, filter)
		if err != nil {
			return 0, practice.StoreError("sum duration", err)
		}
		return total, nil
	}

	e.clientFallback()
	records, err := e.list(ctx, userID, filter)
	if err != nil {
		return 0, err
	}
	return sumSeconds(records), nil
}

func (e *Engine) countDays(ctx context.Context, userID string, filter sessions.Filter) (int, error) {
	if e.agg != nil {
		count, err := e.agg.CountDistinctDays(ctx, userID, filter, e.loc)
		if err != nil {
			return 0, practice.StoreError("count distinct days", err)
		}
		return count, nil
	}

	e.clientFallback()
	records, err := e.list(ctx, userID, filter)
	if err != nil {
		return 0, err
	}
	return len(e.dayKeys(records)), nil
}

func (e *Engine) dayKeys(records []sessions.Record) map[string]struct{} {
	days := make(map[string]struct{}, len(records))
	for _, r := range records {
		days[calendar.Key(r.CreatedAt, e.loc)] = struct{}{}
	}
	return days
}

func rangeFilter(r calendar.Range) sessions.Filter {
	from, to := r.From, r.To
	return sessions.Filter{From: &from, To: &to}
}

// optionalRange expands whichever bounds are set to whole days.
func (e *Engine) optionalRange(start, end *time.Time) (sessions.Filter, error) {
	var filter sessions.Filter
	if start != nil && end != nil {
		r, err := calendar.Days(*start, *end, e.loc)
		if err != nil {
			return filter, err
		}
		return rangeFilter(r), nil
	}
	if start != nil {
		from := calendar.DayStart(*start, e.loc)
		filter.From = &from
	}
	if end != nil {
		to := calendar.DayEnd(*end, e.loc)
		filter.To = &to
	}
	return filter, nil
}

func sumSeconds(records []sessions.Record) int64 {
	var total int64
	for _, r := range records {
		total += r.DurationSeconds
	}
	return total
}

func userFrom(ctx context.Context) (string, error) {
	return auth.RequireUserID(ctx)
}
