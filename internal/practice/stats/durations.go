package stats

import (
	"context"
	"time"

	"github.com/Motzart/exercises-app/internal/practice/calendar"
	"github.com/Motzart/exercises-app/internal/practice/sessions"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
)

// Summary holds the convenience totals of one call, all cut from the same now.
type Summary struct {
	Total     int64 `json:"total"`
	Today     int64 `json:"today"`
	Yesterday int64 `json:"yesterday"`
	ThisWeek  int64 `json:"thisWeek"`
	LastWeek  int64 `json:"lastWeek"`
	ThisMonth int64 `json:"thisMonth"`
	LastMonth int64 `json:"lastMonth"`
}

func (e *Engine) TotalDuration(ctx context.Context) (total int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.total")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("total", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return 0, err
	}
	return e.sum(ctx, userID, sessions.Filter{})
}

// DurationInRange sums the sessions created between the start of start's day
// and the end of end's day.
func (e *Engine) DurationInRange(ctx context.Context, start, end time.Time) (total int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.range")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("range", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return 0, err
	}
	r, err := calendar.Days(start, end, e.loc)
	if err != nil {
		return 0, err
	}
	return e.sum(ctx, userID, rangeFilter(r))
}

func (e *Engine) TodayDuration(ctx context.Context) (int64, error) {
	return e.namedRange(ctx, "today", calendar.Today)
}

func (e *Engine) YesterdayDuration(ctx context.Context) (int64, error) {
	return e.namedRange(ctx, "yesterday", calendar.Yesterday)
}

func (e *Engine) ThisWeekDuration(ctx context.Context) (int64, error) {
	return e.namedRange(ctx, "this_week", calendar.ThisWeek)
}

func (e *Engine) LastWeekDuration(ctx context.Context) (int64, error) {
	return e.namedRange(ctx, "last_week", calendar.LastWeek)
}

func (e *Engine) ThisMonthDuration(ctx context.Context) (int64, error) {
	return e.namedRange(ctx, "this_month", calendar.ThisMonth)
}

func (e *Engine) LastMonthDuration(ctx context.Context) (int64, error) {
	return e.namedRange(ctx, "last_month", calendar.LastMonth)
}

func (e *Engine) namedRange(
	ctx context.Context,
	op string,
	window func(now time.Time, loc *time.Location) calendar.Range,
) (total int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine."+op)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe(op, time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return 0, err
	}
	return e.sum(ctx, userID, rangeFilter(window(e.now(), e.loc)))
}

func (e *Engine) Summary(ctx context.Context) (summary Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("summary", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return Summary{}, err
	}

	now := e.now()
	windows := []struct {
		dst    *int64
		window func(time.Time, *time.Location) calendar.Range
	}{
		{&summary.Today, calendar.Today},
		{&summary.Yesterday, calendar.Yesterday},
		{&summary.ThisWeek, calendar.ThisWeek},
		{&summary.LastWeek, calendar.LastWeek},
		{&summary.ThisMonth, calendar.ThisMonth},
		{&summary.LastMonth, calendar.LastMonth},
	}

	if summary.Total, err = e.sum(ctx, userID, sessions.Filter{}); err != nil {
		return Summary{}, err
	}
	for _, w := range windows {
		if *w.dst, err = e.sum(ctx, userID, rangeFilter(w.window(now, e.loc))); err != nil {
			return Summary{}, err
		}
	}
	return summary, nil
}

// AverageSessionDuration is the rounded mean session length, 0 without
// sessions. Nil bounds leave that side open.
func (e *Engine) AverageSessionDuration(ctx context.Context, start, end *time.Time) (avg int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.average")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("average", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return 0, err
	}
	filter, err := e.optionalRange(start, end)
	if err != nil {
		return 0, err
	}
	records, err := e.list(ctx, userID, filter)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	return roundDiv(sumSeconds(records), int64(len(records))), nil
}

func (e *Engine) PracticeDaysCount(ctx context.Context, start, end time.Time) (count int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.practice_days")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("practice_days", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return 0, err
	}
	r, err := calendar.Days(start, end, e.loc)
	if err != nil {
		return 0, err
	}
	return e.countDays(ctx, userID, rangeFilter(r))
}
