package stats

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/practice/calendar"
	"github.com/Motzart/exercises-app/internal/practice/sessions"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
)

type DayTotal struct {
	Date         string `json:"date"`
	TotalSeconds int64  `json:"totalSeconds"`
}

type ExerciseTotal struct {
	ExerciseID   string `json:"exerciseId"`
	ExerciseName string `json:"exerciseName"`
	TotalSeconds int64  `json:"totalSeconds"`
	SessionCount int    `json:"sessionCount"`
}

// DailyAggregate is one day with sessions, PerExercise sorted by time spent.
type DailyAggregate struct {
	Date         string          `json:"date"`
	TotalSeconds int64           `json:"totalSeconds"`
	PerExercise  []ExerciseTotal `json:"perExercise"`
}

type ExerciseMinutes struct {
	ExerciseID   string `json:"exerciseId"`
	ExerciseName string `json:"exerciseName"`
	Minutes      int64  `json:"minutes"`
}

// SessionsByDayOfWeek sums the current ISO week per weekday, Monday first.
func (e *Engine) SessionsByDayOfWeek(ctx context.Context) (week [7]int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.weekdays")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("weekdays", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return week, err
	}
	records, err := e.list(ctx, userID, rangeFilter(calendar.ThisWeek(e.now(), e.loc)))
	if err != nil {
		return week, err
	}
	for _, r := range records {
		week[calendar.WeekdayIndex(r.CreatedAt.In(e.loc))] += r.DurationSeconds
	}
	return week, nil
}

// MaxDenseDays bounds the span SessionsByDateRange fills.
const MaxDenseDays = 366

// SessionsByDateRange returns one entry per day of the range, days without
// sessions included, oldest first.
func (e *Engine) SessionsByDateRange(ctx context.Context, start, end time.Time) (days []DayTotal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.daily")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("daily", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	r, err := calendar.Days(start, end, e.loc)
	if err != nil {
		return nil, err
	}
	if calendar.DayStart(r.To, e.loc).After(r.From.AddDate(0, 0, MaxDenseDays-1)) {
		return nil, fmt.Errorf("%w: more than %d days", practice.ErrInvalidRange, MaxDenseDays)
	}
	records, err := e.list(ctx, userID, rangeFilter(r))
	if err != nil {
		return nil, err
	}

	totals := e.totalsByDay(records)
	days = []DayTotal{}
	calendar.EachDay(r, e.loc, func(day time.Time) {
		key := calendar.Key(day, e.loc)
		days = append(days, DayTotal{Date: key, TotalSeconds: totals[key]})
	})
	return days, nil
}

// SessionsByDay lists the days that have sessions, newest first.
func (e *Engine) SessionsByDay(ctx context.Context) (days []DailyAggregate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("history", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	records, err := e.list(ctx, userID, sessions.Filter{})
	if err != nil {
		return nil, err
	}

	byDay := map[string][]sessions.Record{}
	for _, r := range records {
		key := calendar.Key(r.CreatedAt, e.loc)
		byDay[key] = append(byDay[key], r)
	}

	days = make([]DailyAggregate, 0, len(byDay))
	for key, dayRecords := range byDay {
		days = append(days, DailyAggregate{
			Date:         key,
			TotalSeconds: sumSeconds(dayRecords),
			PerExercise:  rankExercises(dayRecords),
		})
	}
	// YYYY-MM-DD sorts chronologically as text
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
	return days, nil
}

// TopExercisesByTime ranks exercises by total time. Ties keep the order the
// exercises were first seen in. A limit <= 0 returns all of them.
func (e *Engine) TopExercisesByTime(ctx context.Context, limit int, start, end *time.Time) (top []ExerciseTotal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.top")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("top", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := e.optionalRange(start, end)
	if err != nil {
		return nil, err
	}
	records, err := e.list(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	top = rankExercises(records)
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

// TodayByExercise maps exercise id to seconds practiced today.
func (e *Engine) TodayByExercise(ctx context.Context) (today map[string]int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.today_by_exercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("today_by_exercise", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	records, err := e.list(ctx, userID, rangeFilter(calendar.Today(e.now(), e.loc)))
	if err != nil {
		return nil, err
	}

	today = make(map[string]int64)
	for _, r := range records {
		today[r.ExerciseID] += r.DurationSeconds
	}
	return today, nil
}

// WeekExerciseStats returns this ISO week's minutes per exercise, most
// practiced first.
func (e *Engine) WeekExerciseStats(ctx context.Context) (week []ExerciseMinutes, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.week_exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("week_exercises", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	records, err := e.list(ctx, userID, rangeFilter(calendar.ThisWeek(e.now(), e.loc)))
	if err != nil {
		return nil, err
	}

	ranked := rankExercises(records)
	week = make([]ExerciseMinutes, 0, len(ranked))
	for _, ex := range ranked {
		week = append(week, ExerciseMinutes{
			ExerciseID:   ex.ExerciseID,
			ExerciseName: ex.ExerciseName,
			Minutes:      roundDiv(ex.TotalSeconds, 60),
		})
	}
	return week, nil
}

// PracticeStreak counts consecutive practice days back from today, or from
// yesterday when today has no session yet.
func (e *Engine) PracticeStreak(ctx context.Context) (streak int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.streak")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("streak", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return 0, err
	}

	now := e.now()
	to := calendar.DayEnd(now, e.loc)
	records, err := e.list(ctx, userID, sessions.Filter{To: &to})
	if err != nil {
		return 0, err
	}
	return streakFrom(e.dayKeys(records), now, e.loc), nil
}

func streakFrom(days map[string]struct{}, now time.Time, loc *time.Location) int {
	anchor := calendar.DayStart(now, loc)
	if _, ok := days[calendar.Key(anchor, loc)]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
		if _, ok := days[calendar.Key(anchor, loc)]; !ok {
			return 0
		}
	}

	streak := 0
	for day := anchor; ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[calendar.Key(day, loc)]; !ok {
			return streak
		}
		streak++
	}
}

func (e *Engine) totalsByDay(records []sessions.Record) map[string]int64 {
	totals := make(map[string]int64)
	for _, r := range records {
		totals[calendar.Key(r.CreatedAt, e.loc)] += r.DurationSeconds
	}
	return totals
}

// rankExercises groups records per exercise in first-seen order and sorts
// them by total time, stable.
func rankExercises(records []sessions.Record) []ExerciseTotal {
	index := map[string]int{}
	totals := []ExerciseTotal{}
	for _, r := range records {
		i, ok := index[r.ExerciseID]
		if !ok {
			i = len(totals)
			index[r.ExerciseID] = i
			totals = append(totals, ExerciseTotal{
				ExerciseID:   r.ExerciseID,
				ExerciseName: r.ExerciseName,
			})
		}
		totals[i].TotalSeconds += r.DurationSeconds
		totals[i].SessionCount++
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalSeconds > totals[j].TotalSeconds
	})
	return totals
}

func roundDiv(a, b int64) int64 {
	return int64(math.Round(float64(a) / float64(b)))
}
