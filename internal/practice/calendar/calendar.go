// Package calendar holds calendar-day arithmetic in a fixed location.
// Weeks are ISO weeks, Monday to Sunday.
package calendar

import (
	"fmt"
	"time"

	"github.com/Motzart/exercises-app/internal/practice"
)

const DayLayout = "2006-01-02"

// DayStart returns 00:00 of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayEnd returns the last instant of t's calendar day in loc.
func DayEnd(t time.Time, loc *time.Location) time.Time {
	return DayStart(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// WeekStart returns the Monday 00:00 of t's ISO week.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	day := DayStart(t, loc)
	return day.AddDate(0, 0, -WeekdayIndex(day))
}

// WeekdayIndex maps Monday to 0 and Sunday to 6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func MonthStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// Range is an inclusive [From, To] window of instants.
type Range struct {
	From time.Time
	To   time.Time
}

// Days expands start and end to whole calendar days. A start day after the end
// day is practice.ErrInvalidRange.
func Days(start, end time.Time, loc *time.Location) (Range, error) {
	from := DayStart(start, loc)
	to := DayStart(end, loc)
	if from.After(to) {
		return Range{}, fmt.Errorf("%w: %s after %s", practice.ErrInvalidRange, Key(start, loc), Key(end, loc))
	}
	return Range{From: from, To: DayEnd(to, loc)}, nil
}

func Today(now time.Time, loc *time.Location) Range {
	return Range{From: DayStart(now, loc), To: DayEnd(now, loc)}
}

func Yesterday(now time.Time, loc *time.Location) Range {
	return Today(DayStart(now, loc).AddDate(0, 0, -1), loc)
}

func ThisWeek(now time.Time, loc *time.Location) Range {
	start := WeekStart(now, loc)
	return Range{From: start, To: start.AddDate(0, 0, 7).Add(-time.Nanosecond)}
}

func LastWeek(now time.Time, loc *time.Location) Range {
	return ThisWeek(WeekStart(now, loc).AddDate(0, 0, -7), loc)
}

func ThisMonth(now time.Time, loc *time.Location) Range {
	start := MonthStart(now, loc)
	return Range{From: start, To: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

func LastMonth(now time.Time, loc *time.Location) Range {
	return ThisMonth(MonthStart(now, loc).AddDate(0, -1, 0), loc)
}

// Key formats t's calendar day in loc as YYYY-MM-DD.
func Key(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// ParseDay parses YYYY-MM-DD as 00:00 of that day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day %q: %s", practice.ErrInvalidInput, s, err)
	}
	return t, nil
}

// EachDay calls fn for every calendar day from r.From to r.To, ascending.
func EachDay(r Range, loc *time.Location, fn func(day time.Time)) {
	last := DayStart(r.To, loc)
	for day := DayStart(r.From, loc); !day.After(last); day = day.AddDate(0, 0, 1) {
		fn(day)
	}
}

// ParseOptionalDays parses optional YYYY-MM-DD bounds into a whole-day window.
// Empty strings leave that side open.
func ParseOptionalDays(fromStr, toStr string, loc *time.Location) (from, to *time.Time, err error) {
	if fromStr != "" {
		day, err := ParseDay(fromStr, loc)
		if err != nil {
			return nil, nil, err
		}
		from = &day
	}
	if toStr != "" {
		day, err := ParseDay(toStr, loc)
		if err != nil {
			return nil, nil, err
		}
		end := DayEnd(day, loc)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("%w: %s after %s", practice.ErrInvalidRange, fromStr, toStr)
	}
	return from, to, nil
}
