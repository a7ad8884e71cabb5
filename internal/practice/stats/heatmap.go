package stats

import (
	"context"
	"time"

	"github.com/Motzart/exercises-app/internal/practice/calendar"
	"github.com/Motzart/exercises-app/internal/practice/duration"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
)

type Intensity string

const (
	IntensityNone     Intensity = "none"
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityMedium   Intensity = "medium"
	IntensityHigh     Intensity = "high"
)

// IntensityFor buckets a day's practice time for the calendar heatmap.
func IntensityFor(seconds int64) Intensity {
	switch {
	case seconds <= 0:
		return IntensityNone
	case seconds < 3600:
		return IntensityLow
	case seconds <= 2*3600:
		return IntensityModerate
	case seconds <= 3*3600:
		return IntensityMedium
	default:
		return IntensityHigh
	}
}

type HeatmapDay struct {
	Date         string    `json:"date"`
	TotalSeconds int64     `json:"totalSeconds"`
	Duration     string    `json:"duration"`
	Intensity    Intensity `json:"intensity"`
}

// Heatmap returns every day of month's calendar month.
func (e *Engine) Heatmap(ctx context.Context, month time.Time) (days []HeatmapDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.engine.heatmap")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer e.observe("heatmap", time.Now())

	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}

	r := calendar.ThisMonth(month, e.loc)
	records, err := e.list(ctx, userID, rangeFilter(r))
	if err != nil {
		return nil, err
	}

	totals := e.totalsByDay(records)
	days = make([]HeatmapDay, 0, 31)
	calendar.EachDay(r, e.loc, func(day time.Time) {
		key := calendar.Key(day, e.loc)
		seconds := totals[key]
		days = append(days, HeatmapDay{
			Date:         key,
			TotalSeconds: seconds,
			Duration:     duration.Format(seconds),
			Intensity:    IntensityFor(seconds),
		})
	})
	return days, nil
}
