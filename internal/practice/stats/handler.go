package stats

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/practice/calendar"
	"github.com/Motzart/exercises-app/internal/practice/duration"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

const monthLayout = "2006-01"

var weekdayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DurationView pairs raw seconds with their display form.
type DurationView struct {
	Seconds   int64  `json:"seconds"`
	Formatted string `json:"formatted"`
}

func viewOf(seconds int64) DurationView {
	return DurationView{Seconds: seconds, Formatted: duration.Format(seconds)}
}

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{
		engine: engine,
	}
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.summary")
	defer span.End()

	summary, err := handler.engine.Summary(ctx)
	if err != nil {
		practice.HTTPError(w, err, "failed to get summary")
		return
	}

	pkg.WriteJSON(w, map[string]DurationView{
		"total":     viewOf(summary.Total),
		"today":     viewOf(summary.Today),
		"yesterday": viewOf(summary.Yesterday),
		"thisWeek":  viewOf(summary.ThisWeek),
		"lastWeek":  viewOf(summary.LastWeek),
		"thisMonth": viewOf(summary.ThisMonth),
		"lastMonth": viewOf(summary.LastMonth),
	}, http.StatusOK)
}

func (handler *Handler) HandleRange(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.range")
	defer span.End()

	from, to, err := handler.requiredDays(r)
	if err != nil {
		practice.HTTPError(w, err, "invalid date range")
		return
	}

	total, err := handler.engine.DurationInRange(ctx, from, to)
	if err != nil {
		practice.HTTPError(w, err, "failed to get duration in range")
		return
	}
	pkg.WriteJSON(w, viewOf(total), http.StatusOK)
}

type weekdayView struct {
	Day string `json:"day"`
	DurationView
}

func (handler *Handler) HandleWeekdays(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.weekdays")
	defer span.End()

	week, err := handler.engine.SessionsByDayOfWeek(ctx)
	if err != nil {
		practice.HTTPError(w, err, "failed to get week")
		return
	}

	resp := make([]weekdayView, 0, len(week))
	for i, seconds := range week {
		resp = append(resp, weekdayView{Day: weekdayNames[i], DurationView: viewOf(seconds)})
	}
	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.daily")
	defer span.End()

	from, to, err := handler.requiredDays(r)
	if err != nil {
		practice.HTTPError(w, err, "invalid date range")
		return
	}

	days, err := handler.engine.SessionsByDateRange(ctx, from, to)
	if err != nil {
		practice.HTTPError(w, err, "failed to get daily totals")
		return
	}
	pkg.WriteJSON(w, days, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.history")
	defer span.End()

	days, err := handler.engine.SessionsByDay(ctx)
	if err != nil {
		practice.HTTPError(w, err, "failed to get history")
		return
	}
	pkg.WriteJSON(w, days, http.StatusOK)
}

func (handler *Handler) HandleTop(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.top")
	defer span.End()

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		if limit, err = strconv.Atoi(limitStr); err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	from, to, err := calendar.ParseOptionalDays(r.URL.Query().Get("from"), r.URL.Query().Get("to"), handler.engine.Location())
	if err != nil {
		practice.HTTPError(w, err, "invalid date range")
		return
	}

	top, err := handler.engine.TopExercisesByTime(ctx, limit, from, to)
	if err != nil {
		practice.HTTPError(w, err, "failed to get top exercises")
		return
	}
	pkg.WriteJSON(w, top, http.StatusOK)
}

func (handler *Handler) HandleAverage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.average")
	defer span.End()

	from, to, err := calendar.ParseOptionalDays(r.URL.Query().Get("from"), r.URL.Query().Get("to"), handler.engine.Location())
	if err != nil {
		practice.HTTPError(w, err, "invalid date range")
		return
	}

	avg, err := handler.engine.AverageSessionDuration(ctx, from, to)
	if err != nil {
		practice.HTTPError(w, err, "failed to get average")
		return
	}
	pkg.WriteJSON(w, viewOf(avg), http.StatusOK)
}

func (handler *Handler) HandlePracticeDays(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.practice_days")
	defer span.End()

	from, to, err := handler.requiredDays(r)
	if err != nil {
		practice.HTTPError(w, err, "invalid date range")
		return
	}

	count, err := handler.engine.PracticeDaysCount(ctx, from, to)
	if err != nil {
		practice.HTTPError(w, err, "failed to count practice days")
		return
	}
	pkg.WriteJSON(w, map[string]int{"days": count}, http.StatusOK)
}

func (handler *Handler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.streak")
	defer span.End()

	streak, err := handler.engine.PracticeStreak(ctx)
	if err != nil {
		practice.HTTPError(w, err, "failed to get streak")
		return
	}
	pkg.WriteJSON(w, map[string]int{"streak": streak}, http.StatusOK)
}

func (handler *Handler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.heatmap")
	defer span.End()

	month := handler.engine.now()
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		var err error
		month, err = time.ParseInLocation(monthLayout, monthStr, handler.engine.Location())
		if err != nil {
			http.Error(w, "invalid month", http.StatusBadRequest)
			return
		}
	}

	days, err := handler.engine.Heatmap(ctx, month)
	if err != nil {
		practice.HTTPError(w, err, "failed to get heatmap")
		return
	}
	pkg.WriteJSON(w, days, http.StatusOK)
}

func (handler *Handler) HandleWeekExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.week_exercises")
	defer span.End()

	week, err := handler.engine.WeekExerciseStats(ctx)
	if err != nil {
		practice.HTTPError(w, err, "failed to get week exercises")
		return
	}
	pkg.WriteJSON(w, week, http.StatusOK)
}

func (handler *Handler) requiredDays(r *http.Request) (time.Time, time.Time, error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from and to required", practice.ErrInvalidInput)
	}

	from, err := calendar.ParseDay(fromStr, handler.engine.Location())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := calendar.ParseDay(toStr, handler.engine.Location())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
