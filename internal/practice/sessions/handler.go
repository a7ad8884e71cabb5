package sessions

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Motzart/exercises-app/internal/auth"
	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/practice/calendar"
	"github.com/Motzart/exercises-app/internal/telemetry/metrics"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=sessions_mocks_test.go -package=sessions_test

type sessionsRepo interface {
	Insert(ctx context.Context, in Input) (*Record, error)
	List(ctx context.Context, userID string, filter Filter) ([]Record, error)
}

type ListResponse struct {
	Sessions []Record `json:"sessions"`
	Total    int      `json:"total"`
}

type Handler struct {
	repo    sessionsRepo
	metrics *metrics.Manager
	loc     *time.Location
}

func NewHandler(repo sessionsRepo, metrics *metrics.Manager, loc *time.Location) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
		loc:     loc,
	}
}

// HandleAdd stores a session measured by a client side timer.
func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.add")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Tracef("new session, unmarshal json params: %s", err)
		http.Error(w, "add session failed", http.StatusBadRequest)
		return
	}
	in.UserID = userID

	record, err := handler.repo.Insert(ctx, in)
	if err != nil {
		practice.HTTPError(w, err, "add session failed")
		return
	}
	span.SetAttributes(attribute.String("session.id", record.ID))

	handler.metrics.CounterSessionsRecorded.Inc()
	handler.metrics.CounterSessionSeconds.Add(float64(record.DurationSeconds))

	log.Debugf("new session [%s] for exercise [%s]: %ds", record.ID, record.ExerciseID, record.DurationSeconds)
	pkg.WriteJSON(w, record, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sessions.list")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	query := r.URL.Query()
	from, to, err := calendar.ParseOptionalDays(query.Get("from"), query.Get("to"), handler.loc)
	if err != nil {
		practice.HTTPError(w, err, "invalid date range")
		return
	}

	records, err := handler.repo.List(ctx, userID, Filter{
		ExerciseID: query.Get("exercise_id"),
		From:       from,
		To:         to,
	})
	if err != nil {
		practice.HTTPError(w, err, "failed to list sessions")
		return
	}
	if records == nil {
		records = []Record{}
	}

	pkg.WriteJSON(w, ListResponse{
		Sessions: records,
		Total:    len(records),
	}, http.StatusOK)
}
