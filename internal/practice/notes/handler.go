package notes

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/Motzart/exercises-app/internal/auth"
	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/telemetry/metrics"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=notes_mocks_test.go -package=notes_test

type notesRepo interface {
	Add(ctx context.Context, in NewNote) (*Note, error)
	List(ctx context.Context, userID, exerciseID string) ([]Note, error)
	Delete(ctx context.Context, userID, id string) error
}

type ListResponse struct {
	Notes []Note `json:"notes"`
	Total int    `json:"total"`
}

type Handler struct {
	repo    notesRepo
	metrics *metrics.Manager
}

func NewHandler(repo notesRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.add")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	var in NewNote
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Tracef("new note, unmarshal json params: %s", err)
		http.Error(w, "add note failed", http.StatusBadRequest)
		return
	}
	in.UserID = userID

	note, err := handler.repo.Add(ctx, in)
	if err != nil {
		practice.HTTPError(w, err, "add note failed")
		return
	}

	handler.metrics.CounterNotes.Inc()

	log.Debugf("new note added: %s", note.ID)
	pkg.WriteJSON(w, note, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.list")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	list, err := handler.repo.List(ctx, userID, r.URL.Query().Get("exercise_id"))
	if err != nil {
		practice.HTTPError(w, err, "failed to get notes")
		return
	}
	if list == nil {
		list = []Note{}
	}

	pkg.WriteJSON(w, ListResponse{Notes: list, Total: len(list)}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.delete")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	id := mux.Vars(r)["id"]
	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		practice.HTTPError(w, err, "note not deleted")
		return
	}

	pkg.WriteTextResponseOK(w, "deleted:"+id)
}
