package playlists

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Motzart/exercises-app/internal/auth"
	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/practice/exercises"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=playlists_mocks_test.go -package=playlists_test

type playlistsRepo interface {
	Add(ctx context.Context, in NewPlaylist) (*Playlist, error)
	Get(ctx context.Context, userID, id string) (*Playlist, error)
	List(ctx context.Context, userID string) ([]Playlist, error)
	Update(ctx context.Context, userID, id string, patch Patch) (*Playlist, error)
	Delete(ctx context.Context, userID, id string) error
}

type exercisesResolver interface {
	GetByIDs(ctx context.Context, userID string, ids []string) ([]exercises.Exercise, error)
}

type Handler struct {
	repo      playlistsRepo
	exercises exercisesResolver
}

func NewHandler(repo playlistsRepo, exercises exercisesResolver) *Handler {
	return &Handler{
		repo:      repo,
		exercises: exercises,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.playlists.add")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	var in NewPlaylist
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Tracef("new playlist, unmarshal json params: %s", err)
		http.Error(w, "add playlist failed", http.StatusBadRequest)
		return
	}
	in.UserID = userID

	p, err := handler.repo.Add(ctx, in)
	if err != nil {
		practice.HTTPError(w, err, "add playlist failed")
		return
	}

	log.Debugf("new playlist added: %s, %d exercises", p.ID, p.ExerciseCount)
	pkg.WriteJSON(w, p, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.playlists.list")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	list, err := handler.repo.List(ctx, userID)
	if err != nil {
		practice.HTTPError(w, err, "failed to list playlists")
		return
	}
	if list == nil {
		list = []Playlist{}
	}
	pkg.WriteJSON(w, list, http.StatusOK)
}

// HandleGet returns the playlist with its exercises. Exercises deleted since
// the playlist was saved are left out; the count still reflects the saved ids.
func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.playlists.get")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	p, err := handler.repo.Get(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		practice.HTTPError(w, err, "failed to get playlist")
		return
	}

	list, err := handler.exercises.GetByIDs(ctx, userID, p.ExerciseIDs)
	if err != nil {
		practice.HTTPError(w, err, "failed to get playlist exercises")
		return
	}
	if list == nil {
		list = []exercises.Exercise{}
	}
	span.SetAttributes(attribute.Int("exercises.resolved", len(list)))

	pkg.WriteJSON(w, Details{Playlist: *p, Exercises: list}, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.playlists.update")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Tracef("update playlist, unmarshal json params: %s", err)
		http.Error(w, "update playlist failed", http.StatusBadRequest)
		return
	}

	p, err := handler.repo.Update(ctx, userID, mux.Vars(r)["id"], patch)
	if err != nil {
		practice.HTTPError(w, err, "update playlist failed")
		return
	}
	pkg.WriteJSON(w, p, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.playlists.delete")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	id := mux.Vars(r)["id"]
	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		practice.HTTPError(w, err, "failed to delete playlist")
		return
	}

	log.Debugf("playlist [%s] deleted", id)
	pkg.WriteTextResponseOK(w, "deleted")
}
