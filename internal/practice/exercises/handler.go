package exercises

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/Motzart/exercises-app/internal/auth"
	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

type todayStats interface {
	TodayByExercise(ctx context.Context) (map[string]int64, error)
}

type Handler struct {
	service *Service
	today   todayStats
}

func NewHandler(service *Service, today todayStats) *Handler {
	return &Handler{
		service: service,
		today:   today,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	var in NewExercise
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}
	in.UserID = userID

	ex, err := handler.service.Add(ctx, in)
	if err != nil {
		practice.HTTPError(w, err, "add exercise failed")
		return
	}

	log.Debugf("new exercise added: %s", ex.ID)
	pkg.WriteJSON(w, ex, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	params := ListParams{Search: r.URL.Query().Get("q")}
	if favStr := r.URL.Query().Get("favorites"); favStr != "" {
		if params.FavoritesOnly, err = strconv.ParseBool(favStr); err != nil {
			http.Error(w, "invalid favorites param", http.StatusBadRequest)
			return
		}
	}

	list, err := handler.service.List(ctx, userID, params)
	if err != nil {
		practice.HTTPError(w, err, "failed to list exercises")
		return
	}
	pkg.WriteJSON(w, list, http.StatusOK)
}

func (handler *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.count")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	count, err := handler.service.Count(ctx, userID)
	if err != nil {
		practice.HTTPError(w, err, "failed to count exercises")
		return
	}
	pkg.WriteJSON(w, map[string]int{"count": count}, http.StatusOK)
}

// HandleStatus classifies every exercise against today's practice time.
func (handler *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.status")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	list, err := handler.service.List(ctx, userID, ListParams{})
	if err != nil {
		practice.HTTPError(w, err, "failed to list exercises")
		return
	}
	today, err := handler.today.TodayByExercise(ctx)
	if err != nil {
		practice.HTTPError(w, err, "failed to get today stats")
		return
	}
	pkg.WriteJSON(w, StatusViews(list, today), http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	ex, err := handler.service.Get(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		practice.HTTPError(w, err, "failed to get exercise")
		return
	}
	pkg.WriteJSON(w, ex, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Tracef("update exercise, unmarshal json params: %s", err)
		http.Error(w, "update exercise failed", http.StatusBadRequest)
		return
	}

	ex, err := handler.service.Update(ctx, userID, mux.Vars(r)["id"], patch)
	if err != nil {
		practice.HTTPError(w, err, "update exercise failed")
		return
	}
	pkg.WriteJSON(w, ex, http.StatusOK)
}

type favoriteRequest struct {
	Favorite *bool `json:"favorite"`
}

// HandleFavorite sets the favorite flag given in the body, or flips it when
// the body is empty.
func (handler *Handler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.favorite")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	var req favoriteRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid favorite body", http.StatusBadRequest)
			return
		}
	}

	id := mux.Vars(r)["id"]
	var favorite bool
	if req.Favorite != nil {
		favorite = *req.Favorite
		err = handler.service.SetFavorite(ctx, userID, id, favorite)
	} else {
		favorite, err = handler.service.ToggleFavorite(ctx, userID, id)
	}
	if err != nil {
		practice.HTTPError(w, err, "failed to update favorite")
		return
	}
	pkg.WriteJSON(w, map[string]any{"id": id, "favorite": favorite}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	id := mux.Vars(r)["id"]
	if err := handler.service.Delete(ctx, userID, id); err != nil {
		practice.HTTPError(w, err, "failed to delete exercise")
		return
	}

	log.Debugf("exercise [%s] deleted", id)
	pkg.WriteTextResponseOK(w, "deleted")
}
