package timer

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/Motzart/exercises-app/internal/auth"
	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{
		registry: registry,
	}
}

type openRequest struct {
	ExerciseID string `json:"exerciseId"`
}

func (handler *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.open")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("open timer, unmarshal json params: %s", err)
		http.Error(w, "open timer failed", http.StatusBadRequest)
		return
	}

	snap, err := handler.registry.Open(userID, req.ExerciseID)
	if err != nil {
		practice.HTTPError(w, err, "open timer failed")
		return
	}
	pkg.WriteJSON(w, snap, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	handler.handleCommand(w, r, "handler.timers.get", handler.registry.Get)
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	handler.handleCommand(w, r, "handler.timers.start", handler.registry.Start)
}

func (handler *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	handler.handleCommand(w, r, "handler.timers.pause", handler.registry.Pause)
}

func (handler *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	handler.handleCommand(w, r, "handler.timers.resume", handler.registry.Resume)
}

func (handler *Handler) handleCommand(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	cmd func(userID, id string) (Snapshot, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	snap, err := cmd(userID, mux.Vars(r)["id"])
	if err != nil {
		practice.HTTPError(w, err, "timer command failed")
		return
	}
	pkg.WriteJSON(w, snap, http.StatusOK)
}

func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.finish")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	rec, err := handler.registry.Finish(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		practice.HTTPError(w, err, "finish timer failed")
		return
	}
	pkg.WriteJSON(w, rec, http.StatusCreated)
}

func (handler *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.timers.discard")
	defer span.End()

	userID, err := auth.RequireUserID(ctx)
	if err != nil {
		practice.HTTPError(w, err, "no can do")
		return
	}

	if err := handler.registry.Discard(userID, mux.Vars(r)["id"]); err != nil {
		practice.HTTPError(w, err, "discard timer failed")
		return
	}
	pkg.WriteTextResponseOK(w, "discarded")
}
