package exercises

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"

	"github.com/Motzart/exercises-app/internal/practice/sessions"
	"github.com/Motzart/exercises-app/internal/telemetry/metrics"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	Add(ctx context.Context, in NewExercise) (*Exercise, error)
	Get(ctx context.Context, userID, id string) (*Exercise, error)
	List(ctx context.Context, userID string, params ListParams) ([]Exercise, error)
	Update(ctx context.Context, userID, id string, patch Patch) (*Exercise, error)
	SetFavorite(ctx context.Context, userID, id string, favorite bool) error
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int, error)
}

type lastSessionsStore interface {
	LastSessions(ctx context.Context, userID string) (map[string]sessions.LastSession, error)
}

// Service reads exercises through the query cache and keeps every cached
// view consistent on writes.
type Service struct {
	repo         exercisesRepo
	lastSessions lastSessionsStore
	cache        *QueryCache
	metrics      *metrics.Manager

	// favorite toggles of one cache are serialized
	toggleMutex sync.Mutex
}

func NewService(repo exercisesRepo, lastSessions lastSessionsStore, cache *QueryCache, metrics *metrics.Manager) *Service {
	return &Service{
		repo:         repo,
		lastSessions: lastSessions,
		cache:        cache,
		metrics:      metrics,
	}
}

func (s *Service) List(ctx context.Context, userID string, params ListParams) ([]Exercise, error) {
	key := params.Key()
	if list, ok := s.cache.Get(userID, key); ok {
		return list, nil
	}
	return s.fetch(ctx, userID, key)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Exercise, error) {
	key := detailKey(id)
	if list, ok := s.cache.Get(userID, key); ok && len(list) == 1 {
		return &list[0], nil
	}
	list, err := s.fetch(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// fetch loads the view behind key from the store and caches it.
func (s *Service) fetch(ctx context.Context, userID, key string) ([]Exercise, error) {
	params, id, ok := parseKey(key)
	if !ok {
		return nil, fmt.Errorf("unknown exercise view %q", key)
	}

	var list []Exercise
	if id != "" {
		ex, err := s.repo.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		list = []Exercise{*ex}
	} else {
		var err error
		if list, err = s.repo.List(ctx, userID, params); err != nil {
			return nil, err
		}
	}

	if err := s.attachLastSessions(ctx, userID, list); err != nil {
		return nil, err
	}
	if err := s.cache.Set(userID, key, list); err != nil {
		log.Warnf("exercises: %s", err)
	}
	return list, nil
}

func (s *Service) attachLastSessions(ctx context.Context, userID string, list []Exercise) error {
	if s.lastSessions == nil || len(list) == 0 {
		return nil
	}
	last, err := s.lastSessions.LastSessions(ctx, userID)
	if err != nil {
		return err
	}
	for i := range list {
		if ls, ok := last[list[i].ID]; ok {
			list[i].LastSession = &ls
		}
	}
	return nil
}

func (s *Service) Add(ctx context.Context, in NewExercise) (*Exercise, error) {
	ex, err := s.repo.Add(ctx, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(in.UserID)
	return ex, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, patch Patch) (*Exercise, error) {
	ex, err := s.repo.Update(ctx, userID, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(userID)
	return ex, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.Invalidate(userID)
	return nil
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.repo.Count(ctx, userID)
}

// ToggleFavorite flips the favorite flag of the exercise and returns the new
// value.
func (s *Service) ToggleFavorite(ctx context.Context, userID, id string) (bool, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return false, err
	}
	favorite := !current.Favorite
	return favorite, s.SetFavorite(ctx, userID, id, favorite)
}

// SetFavorite writes favorite into every cached view holding the exercise
// before the store call returns. A failed store call restores the views to
// their previous bytes. Either way each touched view is then refetched; a
// view whose refetch fails keeps its current entry.
func (s *Service) SetFavorite(ctx context.Context, userID, id string, favorite bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.set_favorite")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("exercise.id", id),
		attribute.Bool("favorite", favorite),
	)

	s.toggleMutex.Lock()
	defer s.toggleMutex.Unlock()

	snapshots := s.applyOptimistic(userID, id, favorite)
	span.SetAttributes(attribute.Int("views.touched", len(snapshots)))

	if err = s.repo.SetFavorite(ctx, userID, id, favorite); err != nil {
		s.metrics.CounterFavoriteToggles.WithLabelValues("failure").Inc()
		s.metrics.CounterFavoriteRollbacks.Inc()
		if rollbackErr := s.rollback(userID, snapshots); rollbackErr != nil {
			log.Errorf("favorite rollback for exercise [%s]: %s", id, rollbackErr)
			err = multierr.Append(err, rollbackErr)
		}
	} else {
		s.metrics.CounterFavoriteToggles.WithLabelValues("success").Inc()
	}

	s.settle(ctx, userID, snapshots)
	return err
}

// applyOptimistic flips the flag in every cached view containing the
// exercise and returns the previous bytes of those views.
func (s *Service) applyOptimistic(userID, id string, favorite bool) map[string][]byte {
	snapshots := map[string][]byte{}
	for _, key := range s.cache.Keys(userID) {
		raw, ok := s.cache.raw(userID, key)
		if !ok {
			continue
		}

		var list []Exercise
		if err := json.Unmarshal(raw, &list); err != nil {
			s.cache.Delete(userID, key)
			continue
		}

		touched := false
		for i := range list {
			if list[i].ID == id {
				list[i].Favorite = favorite
				touched = true
			}
		}
		if !touched {
			continue
		}

		snapshot := make([]byte, len(raw))
		copy(snapshot, raw)
		snapshots[key] = snapshot

		if err := s.cache.Set(userID, key, list); err != nil {
			log.Warnf("exercises: optimistic favorite: %s", err)
		}
	}
	return snapshots
}

func (s *Service) rollback(userID string, snapshots map[string][]byte) error {
	var err error
	for key, raw := range snapshots {
		err = multierr.Append(err, s.cache.setRaw(userID, key, raw))
	}
	return err
}

func (s *Service) settle(ctx context.Context, userID string, snapshots map[string][]byte) {
	for key := range snapshots {
		if _, err := s.fetch(ctx, userID, key); err != nil {
			log.Debugf("favorite settle: refetch %s: %s", key, err)
		}
	}
}
