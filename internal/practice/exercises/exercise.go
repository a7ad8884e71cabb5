package exercises

import (
	"fmt"
	"strings"
	"time"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/practice/sessions"
)

var (
	ErrExerciseNotFound = fmt.Errorf("exercise %w", practice.ErrNotFound)
	ErrInvalidExercise  = fmt.Errorf("exercise %w", practice.ErrInvalidInput)
)

type Exercise struct {
	ID                   string                `json:"id"`
	UserID               string                `json:"userId"`
	Name                 string                `json:"name"`
	Author               string                `json:"author"`
	Description          string                `json:"description"`
	EstimatedTimeSeconds int64                 `json:"estimatedTimeSeconds"`
	Favorite             bool                  `json:"favorite"`
	CreatedAt            time.Time             `json:"createdAt"`
	LastSession          *sessions.LastSession `json:"lastSession,omitempty"`
}

type NewExercise struct {
	UserID               string `json:"-"`
	Name                 string `json:"name"`
	Author               string `json:"author"`
	Description          string `json:"description"`
	EstimatedTimeSeconds int64  `json:"estimatedTimeSeconds"`
	Favorite             bool   `json:"favorite"`
}

func (in NewExercise) Validate() error {
	if in.UserID == "" {
		return practice.ErrNotAuthenticated
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name empty", ErrInvalidExercise)
	}
	if in.EstimatedTimeSeconds < 0 {
		return fmt.Errorf("%w: negative estimated time", ErrInvalidExercise)
	}
	return nil
}

// Patch carries the fields of a partial update; nil fields stay untouched.
type Patch struct {
	Name                 *string `json:"name,omitempty"`
	Author               *string `json:"author,omitempty"`
	Description          *string `json:"description,omitempty"`
	EstimatedTimeSeconds *int64  `json:"estimatedTimeSeconds,omitempty"`
	Favorite             *bool   `json:"favorite,omitempty"`
}

func (p Patch) Validate() error {
	if p.Name == nil && p.Author == nil && p.Description == nil && p.EstimatedTimeSeconds == nil && p.Favorite == nil {
		return fmt.Errorf("%w: empty update", ErrInvalidExercise)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name empty", ErrInvalidExercise)
	}
	if p.EstimatedTimeSeconds != nil && *p.EstimatedTimeSeconds < 0 {
		return fmt.Errorf("%w: negative estimated time", ErrInvalidExercise)
	}
	return nil
}

type ListParams struct {
	FavoritesOnly bool
	Search        string
}

// cache keys: "list:<0|1>:<search>" and "detail:<id>"
const (
	listKeyPrefix   = "list:"
	detailKeyPrefix = "detail:"
)

func (p ListParams) Key() string {
	favorites := "0"
	if p.FavoritesOnly {
		favorites = "1"
	}
	return listKeyPrefix + favorites + ":" + strings.ToLower(strings.TrimSpace(p.Search))
}

func detailKey(id string) string {
	return detailKeyPrefix + id
}

// parseKey reverses ListParams.Key and detailKey.
func parseKey(key string) (params ListParams, id string, ok bool) {
	switch {
	case strings.HasPrefix(key, detailKeyPrefix):
		return ListParams{}, strings.TrimPrefix(key, detailKeyPrefix), true
	case strings.HasPrefix(key, listKeyPrefix):
		favorites, search, found := strings.Cut(strings.TrimPrefix(key, listKeyPrefix), ":")
		if !found {
			return ListParams{}, "", false
		}
		return ListParams{FavoritesOnly: favorites == "1", Search: search}, "", true
	}
	return ListParams{}, "", false
}
