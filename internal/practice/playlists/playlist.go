package playlists

import (
	"fmt"
	"strings"
	"time"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/practice/exercises"
)

var (
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", practice.ErrNotFound)
	ErrInvalidPlaylist  = fmt.Errorf("playlist %w", practice.ErrInvalidInput)
)

// Playlist is an ordered list of exercises practiced in one go.
type Playlist struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ExerciseIDs   []string  `json:"exerciseIds"`
	ExerciseCount int       `json:"exerciseCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Details is a playlist with its exercises resolved, in playlist order.
type Details struct {
	Playlist
	Exercises []exercises.Exercise `json:"exercises"`
}

type NewPlaylist struct {
	UserID      string   `json:"-"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ExerciseIDs []string `json:"exerciseIds"`
}

func (in NewPlaylist) Validate() error {
	if in.UserID == "" {
		return practice.ErrNotAuthenticated
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name empty", ErrInvalidPlaylist)
	}
	return validateIDs(in.ExerciseIDs)
}

// Patch carries the fields of a partial update; nil fields stay untouched.
// A non-nil ExerciseIDs replaces the whole list.
type Patch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	ExerciseIDs *[]string `json:"exerciseIds,omitempty"`
}

func (p Patch) Validate() error {
	if p.Name == nil && p.Description == nil && p.ExerciseIDs == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidPlaylist)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name empty", ErrInvalidPlaylist)
	}
	if p.ExerciseIDs != nil {
		return validateIDs(*p.ExerciseIDs)
	}
	return nil
}

func validateIDs(ids []string) error {
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: empty exercise id at %d", ErrInvalidPlaylist, i)
		}
	}
	return nil
}
