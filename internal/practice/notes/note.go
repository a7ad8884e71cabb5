package notes

import (
	"fmt"
	"strings"
	"time"

	"github.com/Motzart/exercises-app/internal/practice"
)

var (
	ErrNoteNotFound = fmt.Errorf("note %w", practice.ErrNotFound)
	ErrInvalidNote  = fmt.Errorf("note %w", practice.ErrInvalidInput)
)

// Note is a free text remark, either about one exercise or general when
// ExerciseID is empty.
type Note struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ExerciseID string    `json:"exerciseId,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type NewNote struct {
	UserID     string `json:"-"`
	ExerciseID string `json:"exerciseId"`
	Content    string `json:"content"`
}

func (in NewNote) Validate() error {
	if in.UserID == "" {
		return practice.ErrNotAuthenticated
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content empty", ErrInvalidNote)
	}
	return nil
}
