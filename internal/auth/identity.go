package auth

import (
	"context"

	"github.com/Motzart/exercises-app/internal/practice"
)

type userIDKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// RequireUserID returns practice.ErrNotAuthenticated when ctx carries no user.
func RequireUserID(ctx context.Context) (string, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", practice.ErrNotAuthenticated
	}
	return userID, nil
}
