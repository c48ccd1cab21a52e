package auth

import (
	"context"

	models "fleetops/vanlist/internal/models/gorm"
)

type contextKey string

var currentUserKey contextKey = "current_user"

// SetCurrentUser stores the authenticated user on the request context.
func SetCurrentUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// GetCurrentUser returns the authenticated user, or nil outside an
// authenticated request.
func GetCurrentUser(ctx context.Context) *models.User {
	val := ctx.Value(currentUserKey)
	if user, ok := val.(*models.User); ok {
		return user
	}
	return nil
}
