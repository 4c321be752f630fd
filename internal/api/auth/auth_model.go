package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Typed context key so handler packages cannot collide with ours.
type contextKey string

const UserIDKey contextKey = "userID"

// Claims is the JWT payload for both access and refresh tokens.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// GetUserIDFromContext extracts the authenticated user ID placed there by the
// Authenticate middleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
