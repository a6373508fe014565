package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/database/models"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	UserKey      contextKey = "user"
)

// UserLoader resolves the account behind a token. Team roles are always
// read fresh, so nothing about them is cached on the request.
type UserLoader interface {
	GetUserByPublicID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func Auth(tokens auth.TokenService, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := users.GetUserByPublicID(r.Context(), claims.UserID)
			if err != nil || !user.IsActive {
				unauthorized(w)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserEmailKey, user.Email)
			ctx = context.WithValue(ctx, UserKey, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken checks, in order, the Authorization bearer header, the token
// cookie and the X-Auth-Token header.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.Header.Get("X-Auth-Token")
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthenticated")
}

// Helper functions to extract values from context
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

// CurrentUser returns the authenticated account, or nil outside Auth.
func CurrentUser(ctx context.Context) *models.User {
	if u, ok := ctx.Value(UserKey).(*models.User); ok {
		return u
	}
	return nil
}

// WithUser stores user on ctx the way Auth does.
func WithUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.PublicID)
	ctx = context.WithValue(ctx, UserEmailKey, user.Email)
	return context.WithValue(ctx, UserKey, user)
}
