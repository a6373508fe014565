package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) GetUserByPublicID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, auth.ErrUserNotFound
}

func newUser(active bool) *models.User {
	return &models.User{
		Base:     models.Base{ID: 7, PublicID: uuid.New()},
		Email:    "test@example.com",
		Name:     "Test",
		IsActive: active,
	}
}

func okHandler(t *testing.T, want *models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, want.PublicID, GetUserID(r.Context()))
		assert.Equal(t, want.Email, GetUserEmail(r.Context()))
		assert.Same(t, want, CurrentUser(r.Context()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func neverCalled(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	})
}

func TestAuth_TokenSources(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)
	user := newUser(true)
	users := fakeUsers{user.PublicID: user}

	token, err := jwtService.GenerateToken(user.PublicID, user.Email)
	require.NoError(t, err)

	tests := []struct {
		name  string
		apply func(r *http.Request)
	}{
		{"authorization_header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token}) }},
		{"x_auth_token", func(r *http.Request) { r.Header.Set("X-Auth-Token", token) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/teams", nil)
			tt.apply(req)

			rec := httptest.NewRecorder()
			Auth(jwtService, users)(okHandler(t, user)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "OK", rec.Body.String())
		})
	}
}

func TestAuth_Rejections(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)
	active := newUser(true)
	inactive := newUser(false)
	users := fakeUsers{active.PublicID: active, inactive.PublicID: inactive}

	mustToken := func(svc *auth.JWTService, id uuid.UUID) string {
		tok, err := svc.GenerateToken(id, "test@example.com")
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no_token", ""},
		{"invalid_token", "Bearer invalid-token"},
		{"other_secret", "Bearer " + mustToken(auth.NewJWTService("secret-2", time.Hour), active.PublicID)},
		{"unknown_user", "Bearer " + mustToken(jwtService, uuid.New())},
		{"inactive_user", "Bearer " + mustToken(jwtService, inactive.PublicID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/teams", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			Auth(jwtService, users)(neverCalled(t)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Unauthenticated")
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Nanosecond)
	user := newUser(true)

	token, err := jwtService.GenerateToken(user.PublicID, user.Email)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	req := httptest.NewRequest("GET", "/api/v1/teams", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Auth(jwtService, fakeUsers{user.PublicID: user})(neverCalled(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContextHelpers_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, uuid.Nil, GetUserID(ctx))
	assert.Equal(t, "", GetUserEmail(ctx))
	assert.Nil(t, CurrentUser(ctx))
}

func TestWithUser(t *testing.T) {
	user := newUser(true)
	ctx := WithUser(context.Background(), user)

	assert.Equal(t, user.PublicID, GetUserID(ctx))
	assert.Equal(t, user.Email, GetUserEmail(ctx))
	assert.Same(t, user, CurrentUser(ctx))
}

func TestRecovery(t *testing.T) {
	logger := discardLogger()
	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
