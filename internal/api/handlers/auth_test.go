package handlers_test

import (
	"net/http"
	"testing"

	"github.com/hugh/teamhub/internal/api/dto"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{
			name:       "valid registration",
			body:       map[string]interface{}{"email": "New.User@Example.com", "password": "password123", "name": "New User"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing email",
			body:       map[string]interface{}{"password": "password123", "name": "New User"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password",
			body:       map[string]interface{}{"email": "short@example.com", "password": "short", "name": "New User"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       map[string]interface{}{"email": "new.user@example.com", "password": "password123", "name": "Again"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "POST", "/api/v1/auth/register", tt.body, "")
			testutil.AssertStatus(t, rr, tt.wantStatus)
		})
	}

	t.Run("response carries token, cookie and current team", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/v1/auth/register",
			map[string]interface{}{"email": "fresh@example.com", "password": "password123", "name": "Fresh"}, "")
		testutil.AssertStatus(t, rr, http.StatusCreated)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "fresh@example.com", resp.User.Email)
		require.NotNil(t, resp.User.CurrentTeamID)

		var team models.Team
		require.NoError(t, env.DB.Where("public_id = ?", *resp.User.CurrentTeamID).First(&team).Error)
		assert.True(t, team.IsPersonal)

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, middleware.TokenCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupTestRouter(t)
	user := testutil.CreateTestUserWithEmail(t, env.DB, "Login User", "login@example.com")

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{"valid credentials", map[string]interface{}{"email": "login@example.com", "password": "testpassword123"}, http.StatusOK},
		{"email is case insensitive", map[string]interface{}{"email": " LOGIN@example.com ", "password": "testpassword123"}, http.StatusOK},
		{"wrong password", map[string]interface{}{"email": "login@example.com", "password": "nope-nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]interface{}{"email": "ghost@example.com", "password": "testpassword123"}, http.StatusUnauthorized},
		{"missing password", map[string]interface{}{"email": "login@example.com"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "POST", "/api/v1/auth/login", tt.body, "")
			testutil.AssertStatus(t, rr, tt.wantStatus)
		})
	}

	t.Run("inactive account", func(t *testing.T) {
		require.NoError(t, env.DB.Model(user).Update("is_active", false).Error)
		rr := env.do(t, "POST", "/api/v1/auth/login",
			map[string]interface{}{"email": "login@example.com", "password": "testpassword123"}, "")
		assertError(t, rr, http.StatusForbidden, "Account is inactive")
	})
}

func TestAuthHandler_InvalidBody(t *testing.T) {
	env := setupTestRouter(t)

	rr := env.do(t, "POST", "/api/v1/auth/login", "not-an-object", "")
	assertError(t, rr, http.StatusBadRequest, "Invalid request body")
}

func TestAuthHandler_User(t *testing.T) {
	env := setupTestRouter(t)

	rr := env.do(t, "GET", "/api/v1/auth/user", nil, env.Token)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var user dto.UserDTO
	decodeData(t, rr, &user)
	assert.Equal(t, env.User.PublicID.String(), user.ID)
	assert.Equal(t, env.User.Email, user.Email)
	require.NotNil(t, user.CurrentTeamID)

	rr = env.do(t, "GET", "/api/v1/auth/user", nil, "")
	assertError(t, rr, http.StatusUnauthorized, "Unauthenticated")
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	env := setupTestRouter(t)

	rr := env.do(t, "PUT", "/api/v1/auth/user", map[string]interface{}{"name": "  Renamed  "}, env.Token)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var user dto.UserDTO
	decodeData(t, rr, &user)
	assert.Equal(t, "Renamed", user.Name)

	rr = env.do(t, "PUT", "/api/v1/auth/user", map[string]interface{}{"name": ""}, env.Token)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	env := setupTestRouter(t)

	rr := env.do(t, "PUT", "/api/v1/auth/password", map[string]interface{}{
		"current_password":      "wrong-password",
		"password":              "brand-new-pass",
		"password_confirmation": "brand-new-pass",
	}, env.Token)
	testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
	assert.Contains(t, decodeEnvelope(t, rr).Details, "current_password")

	rr = env.do(t, "PUT", "/api/v1/auth/password", map[string]interface{}{
		"current_password":      "testpassword123",
		"password":              "brand-new-pass",
		"password_confirmation": "different-pass",
	}, env.Token)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = env.do(t, "PUT", "/api/v1/auth/password", map[string]interface{}{
		"current_password":      "testpassword123",
		"password":              "brand-new-pass",
		"password_confirmation": "brand-new-pass",
	}, env.Token)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var stored models.User
	require.NoError(t, env.DB.First(&stored, env.User.ID).Error)
	assert.True(t, auth.CheckPassword("brand-new-pass", stored.PasswordHash))
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupTestRouter(t)

	rr := env.do(t, "POST", "/api/v1/auth/logout", nil, env.Token)
	testutil.AssertStatus(t, rr, http.StatusOK)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.TokenCookieName, cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}
