package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/teamhub/internal/api/dto"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/teams"
)

type AuthHandler struct {
	authService *auth.Service
	teams       *teams.Service
	logger      *slog.Logger
	cookieTTL   time.Duration
	secure      bool
}

// NewAuthHandler builds the auth endpoints. cookieTTL should match the token
// lifetime; secure marks the session cookie HTTPS-only.
func NewAuthHandler(authService *auth.Service, teamService *teams.Service, logger *slog.Logger, cookieTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		teams:       teamService,
		logger:      logger,
		cookieTTL:   cookieTTL,
		secure:      secure,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"email": "The email has already been taken"},
			})
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, resp.Token)
	h.writeAuth(w, r, http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, auth.ErrInactiveUser):
			writeError(w, http.StatusForbidden, "Account is inactive")
		default:
			h.logger.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	h.setTokenCookie(w, resp.Token)
	h.writeAuth(w, r, http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless, so this
// only clears the browser cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		MaxAge:   -1,
	})

	writeMessage(w, "Logged out")
}

// User handles GET /api/v1/auth/user
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	h.writeUser(w, r, user, "")
}

// UpdateProfile handles PUT /api/v1/auth/user
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	if err := h.authService.UpdateProfile(r.Context(), user, req.Name); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeUser(w, r, user, "Profile updated")
}

// ChangePassword handles PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	var req dto.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	err := h.authService.ChangePassword(r.Context(), user, req.CurrentPassword, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"current_password": "The current password is incorrect"},
		})
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeMessage(w, "Password updated")
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookieTTL.Seconds()),
	})
}

func (h *AuthHandler) writeAuth(w http.ResponseWriter, r *http.Request, status int, resp *auth.AuthResponse) {
	team, err := h.teams.CurrentTeam(r.Context(), resp.User)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, status, dto.AuthResponse{
		Token: resp.Token,
		User:  dto.NewUserDTO(resp.User, team),
	})
}

func (h *AuthHandler) writeUser(w http.ResponseWriter, r *http.Request, user *models.User, msg string) {
	team, err := h.teams.CurrentTeam(r.Context(), user)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto.NewUserDTO(user, team), msg)
}
