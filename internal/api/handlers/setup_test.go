package handlers_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/teamhub/internal/api/handlers"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/notifications"
	"github.com/hugh/teamhub/internal/projects"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/internal/terms"
	"github.com/hugh/teamhub/internal/testutil"
	"github.com/hugh/teamhub/pkg/config"
	"github.com/hugh/teamhub/pkg/util"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	*testutil.TestSetup
	Router *chi.Mux
	Teams  *teams.Service
	Notes  *notifications.Service
	Terms  *terms.Service
}

type envelope struct {
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func setupTestRouter(t *testing.T) *testEnv {
	return setupTestRouterWithDemo(t, config.DemoConfig{})
}

func setupTestRouterWithDemo(t *testing.T, demoCfg config.DemoConfig) *testEnv {
	tc := testutil.NewTestContext(t)
	logger := util.NewDiscardLogger()

	authService := auth.NewService(tc.DB, tc.JWTService, nil)
	teamService := teams.NewService(tc.DB, logger, teams.Options{})
	notes := notifications.NewService(tc.DB, logger)
	projectService := projects.NewService(tc.DB, logger, nil, notes)
	termsService := terms.NewService(tc.DB, config.TermsConfig{CurrentVersion: "2026-01", Label: "Terms of Service"})

	authHandler := handlers.NewAuthHandler(authService, teamService, logger, tc.JWTService.Expiry(), false)
	teamHandler := handlers.NewTeamHandler(teamService, logger)
	invitationHandler := handlers.NewInvitationHandler(teamService, logger)
	notificationHandler := handlers.NewNotificationHandler(notes, logger)
	projectHandler := handlers.NewProjectHandler(projectService, logger)
	termsHandler := handlers.NewTermsHandler(termsService, logger)
	demoHandler := handlers.NewDemoHandler(demoCfg)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/demo/status", demoHandler.Status)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tc.JWTService, authService))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/user", authHandler.User)
			r.Put("/auth/user", authHandler.UpdateProfile)
			r.Put("/auth/password", authHandler.ChangePassword)
			r.Get("/terms", termsHandler.Show)
			r.Post("/terms/accept", termsHandler.Accept)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)
				r.Get("/{id}", projectHandler.Get)
				r.Put("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
				r.Post("/{id}/responses", projectHandler.SaveResponse)
				r.Post("/{id}/complete", projectHandler.Complete)
			})

			r.Get("/users/search", invitationHandler.SearchUsers)

			r.Route("/teams", func(r chi.Router) {
				r.Get("/", teamHandler.List)
				r.Post("/", teamHandler.Create)
				r.Get("/current", teamHandler.Current)
				r.Post("/current", teamHandler.SetCurrent)
				r.Get("/{teamID}", teamHandler.Get)
				r.Put("/{teamID}", teamHandler.Update)
				r.Delete("/{teamID}", teamHandler.Delete)
				r.Get("/{teamID}/members", teamHandler.Members)
				r.Delete("/{teamID}/members/{userID}", teamHandler.RemoveMember)
				r.Put("/{teamID}/members/{userID}/role", teamHandler.UpdateRole)
				r.Post("/{teamID}/transfer-ownership", teamHandler.TransferOwnership)
				r.Get("/{teamID}/invitations", invitationHandler.TeamList)
				r.Post("/{teamID}/invitations", invitationHandler.Create)
				r.Delete("/{teamID}/invitations/{invitationID}", invitationHandler.Cancel)
			})

			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/read-all", notificationHandler.MarkAllRead)
			r.Post("/notifications/{id}/read", notificationHandler.MarkRead)

			r.Get("/invitations", invitationHandler.List)
			r.Post("/invitations/{invitationID}/accept", invitationHandler.Accept)
			r.Post("/invitations/{invitationID}/decline", invitationHandler.Decline)
		})
	})

	return &testEnv{
		TestSetup: tc,
		Router:    r,
		Teams:     teamService,
		Notes:     notes,
		Terms:     termsService,
	}
}

// do sends a request as the user owning token. An empty token sends an
// anonymous request.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.AuthenticatedRequest(t, method, path, body, token)
	rr := httptest.NewRecorder()
	e.Router.ServeHTTP(rr, req)
	return rr
}

// tokenFor creates a user and returns it with a valid token.
func (e *testEnv) tokenFor(t *testing.T, name string) (*models.User, string) {
	t.Helper()
	user := testutil.CreateTestUser(t, e.DB, name)
	return user, testutil.GenerateTestToken(t, e.JWTService, user)
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	testutil.ParseJSONResponse(t, rr, &env)
	return env
}

// decodeData unmarshals the data member of a response into v.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rr)
	require.NotEmpty(t, env.Data, "response has no data: %s", rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	testutil.AssertStatus(t, rr, status)
	if msg != "" {
		require.Equal(t, msg, decodeEnvelope(t, rr).Error)
	}
}
