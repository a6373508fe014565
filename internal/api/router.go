package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/teamhub/internal/api/handlers"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/notifications"
	"github.com/hugh/teamhub/internal/projects"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/internal/terms"
	"github.com/hugh/teamhub/pkg/config"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Logger *slog.Logger

	JWTService    *auth.JWTService
	AuthService   *auth.Service
	Teams         *teams.Service
	Projects      *projects.Service
	Notifications *notifications.Service
	Terms         *terms.Service

	Demo           config.DemoConfig
	AllowedOrigins []string // CORS allowed origins
	SecureCookies  bool

	// APILimiter and AuthLimiter count requests for the authenticated API
	// and the login/register endpoints.
	APILimiter  middleware.Limiter
	AuthLimiter middleware.Limiter
	CSRF        *middleware.CSRFStore
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiLimiter := cfg.APILimiter
	if apiLimiter == nil {
		apiLimiter = middleware.NewMemoryLimiter(60, time.Minute)
	}
	authLimiter := cfg.AuthLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewMemoryLimiter(5, time.Minute)
	}
	csrfStore := cfg.CSRF
	if csrfStore == nil {
		csrfStore = middleware.NewCSRFStore()
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Teams, cfg.Logger, cfg.JWTService.Expiry(), cfg.SecureCookies)
	demoHandler := handlers.NewDemoHandler(cfg.Demo)
	termsHandler := handlers.NewTermsHandler(cfg.Terms, cfg.Logger)
	teamHandler := handlers.NewTeamHandler(cfg.Teams, cfg.Logger)
	invitationHandler := handlers.NewInvitationHandler(cfg.Teams, cfg.Logger)
	notificationHandler := handlers.NewNotificationHandler(cfg.Notifications, cfg.Logger)
	projectHandler := handlers.NewProjectHandler(cfg.Projects, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(apiLimiter, middleware.KeyByIP, cfg.Logger))
			r.Get("/demo/status", demoHandler.Status)
		})

		// Public auth endpoints with their own, stricter budget
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(authLimiter, middleware.KeyByIP, cfg.Logger))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService, cfg.AuthService))
			r.Use(middleware.RateLimit(apiLimiter, middleware.KeyByUser, cfg.Logger))
			r.Use(middleware.CSRF(csrfStore))

			// Reachable before the current terms are accepted
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/user", authHandler.User)
			r.Get("/terms", termsHandler.Show)
			r.Post("/terms/accept", termsHandler.Accept)

			r.Group(func(r chi.Router) {
				r.Use(middleware.EnsureTermsAccepted(cfg.Terms, cfg.Logger))

				r.Put("/auth/user", authHandler.UpdateProfile)
				r.Put("/auth/password", authHandler.ChangePassword)

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
	})

	return &Router{r}
}
