package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/teamhub/internal/api"
	"github.com/hugh/teamhub/internal/api/middleware"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/database"
	"github.com/hugh/teamhub/internal/demo"
	"github.com/hugh/teamhub/internal/notifications"
	"github.com/hugh/teamhub/internal/projects"
	"github.com/hugh/teamhub/internal/tasks"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/internal/terms"
	"github.com/hugh/teamhub/pkg/config"
	"github.com/hugh/teamhub/pkg/queue"
	"github.com/hugh/teamhub/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting teamhub server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
		"demo_mode", cfg.Demo.Enabled,
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis, falling back to in-process limits and inline notifications", "error", err)
		_ = redisClient.Close()
		redisClient = nil
	}

	// Asynq client for background notification delivery
	var asynqClient *asynq.Client
	var enqueuer tasks.Enqueuer
	if redisClient != nil {
		asynqClient = queue.NewClient(&cfg.Redis)
		enqueuer = asynqClient
	}

	// Rate limiters: shared through redis when available
	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	authWindow := time.Duration(cfg.RateLimit.AuthWindow) * time.Second
	var apiLimiter, authLimiter middleware.Limiter
	if redisClient != nil {
		apiLimiter = middleware.NewRedisLimiter(redisClient, "api", cfg.RateLimit.Requests, window)
		authLimiter = middleware.NewRedisLimiter(redisClient, "auth", cfg.RateLimit.AuthRequests, authWindow)
	} else {
		memAPI := middleware.NewMemoryLimiter(cfg.RateLimit.Requests, window)
		memAuth := middleware.NewMemoryLimiter(cfg.RateLimit.AuthRequests, authWindow)
		defer memAPI.Stop()
		defer memAuth.Stop()
		apiLimiter, authLimiter = memAPI, memAuth
	}
	csrfStore := middleware.NewCSRFStore()
	defer csrfStore.Stop()

	// Initialize services
	guard := demo.NewGuard(db, cfg.Demo)
	notificationService := notifications.NewService(db, logger)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, guard)
	teamService := teams.NewService(db, logger, teams.Options{
		Guard:         guard,
		Notifier:      tasks.NewInvitationNotifier(enqueuer, notificationService, logger),
		InvitationTTL: cfg.Invitations.TTL(),
	})
	projectService := projects.NewService(db, logger, guard, notificationService)
	termsService := terms.NewService(db, cfg.Terms)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		JWTService:     jwtService,
		AuthService:    authService,
		Teams:          teamService,
		Projects:       projectService,
		Notifications:  notificationService,
		Terms:          termsService,
		Demo:           cfg.Demo,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		SecureCookies:  !cfg.Server.IsDevelopment(),
		APILimiter:     apiLimiter,
		AuthLimiter:    authLimiter,
		CSRF:           csrfStore,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
