package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/teamhub/internal/database"
	"github.com/hugh/teamhub/internal/demo"
	"github.com/hugh/teamhub/internal/notifications"
	"github.com/hugh/teamhub/internal/tasks"
	"github.com/hugh/teamhub/pkg/config"
	"github.com/hugh/teamhub/pkg/queue"
	"github.com/hugh/teamhub/pkg/util"
	"github.com/joho/godotenv"
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

	logger.Info("starting teamhub worker", "demo_mode", cfg.Demo.Enabled)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10)

	// Create task handler
	handler := tasks.NewHandler(
		logger,
		notifications.NewService(db, logger),
		demo.NewService(db, cfg.Demo, logger),
	)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// The demo reset only runs while demo mode is on
	var scheduler *asynq.Scheduler
	if cfg.Demo.Enabled && cfg.Demo.ResetCron != "" {
		if err := util.ValidateCronExpr(cfg.Demo.ResetCron); err != nil {
			logger.Error("invalid DEMO_RESET_CRON", "cron", cfg.Demo.ResetCron, "error", err)
			os.Exit(1)
		}

		scheduler = queue.NewScheduler(&cfg.Redis)
		entryID, err := scheduler.Register(cfg.Demo.ResetCron, tasks.NewDemoResetTask(), asynq.Queue(queue.QueueLow))
		if err != nil {
			logger.Error("failed to schedule demo reset", "error", err)
			os.Exit(1)
		}
		logger.Info("demo reset scheduled", "cron", cfg.Demo.ResetCron, "entry_id", entryID)

		go func() {
			if err := scheduler.Run(); err != nil {
				logger.Error("scheduler error", "error", err)
			}
		}()
	}

	// Handle shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		if scheduler != nil {
			scheduler.Shutdown()
		}
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	// Wait for context cancellation
	<-ctx.Done()

	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
