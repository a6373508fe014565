//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hugh/teamhub/internal/database"
	"github.com/hugh/teamhub/internal/demo"
	"github.com/hugh/teamhub/pkg/config"
	"github.com/hugh/teamhub/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	svc := demo.NewService(db, cfg.Demo, logger)
	if err := svc.Seed(context.Background()); err != nil {
		log.Fatalf("failed to seed demo data: %v", err)
	}

	fmt.Printf("Demo data seeded\n")
	fmt.Printf("Email: %s\n", cfg.Demo.UserEmail)
	fmt.Printf("Password: %s\n", cfg.Demo.UserPassword)
}
