package main

import (
	"context"
	"flag"
	"os"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/auth"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/config"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/database"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
)

// Creates or resets an admin of PROJECT_ID:
//
//	go run ./cmd/seed_admin -email owner@gym.test -password '...'
func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password, defaults to $ADMIN_PASSWORD")
	role := flag.String("role", auth.RoleAdmin, "role to store on the user")
	flag.Parse()

	cfg := config.LoadConfig()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	projectID, err := cfg.RequireProjectID()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	user, err := auth.SaveUser(context.Background(), db, *email, *password, *role, projectID)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to save user")
	}
	logging.Info().Str("id", user.ID).Str("email", user.Email).Str("role", user.Role).
		Str("project", user.ProjectID).Msg("User saved")
}
