package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ratehub/ratehub-backend/internal/users"
	"github.com/ratehub/ratehub-backend/pkg/config"
	"github.com/ratehub/ratehub-backend/pkg/db"
	"github.com/ratehub/ratehub-backend/pkg/db/models"
	"github.com/ratehub/ratehub-backend/pkg/enums"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"github.com/ratehub/ratehub-backend/pkg/security"
)

// Seeds the first admin account. Safe to re-run: an existing account with the
// same email is left untouched.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	name := flag.String("name", "Platform Administrator Account", "admin display name")
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	address := flag.String("address", "", "admin address")
	flag.Parse()

	if *email == "" || *password == "" {
		logg.Error(context.Background(), "missing -email or -password", nil)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithField(context.Background(), "email", strings.ToLower(*email))

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	repo := users.NewRepository(dbClient.DB())

	existing, err := repo.FindByEmail(ctx, strings.ToLower(*email))
	if err != nil {
		logg.Error(ctx, "failed to look up admin account", err)
		os.Exit(1)
	}
	if existing != nil {
		logg.Info(ctx, "admin account already exists, nothing to do")
		return
	}

	hash, err := security.HashPassword(*password, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	admin := &models.User{
		Name:         strings.TrimSpace(*name),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: hash,
		Address:      strings.TrimSpace(*address),
		Role:         enums.RoleAdmin,
	}
	if err := repo.Create(ctx, admin); err != nil {
		logg.Error(ctx, "failed to create admin account", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "user_id", admin.ID.String()), "admin account created")
}
