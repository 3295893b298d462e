package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"

	"github.com/oksasatya/fitness-app-api/config"
	"github.com/oksasatya/fitness-app-api/internal/application"
	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	repo "github.com/oksasatya/fitness-app-api/internal/domain/repository"
	pginfra "github.com/oksasatya/fitness-app-api/internal/infrastructure/postgres"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
)

// seed ensures the role set and an administrator account exist.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if cfg.AdminPassword == "" {
		logger.Fatal("ADMIN_PASSWORD is required to seed the admin account")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	roles := pginfra.NewRoleRepository(pool)
	users := pginfra.NewUserRepository(pool)

	if err := application.EnsureRoles(ctx, roles, logger); err != nil {
		logger.WithError(err).Fatal("failed to ensure roles")
	}

	email := application.NormalizeEmail(cfg.AdminEmail)
	u, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		hash, herr := helpers.NewBcryptHasher(cfg.BcryptCost).Hash(cfg.AdminPassword)
		if herr != nil {
			logger.WithError(herr).Fatal("failed to hash password")
		}
		u = &entity.User{
			Name:      cfg.AdminName,
			Email:     email,
			Password:  hash,
			AvatarURL: application.DefaultAvatarURL(email),
			Roles:     entity.AllRoles(),
		}
		if err := users.Create(ctx, u); err != nil {
			logger.WithError(err).Fatal("failed to create admin")
		}
		logger.WithField("user_id", u.ID).Info("admin account created")
	case err != nil:
		logger.WithError(err).Fatal("failed to look up admin")
	default:
		for _, name := range entity.AllRoles() {
			if u.HasRole(name) {
				continue
			}
			if err := roles.Assign(ctx, u.ID, name); err != nil {
				logger.WithError(err).WithField("role", name).Fatal("failed to assign role")
			}
		}
		logger.WithField("user_id", u.ID).Info("admin account already present; roles ensured")
	}
}
