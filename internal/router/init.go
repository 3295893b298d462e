package router

import (
	"github.com/oksasatya/fitness-app-api/internal/application"
	"github.com/oksasatya/fitness-app-api/internal/container"
	pginfra "github.com/oksasatya/fitness-app-api/internal/infrastructure/postgres"
	"github.com/oksasatya/fitness-app-api/internal/infrastructure/search"
	handlers "github.com/oksasatya/fitness-app-api/internal/interface/http"
	"github.com/oksasatya/fitness-app-api/internal/router/modules"
)

type moduleDeps struct {
	Auth  *handlers.AuthHandler
	User  *handlers.UserHandler
	Admin *handlers.AdminHandler
}

func buildDeps() (moduleDeps, error) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	users := pginfra.NewUserRepository(container.GetPGPool())

	// interfaces stay nil, not typed-nil, when a backend is disabled
	var index application.UserIndexer
	if es := container.GetES(); es != nil {
		index = search.NewUserIndex(es, cfg.ESUsersIndex, logger)
	}
	var avatars application.AvatarStore
	if up := container.GetAvatars(); up != nil {
		avatars = up
	}
	var notifier *application.Notifier
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		notifier = &application.Notifier{
			Pub:         pub,
			Logger:      logger,
			AppName:     cfg.AppName,
			CompanyName: cfg.CompanyName,
			SupportURL:  cfg.SupportURL,
		}
	}

	authSvc, err := application.NewAuthService(users, container.GetJWT(), container.GetHasher(), index, notifier, logger)
	if err != nil {
		return moduleDeps{}, err
	}
	userSvc := application.NewUserService(users, container.GetRedis(), avatars, index, notifier, logger)

	return moduleDeps{
		Auth:  handlers.NewAuthHandler(authSvc, container.GetCookies(), logger),
		User:  handlers.NewUserHandler(userSvc, logger),
		Admin: handlers.NewAdminHandler(userSvc, logger),
	}, nil
}

// InitModules wires all feature modules into the registry.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	jwt := container.GetJWT()
	cookies := container.GetCookies()

	r.Add(modules.NewAuthModule(deps.Auth))
	r.Add(modules.NewUserModule(deps.User, jwt, cookies))
	r.Add(modules.NewAdminModule(deps.Admin, jwt, cookies))
	if cfg := container.GetConfig(); cfg == nil || cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
	return nil
}
