package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/fitness-app-api/internal/container"
	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	handlers "github.com/oksasatya/fitness-app-api/internal/interface/http"
	"github.com/oksasatya/fitness-app-api/internal/interface/middleware"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
)

// UserModule serves the authenticated user's own profile under /user.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Cookies *helpers.Manager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, cookies *helpers.Manager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Cookies: cookies}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	user := rg.Group("/user")
	user.Use(
		middleware.RequireRole(m.JWT, m.Cookies, entity.RoleUser),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		user.GET("/me", middleware.WithIdentity(m.Handler.Me))
		user.PUT("/update-profile", middleware.WithIdentity(m.Handler.UpdateProfile))
		user.POST("/avatar",
			middleware.RateLimit(container.GetRedis(), 10, time.Hour, middleware.KeyByUserID(), nil),
			middleware.WithIdentity(m.Handler.UploadAvatar),
		)
	}
}
