package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/fitness-app-api/internal/container"
	handlers "github.com/oksasatya/fitness-app-api/internal/interface/http"
	"github.com/oksasatya/fitness-app-api/internal/interface/middleware"
)

// AuthModule serves the public credential endpoints under /auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/logout", m.Handler.Logout)
}
