package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	handlers "github.com/oksasatya/fitness-app-api/internal/interface/http"
	"github.com/oksasatya/fitness-app-api/internal/interface/middleware"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
)

// AdminModule exposes ROLE_ADMIN-only tooling under /admin.
type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
	Cookies *helpers.Manager
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager, cookies *helpers.Manager) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt, Cookies: cookies}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", middleware.RequireRole(m.JWT, m.Cookies, entity.RoleAdmin))
	admin.GET("/users/search", middleware.WithIdentity(m.Handler.SearchUsers))
}
