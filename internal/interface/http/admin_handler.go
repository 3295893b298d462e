package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fitness-app-api/internal/application"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
	"github.com/oksasatya/fitness-app-api/pkg/response"
)

type AdminHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewAdminHandler(users *application.UserService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Logger: logger}
}

// SearchUsers GET /api/admin/users/search?q=&size=
func (h *AdminHandler) SearchUsers(c *gin.Context, id helpers.Identity) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Users.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).WithField("admin_id", id.UserID).Error("user search failed")
		response.Error[any](c, http.StatusBadGateway, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "ok", gin.H{"count": len(hits), "q": q})
}
