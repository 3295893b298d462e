package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
	"github.com/oksasatya/fitness-app-api/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	ctxIdentityKey = "identity"
)

// IdentityHandler is a protected handler; it receives the already validated caller.
type IdentityHandler func(c *gin.Context, id helpers.Identity)

// RequireRole rejects requests without a valid token cookie (401) or without
// the role (403). On success the identity is attached for WithIdentity and
// userID is set for per-user rate limiting.
func RequireRole(jwt *helpers.JWTManager, cookies *helpers.Manager, role entity.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := Authorize(jwt, cookies.Token(c), role)
		switch d.Reason {
		case DenyUnauthenticated:
			response.Error[any](c, http.StatusUnauthorized, "Unauthorized", nil)
			return
		case DenyForbidden:
			response.Error[any](c, http.StatusForbidden, "Forbidden", nil)
			return
		}
		c.Set(ctxIdentityKey, d.Identity)
		c.Set(CtxUserIDKey, d.Identity.UserID)
		c.Next()
	}
}

// WithIdentity adapts h to gin, passing the identity set by RequireRole.
// Routes registered without RequireRole answer 401.
func WithIdentity(h IdentityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(ctxIdentityKey)
		id, isID := v.(helpers.Identity)
		if !ok || !isID {
			response.Error[any](c, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		h(c, id)
	}
}
