package middleware

import (
	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
)

// DenyReason explains why a request was not authorized.
type DenyReason string

const (
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyForbidden       DenyReason = "forbidden"
)

// Decision is the outcome of an authorization check: either an Identity or a
// DenyReason, never both.
type Decision struct {
	Identity helpers.Identity
	Reason   DenyReason
}

func (d Decision) Authorized() bool { return d.Reason == "" }

func Authorized(id helpers.Identity) Decision { return Decision{Identity: id} }

func Denied(reason DenyReason) Decision { return Decision{Reason: reason} }

// Authorize validates token and checks that it carries the required role.
func Authorize(jwt *helpers.JWTManager, token string, required entity.RoleName) Decision {
	claims, err := jwt.Validate(token)
	if err != nil {
		return Denied(DenyUnauthenticated)
	}
	id := claims.Identity()
	if !id.HasRole(string(required)) {
		return Denied(DenyForbidden)
	}
	return Authorized(id)
}
