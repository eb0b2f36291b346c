package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhub/identity-service/internal/core/authz"
	"github.com/userhub/identity-service/internal/core/domain"
)

// RequireRoles enforces role-based access using the role the Auth middleware
// placed on the context. With no roles listed the route is open to any
// authenticated principal. Attaching this middleware at route registration is
// the static route-to-roles declaration; there is no reflection involved.
func RequireRoles(required ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyRole).(domain.Role)
			if !authz.Decide(required, role) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
