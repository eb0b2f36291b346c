package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userhub/identity-service/internal/core/ports"
	"github.com/userhub/identity-service/internal/core/token"
)

// Context keys populated by Auth for downstream handlers.
const (
	ContextKeyUser = "user"
	ContextKeyRole = "role"
)

// Auth validates the bearer token and injects the authenticated principal
// into the request context. The principal is re-fetched from the store on
// every request so deactivation and role changes take effect immediately
// instead of waiting for the token to expire; a missing or inactive user is
// rejected even when the token itself is valid.
//
// The distinct token failure kinds (malformed, bad signature, expired) all
// collapse to the same 401 here.
func Auth(signer *token.Signer, repo ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := signer.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := repo.FindByID(c.Request().Context(), claims.Subject)
			if err != nil || !user.IsActive {
				return echo.NewHTTPError(http.StatusUnauthorized, "user is invalid, not found, or deactivated")
			}

			c.Set(ContextKeyUser, user.Sanitized())
			c.Set(ContextKeyRole, user.Role)

			return next(c)
		}
	}
}
