package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhub/identity-service/internal/api/middleware"
	"github.com/userhub/identity-service/internal/core/domain"
)

// ctxPrincipal extracts the authenticated principal injected by the Auth
// middleware. Its presence proves the middleware ran; a handler reached
// without it is a wiring bug, answered with 401 rather than a panic.
func ctxPrincipal(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(middleware.ContextKeyUser).(*domain.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}
