package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/identity-service/internal/api/metrics"
)

// AttemptLimiter is the throttling collaborator consulted before credential
// and reset endpoints. Implemented by the Redis fixed-window limiter.
type AttemptLimiter interface {
	Allow(ctx context.Context, scope, key string) (bool, error)
}

// RateLimit throttles a route under two independent keys: the client IP and
// the account identifier submitted in the body. The IP key catches one host
// spraying many accounts; the account key catches a distributed attack on a
// single account from many hosts. The core services know nothing about
// throttling; removing this middleware restores unthrottled behaviour.
// Limiter errors fail open so a Redis outage does not lock everyone out.
func RateLimit(limiter AttemptLimiter, scope string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			keys := []string{"ip:" + c.RealIP()}
			if account := accountKey(c); account != "" {
				keys = append(keys, "account:"+account)
			}

			for _, key := range keys {
				ok, err := limiter.Allow(c.Request().Context(), scope, key)
				if err != nil {
					log.Error().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
					return next(c)
				}
				if !ok {
					metrics.ThrottledRequestsTotal.WithLabelValues(scope).Inc()
					return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
				}
			}
			return next(c)
		}
	}
}

// accountKey peeks the request body for the account being targeted, then
// restores the body for the handler's own bind. Returns "" when no account
// field is present, leaving only the IP key in effect.
func accountKey(c echo.Context) string {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return ""
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		Identifier string `json:"identifier"`
		Email      string `json:"email"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return ""
	}
	account := probe.Identifier
	if account == "" {
		account = probe.Email
	}
	return strings.ToLower(strings.TrimSpace(account))
}
