package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userhub/identity-service/internal/api/handler"
	"github.com/userhub/identity-service/internal/api/middleware"
	"github.com/userhub/identity-service/internal/core/domain"
	"github.com/userhub/identity-service/internal/core/password"
	"github.com/userhub/identity-service/internal/core/ports"
	"github.com/userhub/identity-service/internal/core/service"
	"github.com/userhub/identity-service/internal/core/token"
	mongodb "github.com/userhub/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/userhub/identity-service/internal/infrastructure/db/redis"
	"github.com/userhub/identity-service/internal/pkg/config"
)

// NewRouter builds the Echo instance with all routes registered. notifier may
// be nil when reset notifications are not dispatched.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, notifier ports.ResetNotifier, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	signer, err := token.NewSigner(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	hasher := password.NewHasher(cfg.BcryptCost)
	repo := mongodb.NewUserRepository(db)

	identityService := service.NewIdentityService(repo, hasher, signer, notifier, cfg.TokenTTL, cfg.ResetTokenTTL, log)
	userService := service.NewUserService(repo, log)

	authHandler := handler.NewAuthHandler(identityService)
	userHandler := handler.NewUserHandler(userService)

	authenticated := middleware.Auth(signer, repo)
	limiter := redisdb.NewFixedWindowLimiter(rdb, cfg.RateLimit.Attempts, cfg.RateLimit.Window)

	// --- Auth routes ---
	// Login and forgot-password are the brute-forceable surfaces; they get
	// the throttling collaborator in front of them.
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login, middleware.RateLimit(limiter, "login", log))
	e.POST("/auth/forgot-password", authHandler.ForgotPassword, middleware.RateLimit(limiter, "forgot_password", log))
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.GET("/auth/profile", authHandler.Profile, authenticated, middleware.RequireRoles())

	// --- User management routes ---
	// The per-route RequireRoles call is the static route-to-roles table.
	users := e.Group("/users", authenticated)
	users.GET("", userHandler.List, middleware.RequireRoles(domain.RoleAdmin))
	users.GET("/:id", userHandler.Get, middleware.RequireRoles())
	users.PUT("/:id", userHandler.Update, middleware.RequireRoles())
	users.PATCH("/:id/status", userHandler.UpdateStatus, middleware.RequireRoles(domain.RoleAdmin))
	users.DELETE("/:id", userHandler.Delete, middleware.RequireRoles(domain.RoleAdmin))

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e, nil
}
