package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/userhub/directory-api/internal/api/handler"
	"github.com/userhub/directory-api/internal/api/middleware"
	"github.com/userhub/directory-api/internal/core/ports"
	"github.com/userhub/directory-api/internal/core/service"
	"github.com/userhub/directory-api/internal/infrastructure/config"
	bundb "github.com/userhub/directory-api/internal/infrastructure/db/bun"
	redisdb "github.com/userhub/directory-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil; the user view cache is skipped in that case.
func NewRouter(cfg *config.Config, db *bun.DB, rdb *redis.Client, audit ports.AuditSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Security.Realm, log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("userdir"))

	// --- Dependencies ---
	var cache ports.UserViewCache
	if rdb != nil {
		cache = redisdb.NewUserViewCache(rdb, log)
	}

	hasher := service.NewPasswordHasher(cfg.Security.HashRounds)
	tokens := service.NewTokenService(
		cfg.Security.Secret,
		cfg.Security.Issuer,
		cfg.Security.Audience,
		cfg.Security.TokenType,
		cfg.Security.Validity(),
	)
	roles := service.NewRoleService(bundb.NewRoleRepository(db))
	users := service.NewUserService(bundb.NewUserRepository(db), roles, hasher, cache, audit, log)

	authHandler := handler.NewAuthHandler(users, tokens)
	userHandler := handler.NewUserHandler(users)
	roleHandler := handler.NewRoleHandler(roles)

	// Bearer tokens are optional everywhere: absence or a failed parse means
	// anonymous, and the per-operation decision function takes it from there.
	e.Use(middleware.OptionalAuth(tokens))

	// --- Routes ---
	e.POST("/login", authHandler.Login)
	e.GET("/roles", roleHandler.List)

	e.GET("/users", userHandler.List)
	e.GET("/users/:id", userHandler.Read)
	e.POST("/users", userHandler.Create)
	e.PUT("/users/:id", userHandler.Update)
	e.DELETE("/users/:id", userHandler.Delete)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // process is alive
	e.GET("/health/ready", readinessHandler.Readiness) // dependencies are up
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
