// Package auth wires the authentication module.
package auth

import (
	"patrimoine_backend/internal/auth/handler"
	"patrimoine_backend/internal/auth/repository"
	"patrimoine_backend/internal/auth/service"
	apphttp "patrimoine_backend/internal/http"
	"patrimoine_backend/platform/config"
	"patrimoine_backend/platform/logger"
	"patrimoine_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the auth dependencies.
type Module struct {
	handler *handler.Handler
}

// NewModule constructs the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	return &Module{handler: handler.New(svc, validator.New())}
}

func (m *Module) Name() string { return "auth" }

// RegisterRoutes mounts the auth routes. Login and refresh sit behind
// the stricter auth rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/auth")
	public.Use(ctx.AuthRateLimiter.RateLimit())
	{
		public.POST("/login", m.handler.Login)
		public.POST("/refresh", m.handler.Refresh)
		public.POST("/logout", m.handler.Logout)
	}

	ctx.Protected.GET("/auth/me", m.handler.Me)
}
