package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medikariyer/api/internal/api/http/handlers"
	"github.com/medikariyer/api/internal/auth"
	"github.com/medikariyer/api/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Jobs           *handlers.JobsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. /auth/me runs behind the strict gate,
// /admin additionally behind the admin role check, /jobs behind the optional
// gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/me", cfg.AuthMiddleware.RequireSession, cfg.Auth.Me)

	adminGroup := app.Group("/admin", cfg.AuthMiddleware.RequireSession, auth.RequireRole(domain.RoleAdmin))
	adminGroup.Patch("/accounts/:id/status", cfg.Admin.UpdateAccountStatus)

	app.Get("/jobs", cfg.AuthMiddleware.OptionalSession, cfg.Jobs.List)
}
