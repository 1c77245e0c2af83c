package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/smart-hospital-client/internal/api/http/handlers"
	"github.com/spec-kit/smart-hospital-client/internal/auth"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tasks          *handlers.TasksHandler
	Records        *handlers.RecordsHandler
	Pages          *handlers.PagesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/pages/:name", cfg.Pages.Get)

	app.Post("/register", cfg.Auth.Register)
	app.Post("/login", cfg.Auth.Login)

	authn := cfg.AuthMiddleware.Handle

	app.Get("/tasks/:cleaner_id", authn,
		auth.RequireRole(domain.RoleCleaner, domain.RoleDean, domain.RoleBMCCommissioner), cfg.Tasks.List)
	app.Post("/verify_room", authn, auth.RequireRole(domain.RoleCleaner), cfg.Records.Verify)

	app.Get("/dashboard", authn, auth.RequireRole(domain.RoleManager), cfg.Records.Dashboard)
	app.Post("/approve", authn, auth.RequireRole(domain.RoleManager), cfg.Records.Approve)

	app.Post("/assign_task", authn, auth.RequireAdmin(), cfg.Tasks.Assign)
	app.Get("/report/weekly", authn, auth.RequireAdmin(), cfg.Records.WeeklyReport)
}
