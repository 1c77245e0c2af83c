package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/api/http/handlers"
	"github.com/spec-kit/smart-hospital-client/internal/auth"
	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	"github.com/spec-kit/smart-hospital-client/internal/pages"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
	"github.com/spec-kit/smart-hospital-client/internal/service"
)

// NewDevServer builds an in-memory stand-in for the remote hospital API. It
// serves the page templates too, so the client can run with PAGES_SOURCE=http.
func NewDevServer(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics, checks map[string]handlers.Check) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}

	authService := service.NewAuthService(cfg.DevServer, repository.NewUserRepository())
	taskService := service.NewTaskService(repository.NewTaskRepository())
	recordService := service.NewRecordService(repository.NewRecordRepository())

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name + "-dev",
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, metrics, cfg.API.RequestTimeout())

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name+"-dev", cfg.App.Version, checks),
		Auth:           handlers.NewAuthHandler(authService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Records:        handlers.NewRecordsHandler(recordService),
		Pages:          handlers.NewPagesHandler(pages.NewEmbeddedSource()),
		AuthMiddleware: auth.NewAuthMiddleware(authService.Tokens()),
	})
	return app
}
