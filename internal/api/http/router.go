package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/org-directory/internal/api/http/handlers"
	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/observability"
)

// RouteConfig bundles dependencies for route registration. A nil
// AuthMiddleware leaves /api open and skips /auth/login.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Departments    *handlers.DepartmentHandler
	Employees      *handlers.EmployeeHandler
	Projects       *handlers.ProjectHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Literal segments are registered before
// the :id routes they would otherwise shadow.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	var api fiber.Router = app.Group("/api")
	if cfg.AuthMiddleware != nil {
		app.Post("/auth/login", cfg.Auth.Login)
		api = app.Group("/api", cfg.AuthMiddleware.Handle, auth.WriteGuard())
	}

	departments := api.Group("/departments")
	departments.Get("/", cfg.Departments.List)
	departments.Get("/name/:name", cfg.Departments.GetByName)
	departments.Get("/:id", cfg.Departments.Get)
	departments.Post("/", cfg.Departments.Create)
	departments.Put("/:id", cfg.Departments.Update)
	departments.Delete("/:id", cfg.Departments.Delete)

	employees := api.Group("/employees")
	employees.Get("/", cfg.Employees.List)
	employees.Get("/department/:name", cfg.Employees.ListByDepartment)
	employees.Get("/salary/average/:departmentId", cfg.Employees.AverageSalary)
	employees.Get("/salary", cfg.Employees.ListBySalaryRange)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Post("/", cfg.Employees.Create)
	employees.Put("/:id", cfg.Employees.Update)
	employees.Delete("/:id", cfg.Employees.Delete)

	projects := api.Group("/projects")
	projects.Get("/", cfg.Projects.List)
	projects.Get("/active", cfg.Projects.ListActive)
	projects.Get("/name/:name", cfg.Projects.GetByName)
	projects.Get("/start/:date", cfg.Projects.ListByStartDate)
	projects.Get("/:id", cfg.Projects.Get)
	projects.Post("/", cfg.Projects.Create)
	projects.Put("/:id", cfg.Projects.Update)
	projects.Delete("/:id", cfg.Projects.Delete)
}
