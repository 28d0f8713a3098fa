package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/records-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Departments *handlers.DepartmentsHandler
	Employees   *handlers.EmployeesHandler
	Permissions *handlers.PermissionsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	departments := api.Group("/departments")
	departments.Get("/", cfg.Departments.List)
	departments.Get("/archived", cfg.Departments.ListArchived)
	departments.Get("/all", cfg.Departments.ListAll)
	departments.Get("/export", cfg.Departments.Export)
	departments.Post("/", cfg.Departments.Create)
	departments.Post("/batch/archive", cfg.Departments.BatchArchive)
	departments.Post("/batch/restore", cfg.Departments.BatchRestore)
	departments.Get("/:id", cfg.Departments.Get)
	departments.Put("/:id", cfg.Departments.Update)
	departments.Delete("/:id", cfg.Departments.Archive)
	departments.Post("/:id/restore", cfg.Departments.Restore)
	departments.Delete("/:id/purge", cfg.Departments.Purge)

	employees := api.Group("/employees")
	employees.Get("/", cfg.Employees.List)
	employees.Get("/archived", cfg.Employees.ListArchived)
	employees.Get("/all", cfg.Employees.ListAll)
	employees.Get("/export", cfg.Employees.Export)
	employees.Post("/", cfg.Employees.Create)
	employees.Post("/batch/archive", cfg.Employees.BatchArchive)
	employees.Post("/batch/restore", cfg.Employees.BatchRestore)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Put("/:id", cfg.Employees.Update)
	employees.Delete("/:id", cfg.Employees.Archive)
	employees.Post("/:id/restore", cfg.Employees.Restore)
	employees.Delete("/:id/purge", cfg.Employees.Purge)

	permissions := api.Group("/permissions")
	permissions.Get("/", cfg.Permissions.List)
	permissions.Get("/archived", cfg.Permissions.ListArchived)
	permissions.Get("/all", cfg.Permissions.ListAll)
	permissions.Get("/export", cfg.Permissions.Export)
	permissions.Post("/", cfg.Permissions.Create)
	permissions.Post("/batch/archive", cfg.Permissions.BatchArchive)
	permissions.Post("/batch/restore", cfg.Permissions.BatchRestore)
	permissions.Get("/:id", cfg.Permissions.Get)
	permissions.Put("/:id", cfg.Permissions.Update)
	permissions.Delete("/:id", cfg.Permissions.Archive)
	permissions.Post("/:id/restore", cfg.Permissions.Restore)
	permissions.Delete("/:id/purge", cfg.Permissions.Purge)
}
