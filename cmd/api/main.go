package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/records-service/internal/api/http"
	"github.com/spec-kit/records-service/internal/api/http/handlers"
	"github.com/spec-kit/records-service/internal/cache"
	"github.com/spec-kit/records-service/internal/config"
	"github.com/spec-kit/records-service/internal/events"
	"github.com/spec-kit/records-service/internal/observability"
	"github.com/spec-kit/records-service/internal/persistence"
	"github.com/spec-kit/records-service/internal/repository"
	"github.com/spec-kit/records-service/internal/service"
	"github.com/spec-kit/records-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	departmentRepo := repository.NewDepartmentRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	permissionRepo := repository.NewPermissionRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	departmentService := service.NewDepartmentService(departmentRepo, dispatcher)
	employeeService := service.NewEmployeeService(employeeRepo, dispatcher)
	permissionService := service.NewPermissionService(permissionRepo, dispatcher)

	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	lookups := cache.NewLookupCache(redis.ClientHandle(), cfg.Cache.LookupTTL(), logger)
	lookups.RegisterInvalidation(dispatcher)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	departmentsHandler := handlers.NewDepartmentsHandler(departmentService, lookups, cfg.Pagination)
	employeesHandler := handlers.NewEmployeesHandler(employeeService, lookups, cfg.Pagination)
	permissionsHandler := handlers.NewPermissionsHandler(permissionService, lookups, cfg.Pagination)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      healthHandler,
		Departments: departmentsHandler,
		Employees:   employeesHandler,
		Permissions: permissionsHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
