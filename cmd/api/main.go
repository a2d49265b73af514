package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/org-directory/internal/api/http"
	"github.com/spec-kit/org-directory/internal/api/http/handlers"
	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/cache"
	"github.com/spec-kit/org-directory/internal/config"
	"github.com/spec-kit/org-directory/internal/events"
	"github.com/spec-kit/org-directory/internal/observability"
	"github.com/spec-kit/org-directory/internal/persistence"
	"github.com/spec-kit/org-directory/internal/repository"
	"github.com/spec-kit/org-directory/internal/repository/memory"
	"github.com/spec-kit/org-directory/internal/service"
	"github.com/spec-kit/org-directory/internal/worker"
)

// repositories groups the store implementation chosen at startup.
type repositories struct {
	tx          repository.Transactor
	departments repository.DepartmentRepository
	employees   repository.EmployeeRepository
	projects    repository.ProjectRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redis *persistence.Redis
	var entityCache *cache.EntityCache
	if cfg.Cache.Enabled {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		entityCache = cache.NewEntityCache(redis.Client, cfg.Cache.KeyPrefix, cfg.Cache.TTL(), logger.Named("cache"))
	}

	repos := buildRepositories(pg)
	dispatcher := events.NewInMemoryDispatcher()
	if cfg.Audit.Enabled {
		worker.StartAuditWorker(service.NewAuditService(dispatcher, logger), logger)
	} else {
		worker.StartAuditWorker(nil, logger)
	}

	departmentService := service.NewDepartmentService(service.DepartmentDependencies{
		DepartmentRepo: repos.departments,
		Transactor:     repos.tx,
		Cache:          entityCache,
		Dispatcher:     dispatcher,
	})
	employeeService := service.NewEmployeeService(service.EmployeeDependencies{
		EmployeeRepo:   repos.employees,
		DepartmentRepo: repos.departments,
		Transactor:     repos.tx,
		Cache:          entityCache,
		Dispatcher:     dispatcher,
	})
	projectService := service.NewProjectService(service.ProjectDependencies{
		ProjectRepo: repos.projects,
		Transactor:  repos.tx,
		Cache:       entityCache,
		Dispatcher:  dispatcher,
	})

	routes := httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Departments: handlers.NewDepartmentHandler(departmentService),
		Employees:   handlers.NewEmployeeHandler(employeeService),
		Projects:    handlers.NewProjectHandler(projectService),
		Metrics:     observability.NewMetrics(metricsNamespace(cfg.App.Name)),
	}

	if cfg.Auth.Enabled {
		if len(cfg.Auth.Operators) == 0 {
			logger.Warn("auth enabled without AUTH_OPERATORS; every /api call will be rejected")
		}
		operators := auth.NewOperatorDirectory(cfg.Auth.Operators)
		tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
		authService := service.NewAuthService(*cfg, service.AuthDependencies{Operators: operators, TokenManager: tokens})
		routes.Auth = handlers.NewAuthHandler(authService)
		routes.AuthMiddleware = auth.NewAuthMiddleware(tokens, operators)
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, routes.Metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, routes)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.Bool("in_memory", pg.InMemory()), zap.Bool("auth", cfg.Auth.Enabled))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func buildRepositories(pg *persistence.Postgres) repositories {
	if pg.InMemory() {
		store := memory.NewStore()
		return repositories{
			tx:          store,
			departments: store.Departments(),
			employees:   store.Employees(),
			projects:    store.Projects(),
		}
	}
	pool := pg.PoolHandle()
	return repositories{
		tx:          repository.NewTransactor(pool),
		departments: repository.NewDepartmentRepository(pool),
		employees:   repository.NewEmployeeRepository(pool),
		projects:    repository.NewProjectRepository(pool),
	}
}

func metricsNamespace(appName string) string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(appName)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
