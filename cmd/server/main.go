package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/payrollhq/payroll-system/internal/api"
	"github.com/payrollhq/payroll-system/internal/api/handler"
	"github.com/payrollhq/payroll-system/internal/core/service"
	"github.com/payrollhq/payroll-system/internal/infrastructure/config"
	mongodb "github.com/payrollhq/payroll-system/internal/infrastructure/db/mongo"
	"github.com/payrollhq/payroll-system/internal/infrastructure/db/postgres"
	redisdb "github.com/payrollhq/payroll-system/internal/infrastructure/db/redis"
	"github.com/payrollhq/payroll-system/internal/infrastructure/queue"
	"github.com/payrollhq/payroll-system/pkg/logger"
	"github.com/payrollhq/payroll-system/pkg/token"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "payroll-api",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting payroll api")

	// --- Storage ---
	if cfg.Postgres.AutoMigrate {
		if err := postgres.MigrateUp(cfg.Postgres.URL); err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
	}

	pool, err := postgres.Connect(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	mongoClient, mongoDB, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() { _ = rdb.Close() }()

	auditRepo := mongodb.NewAuditRepository(mongoDB)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("audit indexes not created")
	}

	// --- Audit trail ---
	audit := queue.NewAuditDispatcher(cfg.Audit.Workers, auditRepo, log.With().Str("component", "audit").Logger())
	audit.Start(context.Background())
	defer audit.Stop()

	// --- Core ---
	tokens, err := token.NewService(cfg.JWT.Secret, cfg.JWT.TTL, token.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}

	users := postgres.NewUserRepository(pool)
	employees := postgres.NewEmployeeRepository(pool)
	departments := postgres.NewDepartmentRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idempotency := redisdb.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)

	access := service.NewAccessChecker(users, audit, log)
	authService := service.NewAuthService(users, tokens, log)
	employeeService := service.NewEmployeeService(employees, departments, users, txManager, access, idempotency, log)
	departmentService := service.NewDepartmentService(departments, log)

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Employees:   handler.NewEmployeeHandler(employeeService),
		Departments: handler.NewDepartmentHandler(departmentService),
		Auth:        handler.NewAuthHandler(authService),
		Readiness:   handler.NewHealthDependenciesHandler(pool, mongoDB, rdb),
		Verifier:    tokens,
		Denials:     access,
		Logger:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("payroll api stopped")
}
