package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/payrollhq/payroll-system/internal/api/handler"
	"github.com/payrollhq/payroll-system/internal/api/middleware"
	"github.com/payrollhq/payroll-system/internal/core/domain"
)

// Deps carries everything the router needs. Denials and Registerer may be
// nil; a nil Registerer means the Prometheus default registry.
type Deps struct {
	Employees   *handler.EmployeeHandler
	Departments *handler.DepartmentHandler
	Auth        *handler.AuthHandler
	Readiness   *handler.HealthDependenciesHandler
	Verifier    middleware.TokenVerifier
	Denials     middleware.DenialRecorder
	Registerer  prometheus.Registerer
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "payroll",
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))
	e.Use(middleware.Authenticate(d.Verifier))
	e.Use(middleware.Authorize(middleware.DefaultPolicy(), d.Denials))

	// --- Observability (public by policy) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/health", handler.NewHealthHandler().Liveness)
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness.Readiness)
	}

	// --- Auth ---
	e.POST("/auth/register", d.Auth.Register)
	e.POST("/auth/login", d.Auth.Login)
	e.GET("/admin/users", d.Auth.Users)

	// --- Employees: public by policy, record access enforced by the service ---
	emp := e.Group("/employees")
	emp.GET("", d.Employees.List)
	emp.POST("", d.Employees.Create)
	emp.GET("/email/:email", d.Employees.GetByEmail)
	emp.DELETE("/email/:email", d.Employees.DeleteByEmail)
	emp.GET("/:id", d.Employees.Get)
	emp.PUT("/:id", d.Employees.Update)
	emp.DELETE("/:id", d.Employees.Delete)

	// --- Departments: any authenticated caller reads, admins write ---
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	dep := e.Group("/departments")
	dep.GET("", d.Departments.List)
	dep.GET("/:id", d.Departments.Get)
	dep.POST("", d.Departments.Create, adminOnly)
	dep.PUT("/:id", d.Departments.Rename, adminOnly)
	dep.DELETE("/:id", d.Departments.Delete, adminOnly)

	return e
}
