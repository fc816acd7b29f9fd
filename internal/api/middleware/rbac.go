package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

// RBAC restricts a route group to callers holding one of allowedRoles.
// Roles may be given with or without the ROLE_ prefix.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if id == nil {
				return domain.ErrUnauthenticated
			}
			for _, role := range allowedRoles {
				if domain.HasRole(id.Role, role) {
					return next(c)
				}
			}
			return domain.ErrForbidden
		}
	}
}
