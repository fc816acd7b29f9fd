package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/payrollhq/payroll-system/internal/api/middleware"
	"github.com/payrollhq/payroll-system/internal/core/domain"
)

// caller returns the identity established by the Authenticate middleware,
// or nil for an anonymous request. Services decide what anonymous may do.
func caller(c echo.Context) *domain.Identity {
	return middleware.IdentityFrom(c)
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs the
// registered validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
