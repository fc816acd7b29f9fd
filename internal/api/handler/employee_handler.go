package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/payrollhq/payroll-system/internal/api/metrics"
	"github.com/payrollhq/payroll-system/internal/core/domain"
	"github.com/payrollhq/payroll-system/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

// EmployeeHandler handles HTTP requests for employee records.
type EmployeeHandler struct {
	service ports.EmployeeService
}

func NewEmployeeHandler(service ports.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// List handles GET /employees. Admins get every record, other callers
// only their own.
func (h *EmployeeHandler) List(c echo.Context) error {
	list, err := h.service.ListEmployees(c.Request().Context(), caller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeCollection(c, list))
}

// Create handles POST /employees. The credential named by username is
// created when missing. A repeated Idempotency-Key with the same body
// returns the first result with 200; the same key with another body is 409.
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req employeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.CreateEmployee(c.Request().Context(), ports.CreateEmployeeInput{
		EmployeeInput:  req.toInput(),
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}

	if !res.Created {
		return c.JSON(http.StatusOK, toEmployeeResponse(c, res.Employee))
	}

	outcome := "reused"
	if res.UserProvisioned {
		outcome = "provisioned"
	}
	metrics.EmployeesCreatedTotal.WithLabelValues(outcome).Inc()

	c.Response().Header().Set(echo.HeaderLocation, employeeHref(c, res.Employee.ID))
	return c.JSON(http.StatusCreated, toEmployeeResponse(c, res.Employee))
}

// Get handles GET /employees/:id.
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	emp, err := h.service.GetEmployee(c.Request().Context(), caller(c), id)
	countAccess(err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponse(c, emp))
}

// GetByEmail handles GET /employees/email/:email.
func (h *EmployeeHandler) GetByEmail(c echo.Context) error {
	emp, err := h.service.GetEmployeeByEmail(c.Request().Context(), caller(c), c.Param("email"))
	countAccess(err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEmployeeResponse(c, emp))
}

// Update handles PUT /employees/:id. A missing record is created, which
// only an admin may do, and answered with 201.
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req employeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.SaveEmployee(c.Request().Context(), caller(c), id, req.toInput())
	countAccess(err)
	if err != nil {
		return err
	}

	if res.Created {
		c.Response().Header().Set(echo.HeaderLocation, employeeHref(c, res.Employee.ID))
		return c.JSON(http.StatusCreated, toEmployeeResponse(c, res.Employee))
	}
	return c.JSON(http.StatusOK, toEmployeeResponse(c, res.Employee))
}

// Delete handles DELETE /employees/:id.
func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	err = h.service.DeleteEmployee(c.Request().Context(), caller(c), id)
	countAccess(err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteByEmail handles DELETE /employees/email/:email.
func (h *EmployeeHandler) DeleteByEmail(c echo.Context) error {
	err := h.service.DeleteEmployeeByEmail(c.Request().Context(), caller(c), c.Param("email"))
	countAccess(err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// countAccess records the outcome of a record-level access check. Errors
// raised before the check, such as a missing record, are not counted.
func countAccess(err error) {
	switch {
	case err == nil:
		metrics.RecordAccessTotal.WithLabelValues(string(domain.DecisionGranted)).Inc()
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUnauthenticated):
		metrics.RecordAccessTotal.WithLabelValues(string(domain.DecisionDenied)).Inc()
	}
}
