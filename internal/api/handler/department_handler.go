package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/payrollhq/payroll-system/internal/core/ports"
)

type DepartmentHandler struct {
	service ports.DepartmentService
}

func NewDepartmentHandler(service ports.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{service: service}
}

func (h *DepartmentHandler) List(c echo.Context) error {
	list, err := h.service.ListDepartments(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDepartmentCollection(c, list))
}

func (h *DepartmentHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	dep, err := h.service.GetDepartment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDepartmentResponse(c, dep))
}

func (h *DepartmentHandler) Create(c echo.Context) error {
	var req departmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	dep, err := h.service.CreateDepartment(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, departmentHref(c, dep.ID))
	return c.JSON(http.StatusCreated, toDepartmentResponse(c, dep))
}

func (h *DepartmentHandler) Rename(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req departmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	dep, err := h.service.RenameDepartment(c.Request().Context(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDepartmentResponse(c, dep))
}

func (h *DepartmentHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteDepartment(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
