package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/payrollhq/payroll-system/internal/core/domain"
	"github.com/payrollhq/payroll-system/internal/core/ports"
)

type employeeRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Role           string `json:"role"`
	DepartmentName string `json:"departmentName" validate:"required"`
	Username       string `json:"username"`
	Password       string `json:"password"`
}

func (r employeeRequest) toInput() ports.EmployeeInput {
	return ports.EmployeeInput{
		Name:           r.Name,
		Email:          r.Email,
		Role:           r.Role,
		DepartmentName: r.DepartmentName,
		Username:       r.Username,
		Password:       r.Password,
	}
}

type employeeResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	DepartmentName string `json:"departmentName"`
	Username       string `json:"username,omitempty"`
	Links          links  `json:"_links"`
}

type employeeCollection struct {
	Embedded struct {
		Employees []employeeResponse `json:"employees"`
	} `json:"_embedded"`
	Links links `json:"_links"`
}

func toEmployeeResponse(c echo.Context, e *domain.Employee) employeeResponse {
	return employeeResponse{
		ID:             e.ID,
		Name:           e.Name,
		Email:          e.Email,
		Role:           e.Role,
		DepartmentName: e.DepartmentName,
		Username:       e.Username,
		Links:          employeeLinks(c, e.ID),
	}
}

func toEmployeeCollection(c echo.Context, list []*domain.Employee) employeeCollection {
	var out employeeCollection
	out.Embedded.Employees = make([]employeeResponse, 0, len(list))
	for _, e := range list {
		out.Embedded.Employees = append(out.Embedded.Employees, toEmployeeResponse(c, e))
	}
	out.Links = collectionLinks(c, "/employees")
	return out
}

type departmentRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type departmentResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	EmployeeCount int    `json:"employeeCount"`
	Links         links  `json:"_links"`
}

type departmentCollection struct {
	Embedded struct {
		Departments []departmentResponse `json:"departments"`
	} `json:"_embedded"`
	Links links `json:"_links"`
}

func toDepartmentResponse(c echo.Context, d *domain.Department) departmentResponse {
	return departmentResponse{
		ID:            d.ID,
		Name:          d.Name,
		EmployeeCount: d.EmployeeCount,
		Links:         departmentLinks(c, d.ID),
	}
}

func toDepartmentCollection(c echo.Context, list []*domain.Department) departmentCollection {
	var out departmentCollection
	out.Embedded.Departments = make([]departmentResponse, 0, len(list))
	for _, d := range list {
		out.Embedded.Departments = append(out.Embedded.Departments, toDepartmentResponse(c, d))
	}
	out.Links = collectionLinks(c, "/departments")
	return out
}
