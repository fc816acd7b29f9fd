package ports

import (
	"context"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

// EmployeeInput carries the employee fields supplied by a client.
// Username, Password and Role also drive credential provisioning on create.
type EmployeeInput struct {
	Name           string
	Email          string
	Role           string
	DepartmentName string
	Username       string
	Password       string
}

// CreateEmployeeInput is the DTO for employee creation.
type CreateEmployeeInput struct {
	EmployeeInput
	IdempotencyKey string
}

// EmployeeResult is returned by operations that may create a record.
type EmployeeResult struct {
	Employee *domain.Employee
	// Created is false when an existing record was updated or replayed.
	Created bool
	// UserProvisioned is true when a new credential record was created.
	UserProvisioned bool
}

// EmployeeService defines the employee use cases. Every method touching a
// specific record takes the caller identity explicitly; nil means anonymous.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*EmployeeResult, error)
	GetEmployee(ctx context.Context, caller *domain.Identity, id int64) (*domain.Employee, error)
	GetEmployeeByEmail(ctx context.Context, caller *domain.Identity, email string) (*domain.Employee, error)
	ListEmployees(ctx context.Context, caller *domain.Identity) ([]*domain.Employee, error)
	SaveEmployee(ctx context.Context, caller *domain.Identity, id int64, in EmployeeInput) (*EmployeeResult, error)
	DeleteEmployee(ctx context.Context, caller *domain.Identity, id int64) error
	DeleteEmployeeByEmail(ctx context.Context, caller *domain.Identity, email string) error
}

// DepartmentService defines the department use cases.
type DepartmentService interface {
	ListDepartments(ctx context.Context) ([]*domain.Department, error)
	GetDepartment(ctx context.Context, id int64) (*domain.Department, error)
	CreateDepartment(ctx context.Context, name string) (*domain.Department, error)
	RenameDepartment(ctx context.Context, id int64, name string) (*domain.Department, error)
	DeleteDepartment(ctx context.Context, id int64) error
}
