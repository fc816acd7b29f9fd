package ports

import (
	"context"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

// EmployeeRepository persists employees. Lookups return
// domain.ErrEmployeeNotFound when nothing matches.
type EmployeeRepository interface {
	Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	Update(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	FindByID(ctx context.Context, id int64) (*domain.Employee, error)
	FindByEmail(ctx context.Context, email string) (*domain.Employee, error)
	FindByUserID(ctx context.Context, userID int64) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
	Delete(ctx context.Context, id int64) error
}

// DepartmentRepository persists departments. Lookups return
// domain.ErrDepartmentNotFound when nothing matches.
type DepartmentRepository interface {
	Create(ctx context.Context, name string) (*domain.Department, error)
	Rename(ctx context.Context, id int64, name string) (*domain.Department, error)
	FindByID(ctx context.Context, id int64) (*domain.Department, error)
	FindByName(ctx context.Context, name string) (*domain.Department, error)
	List(ctx context.Context) ([]*domain.Department, error)
	Delete(ctx context.Context, id int64) error
}

// TxManager runs fn inside a read-write transaction. Repositories called
// with the ctx handed to fn take part in that transaction.
type TxManager interface {
	WithinReadWrite(ctx context.Context, fn func(ctx context.Context) error) error
}
