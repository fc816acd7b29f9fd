package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

const departmentSelect = `
	SELECT d.id, d.name,
	       (SELECT COUNT(*) FROM employees e WHERE e.department_id = d.id)
	  FROM departments d`

// DepartmentRepository stores departments. Reads carry the number of
// employees assigned to each one.
type DepartmentRepository struct {
	pool Queryer
}

func NewDepartmentRepository(pool Queryer) *DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

func (r *DepartmentRepository) Create(ctx context.Context, name string) (*domain.Department, error) {
	var d domain.Department
	err := QueryerFromContext(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO departments (name) VALUES ($1) RETURNING id, name`, name).
		Scan(&d.ID, &d.Name)
	if err != nil {
		return nil, translatePgError(err, domain.ErrDepartmentNotFound)
	}
	return &d, nil
}

func (r *DepartmentRepository) Rename(ctx context.Context, id int64, name string) (*domain.Department, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
		WITH d AS (
			UPDATE departments SET name = $1 WHERE id = $2 RETURNING id, name
		)
		SELECT d.id, d.name,
		       (SELECT COUNT(*) FROM employees e WHERE e.department_id = d.id)
		  FROM d`, name, id)
	return scanDepartment(row)
}

func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*domain.Department, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx, departmentSelect+` WHERE d.id = $1`, id)
	return scanDepartment(row)
}

func (r *DepartmentRepository) FindByName(ctx context.Context, name string) (*domain.Department, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx, departmentSelect+` WHERE d.name = $1`, name)
	return scanDepartment(row)
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*domain.Department, error) {
	rows, err := QueryerFromContext(ctx, r.pool).Query(ctx, departmentSelect+` ORDER BY d.name`)
	if err != nil {
		return nil, translatePgError(err, domain.ErrDepartmentNotFound)
	}
	defer rows.Close()

	departments := make([]*domain.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, domain.ErrDepartmentNotFound)
	}
	return departments, nil
}

// Delete removes the department. One that still has employees yields
// domain.ErrDepartmentInUse.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := QueryerFromContext(ctx, r.pool).Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err, domain.ErrDepartmentNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDepartmentNotFound
	}
	return nil
}

func scanDepartment(row pgx.Row) (*domain.Department, error) {
	var (
		d     domain.Department
		count int64
	)
	if err := row.Scan(&d.ID, &d.Name, &count); err != nil {
		return nil, translatePgError(err, domain.ErrDepartmentNotFound)
	}
	d.EmployeeCount = int(count)
	return &d, nil
}
