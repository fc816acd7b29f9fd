package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

// employeeSelect yields one row per employee with its department name and
// the linked username, if any. Callers alias the employee relation as e.
const employeeSelect = `
	SELECT e.id, e.name, e.email, e.role, e.department_id, d.name,
	       e.user_id, COALESCE(u.username, ''), e.created_at, e.updated_at
	  FROM %s e
	  JOIN departments d ON d.id = e.department_id
	  LEFT JOIN users u ON u.id = e.user_id`

// EmployeeRepository stores employee records.
type EmployeeRepository struct {
	pool Queryer
}

func NewEmployeeRepository(pool Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create inserts e. The UNIQUE(user_id) constraint turns a second link to
// the same credential into domain.ErrUserAlreadyLinked.
func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO employees (name, email, role, department_id, user_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, name, email, role, department_id, user_id, created_at, updated_at
		)`+fromEmployees("inserted"),
		e.Name, e.Email, e.Role, e.DepartmentID, e.UserID)
	return scanEmployee(row)
}

// Update rewrites the client-editable fields. The credential link is left
// untouched.
func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx, `
		WITH updated AS (
			UPDATE employees
			   SET name = $1, email = $2, role = $3, department_id = $4, updated_at = now()
			 WHERE id = $5
			RETURNING id, name, email, role, department_id, user_id, created_at, updated_at
		)`+fromEmployees("updated"),
		e.Name, e.Email, e.Role, e.DepartmentID, e.ID)
	return scanEmployee(row)
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx,
		fromEmployees("employees")+` WHERE e.id = $1`, id)
	return scanEmployee(row)
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx,
		fromEmployees("employees")+` WHERE e.email = $1`, email)
	return scanEmployee(row)
}

func (r *EmployeeRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Employee, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx,
		fromEmployees("employees")+` WHERE e.user_id = $1`, userID)
	return scanEmployee(row)
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*domain.Employee, error) {
	rows, err := QueryerFromContext(ctx, r.pool).Query(ctx,
		fromEmployees("employees")+` ORDER BY e.id`)
	if err != nil {
		return nil, translatePgError(err, domain.ErrEmployeeNotFound)
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, domain.ErrEmployeeNotFound)
	}
	return employees, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := QueryerFromContext(ctx, r.pool).Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err, domain.ErrEmployeeNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func fromEmployees(relation string) string {
	return fmt.Sprintf(employeeSelect, relation)
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		e      domain.Employee
		userID sql.NullInt64
	)
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Email,
		&e.Role,
		&e.DepartmentID,
		&e.DepartmentName,
		&userID,
		&e.Username,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, translatePgError(err, domain.ErrEmployeeNotFound)
	}
	if userID.Valid {
		id := userID.Int64
		e.UserID = &id
	}
	return &e, nil
}
