package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// Constraint names as declared in migrations/000001_init.up.sql.
const (
	constraintUsername       = "users_username_key"
	constraintEmployeeEmail  = "employees_email_key"
	constraintEmployeeUser   = "employees_user_id_key"
	constraintDepartmentName = "departments_name_key"
	constraintEmployeeDept   = "employees_department_id_fkey"
	constraintEmployeeUserFK = "employees_user_id_fkey"
)

// translatePgError maps driver errors to domain errors. notFound is what
// pgx.ErrNoRows means for the calling repository.
func translatePgError(err, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		switch pgErr.ConstraintName {
		case constraintUsername:
			return domain.ErrUserExists
		case constraintEmployeeEmail:
			return domain.ErrEmailTaken
		case constraintEmployeeUser:
			return domain.ErrUserAlreadyLinked
		case constraintDepartmentName:
			return domain.ErrDepartmentExists
		}
	case foreignKeyViolationCode:
		switch pgErr.ConstraintName {
		case constraintEmployeeDept:
			// Raised on insert for a missing department and on department
			// delete while referenced; the caller tells them apart.
			if errors.Is(notFound, domain.ErrDepartmentNotFound) {
				return domain.ErrDepartmentInUse
			}
			return domain.ErrDepartmentNotFound
		case constraintEmployeeUserFK:
			return domain.ErrUserNotFound
		}
	}
	return err
}
