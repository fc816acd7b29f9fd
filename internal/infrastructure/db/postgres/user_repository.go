package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

const userColumns = `id, username, password_hash, role, created_at`

// UserRepository is the Postgres credential store.
type UserRepository struct {
	pool Queryer
}

func NewUserRepository(pool Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts user. A taken username yields domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := QueryerFromContext(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		user.Username, user.PasswordHash, user.Role)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := QueryerFromContext(ctx, r.pool).Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, translatePgError(err, domain.ErrUserNotFound)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, domain.ErrUserNotFound)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, translatePgError(err, domain.ErrUserNotFound)
	}
	return &u, nil
}
