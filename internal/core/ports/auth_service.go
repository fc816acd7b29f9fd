package ports

import (
	"context"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
}
