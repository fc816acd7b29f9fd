package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

// Specific errors wrap one of the categories above so callers can match
// either the exact cause or its category with errors.Is.
var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrEmployeeNotFound   = fmt.Errorf("employee %w", ErrNotFound)
	ErrDepartmentNotFound = fmt.Errorf("department %w", ErrNotFound)

	ErrUserExists        = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrEmailTaken        = fmt.Errorf("%w: email already in use", ErrConflict)
	ErrDepartmentExists  = fmt.Errorf("%w: department already exists", ErrConflict)
	ErrDepartmentInUse   = fmt.Errorf("%w: department still has employees", ErrConflict)
	ErrUserAlreadyLinked = fmt.Errorf("%w: user already linked to an employee", ErrConflict)
	ErrIdempotencyReused = fmt.Errorf("%w: idempotency key already used for a different request", ErrConflict)
)
