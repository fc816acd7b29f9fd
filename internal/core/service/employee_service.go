package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/payrollhq/payroll-system/internal/core/domain"
	"github.com/payrollhq/payroll-system/internal/core/ports"
)

// Actions recorded on the access audit trail.
const (
	ActionRead   = "read"
	ActionList   = "list"
	ActionUpdate = "update"
	ActionCreate = "create"
	ActionDelete = "delete"
)

type EmployeeService struct {
	employees   ports.EmployeeRepository
	departments ports.DepartmentRepository
	users       ports.UserRepository
	tx          ports.TxManager
	access      *AccessChecker
	idempotency ports.IdempotencyStore
	log         zerolog.Logger
}

// NewEmployeeService wires the employee use cases. idempotency may be nil,
// which disables Idempotency-Key handling.
func NewEmployeeService(
	employees ports.EmployeeRepository,
	departments ports.DepartmentRepository,
	users ports.UserRepository,
	tx ports.TxManager,
	access *AccessChecker,
	idempotency ports.IdempotencyStore,
	log zerolog.Logger,
) *EmployeeService {
	return &EmployeeService{
		employees:   employees,
		departments: departments,
		users:       users,
		tx:          tx,
		access:      access,
		idempotency: idempotency,
		log:         log,
	}
}

// CreateEmployee stores a new employee and links it to the credential named
// by in.Username, creating that credential first when it does not exist.
// Everything runs in one transaction, so a failure at any step leaves no
// user or employee behind. A username conflict with a concurrent request
// is retried once, and the retry links to the user the other request made.
func (s *EmployeeService) CreateEmployee(ctx context.Context, in ports.CreateEmployeeInput) (*ports.EmployeeResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateEmployee(in.EmployeeInput); err != nil {
		return nil, err
	}
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	fingerprint := requestFingerprint(in.EmployeeInput)
	replay, ok, err := s.replay(ctx, in.IdempotencyKey, fingerprint, in.Username)
	if err != nil {
		return nil, err
	}
	if ok {
		return replay, nil
	}

	result, err := s.provision(ctx, in.EmployeeInput)
	if errors.Is(err, domain.ErrUserExists) {
		s.log.Info().Str("username", in.Username).Msg("username created concurrently, retrying provisioning")
		result, err = s.provision(ctx, in.EmployeeInput)
	}
	if err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" && s.idempotency != nil {
		rec := ports.IdempotencyRecord{EmployeeID: result.Employee.ID, Fingerprint: fingerprint}
		if err := s.idempotency.Remember(ctx, in.IdempotencyKey, rec); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	s.log.Info().
		Int64("employee_id", result.Employee.ID).
		Str("username", result.Employee.Username).
		Bool("user_provisioned", result.UserProvisioned).
		Msg("employee created")

	return result, nil
}

// replay returns the employee an earlier request with the same key created.
// The key only replays for an identical request body linked to the same
// username; anything else is a conflict and reveals nothing about the
// stored record. Store failures and stale keys fall through to a normal
// create.
func (s *EmployeeService) replay(ctx context.Context, key, fingerprint, username string) (*ports.EmployeeResult, bool, error) {
	if key == "" || s.idempotency == nil {
		return nil, false, nil
	}

	rec, found, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}
	if rec.Fingerprint != fingerprint {
		s.log.Warn().Str("idempotency_key", key).Str("username", username).Msg("idempotency key reused with a different request")
		return nil, false, domain.ErrIdempotencyReused
	}

	emp, err := s.employees.FindByID(ctx, rec.EmployeeID)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Int64("employee_id", rec.EmployeeID).Msg("idempotency key points to missing employee")
		return nil, false, nil
	}
	if emp.Username != username {
		s.log.Warn().Str("idempotency_key", key).Int64("employee_id", emp.ID).Msg("idempotency key replayed for another user")
		return nil, false, domain.ErrIdempotencyReused
	}

	s.log.Info().Str("idempotency_key", key).Int64("employee_id", emp.ID).Msg("idempotent replay")
	return &ports.EmployeeResult{Employee: emp}, true, nil
}

// requestFingerprint hashes the normalized fields that identify a create
// request. The password is left out so it never reaches the key store.
func requestFingerprint(in ports.EmployeeInput) string {
	h := sha256.New()
	for _, field := range []string{
		strings.TrimSpace(in.Name),
		strings.ToLower(strings.TrimSpace(in.Email)),
		strings.TrimSpace(in.Role),
		strings.TrimSpace(in.DepartmentName),
		strings.TrimSpace(in.Username),
	} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *EmployeeService) provision(ctx context.Context, in ports.EmployeeInput) (*ports.EmployeeResult, error) {
	var result *ports.EmployeeResult

	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		dep, err := s.departments.FindByName(ctx, in.DepartmentName)
		if err != nil {
			return err
		}

		user, provisioned, err := s.findOrCreateUser(ctx, in)
		if err != nil {
			return err
		}

		emp, err := s.employees.Create(ctx, &domain.Employee{
			Name:         in.Name,
			Email:        in.Email,
			Role:         in.Role,
			DepartmentID: dep.ID,
			UserID:       &user.ID,
		})
		if err != nil {
			return err
		}
		emp.DepartmentName = dep.Name
		emp.Username = user.Username

		result = &ports.EmployeeResult{Employee: emp, Created: true, UserProvisioned: provisioned}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// findOrCreateUser reuses an existing credential unchanged. A new one gets
// a bcrypt hash of the supplied password and the prefixed supplied role.
func (s *EmployeeService) findOrCreateUser(ctx context.Context, in ports.EmployeeInput) (*domain.User, bool, error) {
	user, err := s.users.FindByUsername(ctx, in.Username)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	if in.Password == "" {
		return nil, false, fmt.Errorf("%w: password is required to create user %q", domain.ErrInvalidInput, in.Username)
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, false, err
	}

	role := in.Role
	if strings.TrimSpace(role) == "" {
		role = domain.RoleEmployee
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.Authority(role),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, caller *domain.Identity, id int64) (*domain.Employee, error) {
	if err := s.requireCaller(caller, ActionRead, employeeResource(id)); err != nil {
		return nil, err
	}

	emp, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanAccessEmployee(ctx, caller, emp, ActionRead); err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *EmployeeService) GetEmployeeByEmail(ctx context.Context, caller *domain.Identity, email string) (*domain.Employee, error) {
	if err := s.requireCaller(caller, ActionRead, "employee/email/"+email); err != nil {
		return nil, err
	}

	emp, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanAccessEmployee(ctx, caller, emp, ActionRead); err != nil {
		return nil, err
	}
	return emp, nil
}

// ListEmployees returns every employee to an admin and at most the caller's
// own record to anyone else.
func (s *EmployeeService) ListEmployees(ctx context.Context, caller *domain.Identity) ([]*domain.Employee, error) {
	if err := s.requireCaller(caller, ActionList, "employees"); err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return s.employees.List(ctx)
	}

	user, err := s.users.FindByUsername(ctx, caller.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return []*domain.Employee{}, nil
	}
	if err != nil {
		return nil, err
	}

	own, err := s.employees.FindByUserID(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return []*domain.Employee{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []*domain.Employee{own}, nil
}

// SaveEmployee replaces the fields of employee id. When no such employee
// exists an admin creates a new, unlinked record instead.
func (s *EmployeeService) SaveEmployee(ctx context.Context, caller *domain.Identity, id int64, in ports.EmployeeInput) (*ports.EmployeeResult, error) {
	if err := validateEmployee(in); err != nil {
		return nil, err
	}
	if err := s.requireCaller(caller, ActionUpdate, employeeResource(id)); err != nil {
		return nil, err
	}

	var result *ports.EmployeeResult
	err := s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		dep, err := s.departments.FindByName(ctx, in.DepartmentName)
		if err != nil {
			return err
		}

		existing, err := s.employees.FindByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			if !caller.IsAdmin() {
				s.access.RecordDenied(caller, ActionCreate, employeeResource(id), reasonNotOwner)
				return domain.ErrForbidden
			}
			created, err := s.employees.Create(ctx, &domain.Employee{
				Name:         in.Name,
				Email:        in.Email,
				Role:         in.Role,
				DepartmentID: dep.ID,
			})
			if err != nil {
				return err
			}
			created.DepartmentName = dep.Name
			result = &ports.EmployeeResult{Employee: created, Created: true}
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.access.CanAccessEmployee(ctx, caller, existing, ActionUpdate); err != nil {
			return err
		}

		existing.Name = in.Name
		existing.Email = in.Email
		existing.Role = in.Role
		existing.DepartmentID = dep.ID
		updated, err := s.employees.Update(ctx, existing)
		if err != nil {
			return err
		}
		updated.DepartmentName = dep.Name
		result = &ports.EmployeeResult{Employee: updated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("employee_id", result.Employee.ID).
		Bool("created", result.Created).
		Str("by", caller.Username).
		Msg("employee saved")
	return result, nil
}

func (s *EmployeeService) DeleteEmployee(ctx context.Context, caller *domain.Identity, id int64) error {
	if err := s.requireCaller(caller, ActionDelete, employeeResource(id)); err != nil {
		return err
	}

	emp, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.delete(ctx, caller, emp)
}

func (s *EmployeeService) DeleteEmployeeByEmail(ctx context.Context, caller *domain.Identity, email string) error {
	if err := s.requireCaller(caller, ActionDelete, "employee/email/"+email); err != nil {
		return err
	}

	emp, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.delete(ctx, caller, emp)
}

func (s *EmployeeService) delete(ctx context.Context, caller *domain.Identity, emp *domain.Employee) error {
	if err := s.access.CanAccessEmployee(ctx, caller, emp, ActionDelete); err != nil {
		return err
	}
	if err := s.employees.Delete(ctx, emp.ID); err != nil {
		return err
	}

	s.log.Info().Int64("employee_id", emp.ID).Str("by", caller.Username).Msg("employee deleted")
	return nil
}

// requireCaller rejects anonymous callers before any record is loaded, so
// they cannot probe which records exist.
func (s *EmployeeService) requireCaller(caller *domain.Identity, action, resource string) error {
	if caller != nil {
		return nil
	}
	s.access.RecordDenied(nil, action, resource, reasonAnonymous)
	return domain.ErrUnauthenticated
}

func validateEmployee(in ports.EmployeeInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Email) == "":
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.DepartmentName) == "":
		return fmt.Errorf("%w: departmentName is required", domain.ErrInvalidInput)
	}
	return nil
}

func employeeResource(id int64) string {
	return "employee/" + strconv.FormatInt(id, 10)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
