package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/payrollhq/payroll-system/internal/core/domain"
	"github.com/payrollhq/payroll-system/internal/core/ports"
)

type DepartmentService struct {
	repo ports.DepartmentRepository
	log  zerolog.Logger
}

func NewDepartmentService(repo ports.DepartmentRepository, log zerolog.Logger) *DepartmentService {
	return &DepartmentService{repo: repo, log: log}
}

func (s *DepartmentService) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	return s.repo.List(ctx)
}

func (s *DepartmentService) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, name string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	dep, err := s.repo.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("department_id", dep.ID).Str("name", dep.Name).Msg("department created")
	return dep, nil
}

func (s *DepartmentService) RenameDepartment(ctx context.Context, id int64, name string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	return s.repo.Rename(ctx, id, name)
}

// DeleteDepartment fails with domain.ErrDepartmentInUse while employees
// still reference the department.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("department_id", id).Msg("department deleted")
	return nil
}
