package service

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

func TestDepartmentService_Lifecycle(t *testing.T) {
	store := newMemStore()
	svc := NewDepartmentService(memDepartments{store}, zerolog.Nop())

	dep, err := svc.CreateDepartment(testCtx, "  Finance ")
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	if dep.Name != "Finance" {
		t.Fatalf("name not trimmed: %q", dep.Name)
	}

	if _, err := svc.CreateDepartment(testCtx, "Finance"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate: expected ErrConflict, got %v", err)
	}
	if _, err := svc.CreateDepartment(testCtx, " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank: expected ErrInvalidInput, got %v", err)
	}

	renamed, err := svc.RenameDepartment(testCtx, dep.ID, "Treasury")
	if err != nil || renamed.Name != "Treasury" {
		t.Fatalf("RenameDepartment: %+v, %v", renamed, err)
	}

	got, err := svc.GetDepartment(testCtx, dep.ID)
	if err != nil || got.Name != "Treasury" {
		t.Fatalf("GetDepartment: %+v, %v", got, err)
	}

	all, err := svc.ListDepartments(testCtx)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListDepartments: %d, %v", len(all), err)
	}

	if err := svc.DeleteDepartment(testCtx, dep.ID); err != nil {
		t.Fatalf("DeleteDepartment: %v", err)
	}
	if _, err := svc.GetDepartment(testCtx, dep.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDepartmentService_DeleteInUse(t *testing.T) {
	store := newMemStore()
	svc := NewDepartmentService(memDepartments{store}, zerolog.Nop())
	dep := store.addDepartment("Ops")
	store.addEmployee("Olga", "olga@example.com", dep.ID, nil)

	if err := svc.DeleteDepartment(testCtx, dep.ID); !errors.Is(err, domain.ErrDepartmentInUse) {
		t.Fatalf("expected ErrDepartmentInUse, got %v", err)
	}
}
