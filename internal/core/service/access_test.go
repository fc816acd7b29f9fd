package service

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

func TestAccessChecker_CanAccessEmployee(t *testing.T) {
	store := newMemStore()
	alice := store.addUser("alice", "ROLE_EMPLOYEE")
	bob := store.addUser("bob", "ROLE_EMPLOYEE")
	emp := &domain.Employee{ID: 7, UserID: &alice.ID}

	rec := &stubRecorder{}
	checker := NewAccessChecker(memUsers{store}, rec, zerolog.Nop())
	at := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	checker.now = func() time.Time { return at }

	cases := []struct {
		name     string
		caller   *domain.Identity
		wantErr  error
		decision domain.AccessDecision
		reason   string
	}{
		{"anonymous", nil, domain.ErrUnauthenticated, domain.DecisionDenied, reasonAnonymous},
		{"admin by prefixed claim", &domain.Identity{Username: "root", Role: "ROLE_ADMIN"}, nil, domain.DecisionGranted, reasonAdmin},
		{"owner", &domain.Identity{Username: "alice", Role: "ROLE_EMPLOYEE"}, nil, domain.DecisionGranted, reasonOwner},
		{"other user", &domain.Identity{Username: bob.Username, Role: "ROLE_EMPLOYEE"}, domain.ErrForbidden, domain.DecisionDenied, reasonNotOwner},
		{"unknown user", &domain.Identity{Username: "ghost", Role: "ROLE_EMPLOYEE"}, domain.ErrForbidden, domain.DecisionDenied, reasonUnknownUser},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checker.CanAccessEmployee(testCtx, tc.caller, emp, ActionRead)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			ev := rec.last()
			if ev.Decision != tc.decision || ev.Reason != tc.reason {
				t.Fatalf("audit event %+v, want %s/%s", ev, tc.decision, tc.reason)
			}
			if ev.Resource != "employee/7" || ev.Action != ActionRead || !ev.At.Equal(at) || ev.ID == "" {
				t.Fatalf("incomplete audit event: %+v", ev)
			}
		})
	}
}

func TestAccessChecker_UnlinkedEmployeeOnlyForAdmin(t *testing.T) {
	store := newMemStore()
	store.addUser("alice", "ROLE_EMPLOYEE")
	checker := NewAccessChecker(memUsers{store}, nil, zerolog.Nop())
	unlinked := &domain.Employee{ID: 9}

	if err := checker.CanAccessEmployee(testCtx, &domain.Identity{Username: "alice", Role: "ROLE_EMPLOYEE"}, unlinked, ActionRead); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := checker.CanAccessEmployee(testCtx, &domain.Identity{Username: "root", Role: "ADMIN"}, unlinked, ActionRead); err != nil {
		t.Fatalf("admin should be granted: %v", err)
	}
}
