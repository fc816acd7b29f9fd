package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/payrollhq/payroll-system/internal/core/domain"
	"github.com/payrollhq/payroll-system/internal/core/ports"
)

// Audit reasons attached to access decisions.
const (
	reasonAnonymous   = "anonymous"
	reasonAdmin       = "admin"
	reasonOwner       = "owner"
	reasonNotOwner    = "not_owner"
	reasonUnknownUser = "unknown_user"
)

// AccessChecker decides whether a caller may act on a specific employee
// record. Admins may act on any record; everyone else only on the record
// linked to their own credential.
type AccessChecker struct {
	users    ports.UserRepository
	recorder ports.AccessRecorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewAccessChecker returns an AccessChecker. recorder may be nil, in which
// case decisions are only logged.
func NewAccessChecker(users ports.UserRepository, recorder ports.AccessRecorder, log zerolog.Logger) *AccessChecker {
	return &AccessChecker{users: users, recorder: recorder, log: log, now: time.Now}
}

// CanAccessEmployee returns nil when caller may perform action on emp,
// domain.ErrUnauthenticated for an anonymous caller and domain.ErrForbidden
// otherwise. Storage failures are returned wrapped.
func (a *AccessChecker) CanAccessEmployee(ctx context.Context, caller *domain.Identity, emp *domain.Employee, action string) error {
	resource := employeeResource(emp.ID)

	if caller == nil {
		a.record(caller, action, resource, domain.DecisionDenied, reasonAnonymous)
		return domain.ErrUnauthenticated
	}
	if caller.IsAdmin() {
		a.record(caller, action, resource, domain.DecisionGranted, reasonAdmin)
		return nil
	}

	user, err := a.users.FindByUsername(ctx, caller.Username)
	if errors.Is(err, domain.ErrNotFound) {
		a.record(caller, action, resource, domain.DecisionDenied, reasonUnknownUser)
		return domain.ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("resolve requester: %w", err)
	}

	if !emp.OwnedBy(user.ID) {
		a.record(caller, action, resource, domain.DecisionDenied, reasonNotOwner)
		return domain.ErrForbidden
	}

	a.record(caller, action, resource, domain.DecisionGranted, reasonOwner)
	return nil
}

// RecordDenied stores a denial decided outside the checker, such as a route
// policy rejection.
func (a *AccessChecker) RecordDenied(caller *domain.Identity, action, resource, reason string) {
	a.record(caller, action, resource, domain.DecisionDenied, reason)
}

func (a *AccessChecker) record(caller *domain.Identity, action, resource string, decision domain.AccessDecision, reason string) {
	event := domain.AccessEvent{
		ID:       uuid.NewString(),
		Action:   action,
		Resource: resource,
		Decision: decision,
		Reason:   reason,
		At:       a.now().UTC(),
	}
	if caller != nil {
		event.Username = caller.Username
		event.Role = caller.Role
	}

	a.log.Debug().
		Str("username", event.Username).
		Str("action", action).
		Str("resource", resource).
		Str("decision", string(decision)).
		Str("reason", reason).
		Msg("access decision")

	if a.recorder != nil {
		a.recorder.Record(event)
	}
}
