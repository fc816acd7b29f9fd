package ports

import (
	"context"

	"github.com/payrollhq/payroll-system/internal/core/domain"
)

// AuditRepository persists access audit events.
type AuditRepository interface {
	InsertAccessEvent(ctx context.Context, event *domain.AccessEvent) error
}

// AccessRecorder accepts audit events without blocking the caller.
type AccessRecorder interface {
	Record(event domain.AccessEvent)
}

// IdempotencyRecord is what an Idempotency-Key resolves to. Fingerprint
// identifies the request body that first used the key.
type IdempotencyRecord struct {
	EmployeeID  int64
	Fingerprint string
}

// IdempotencyStore remembers which employee an Idempotency-Key created.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (rec IdempotencyRecord, found bool, err error)
	Remember(ctx context.Context, key string, rec IdempotencyRecord) error
}
