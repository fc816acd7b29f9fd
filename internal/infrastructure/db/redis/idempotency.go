package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/payrollhq/payroll-system/internal/core/ports"
)

const (
	idempotencyPrefix     = "idempotency:employee:"
	defaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyStore remembers which employee an Idempotency-Key created and
// the fingerprint of the request that created it.
// Key format: idempotency:employee:<key>, value: <employee id>:<fingerprint>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the record stored under key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (ports.IdempotencyRecord, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return ports.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return ports.IdempotencyRecord{}, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		return ports.IdempotencyRecord{}, false, fmt.Errorf("idempotency lookup %q: %w", key, err)
	}
	return rec, true, nil
}

// Remember stores rec under key. The first writer wins; a later call for
// the same key leaves the stored record in place.
func (s *IdempotencyStore) Remember(ctx context.Context, key string, rec ports.IdempotencyRecord) error {
	if err := s.client.SetNX(ctx, s.key(key), encodeRecord(rec), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(k string) string {
	return idempotencyPrefix + k
}

func encodeRecord(rec ports.IdempotencyRecord) string {
	return strconv.FormatInt(rec.EmployeeID, 10) + ":" + rec.Fingerprint
}

func decodeRecord(raw string) (ports.IdempotencyRecord, error) {
	idPart, fingerprint, ok := strings.Cut(raw, ":")
	if !ok || fingerprint == "" {
		return ports.IdempotencyRecord{}, errors.New("malformed record")
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return ports.IdempotencyRecord{}, fmt.Errorf("malformed employee id: %w", err)
	}
	return ports.IdempotencyRecord{EmployeeID: id, Fingerprint: fingerprint}, nil
}
