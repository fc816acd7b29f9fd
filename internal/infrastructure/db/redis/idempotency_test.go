package redis

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/payrollhq/payroll-system/internal/core/ports"
)

// memoryHook answers GET and SET NX from a map so the client never dials.
type memoryHook struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	fail error
}

func newMemoryHook() *memoryHook {
	return &memoryHook{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("memoryHook: dialing is disabled")
	}
}

func (h *memoryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()

		if h.fail != nil {
			cmd.SetErr(h.fail)
			return h.fail
		}

		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := h.data[args[1].(string)]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.BoolCmd:
			key := args[1].(string)
			if _, exists := h.data[key]; exists {
				c.SetVal(false)
				return nil
			}
			h.data[key] = args[2].(string)
			// SET key value EX|PX n NX
			if len(args) > 4 {
				unit := time.Second
				if args[3] == "px" {
					unit = time.Millisecond
				}
				h.ttls[key] = time.Duration(args[4].(int64)) * unit
			}
			c.SetVal(true)
		}
		return nil
	}
}

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func newTestStore(t *testing.T, ttl time.Duration) (*IdempotencyStore, *memoryHook) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	hook := newMemoryHook()
	client.AddHook(hook)
	return NewIdempotencyStore(client, ttl), hook
}

func TestIdempotencyStore_RememberThenLookup(t *testing.T) {
	store, hook := newTestStore(t, time.Hour)
	ctx := context.Background()

	if _, found, err := store.Lookup(ctx, "req-1"); err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	want := ports.IdempotencyRecord{EmployeeID: 42, Fingerprint: "abc123"}
	if err := store.Remember(ctx, "req-1", want); err != nil {
		t.Fatalf("remember: %v", err)
	}
	got, found, err := store.Lookup(ctx, "req-1")
	if err != nil || !found || got != want {
		t.Fatalf("expected %+v, got %+v found=%v err=%v", want, got, found, err)
	}

	if v := hook.data["idempotency:employee:req-1"]; v != "42:abc123" {
		t.Fatalf("unexpected stored value %q in %v", v, hook.data)
	}
	if got := hook.ttls["idempotency:employee:req-1"]; got != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", got)
	}
}

func TestIdempotencyStore_FirstWriterWins(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	if err := store.Remember(ctx, "req-1", ports.IdempotencyRecord{EmployeeID: 1, Fingerprint: "first"}); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := store.Remember(ctx, "req-1", ports.IdempotencyRecord{EmployeeID: 2, Fingerprint: "second"}); err != nil {
		t.Fatalf("remember: %v", err)
	}
	rec, _, _ := store.Lookup(ctx, "req-1")
	if rec.EmployeeID != 1 || rec.Fingerprint != "first" {
		t.Fatalf("expected first record to stick, got %+v", rec)
	}
}

func TestIdempotencyStore_MalformedValue(t *testing.T) {
	store, hook := newTestStore(t, time.Minute)
	ctx := context.Background()

	for _, raw := range []string{"42", "x:abc", "42:"} {
		hook.data["idempotency:employee:bad"] = raw
		if _, found, err := store.Lookup(ctx, "bad"); err == nil || found {
			t.Fatalf("%q: expected error, got found=%v err=%v", raw, found, err)
		}
	}
}

func TestIdempotencyStore_Errors(t *testing.T) {
	store, hook := newTestStore(t, time.Minute)
	hook.fail = errors.New("READONLY You can't write against a read only replica")

	if _, _, err := store.Lookup(context.Background(), "req-1"); err == nil {
		t.Fatal("expected lookup error")
	}
	if err := store.Remember(context.Background(), "req-1", ports.IdempotencyRecord{EmployeeID: 1, Fingerprint: "f"}); err == nil {
		t.Fatal("expected remember error")
	}
}
