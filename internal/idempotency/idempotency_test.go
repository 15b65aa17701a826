package idempotency_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robertarktes/hotel-paradise/internal/idempotency"
)

type memStore struct {
	resp  map[string]idempotency.Response
	locks map[string]bool
}

func newMemStore() *memStore {
	return &memStore{resp: map[string]idempotency.Response{}, locks: map[string]bool{}}
}

func (m *memStore) Get(_ context.Context, key string) (*idempotency.Response, error) {
	r, ok := m.resp[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *memStore) Unlock(_ context.Context, key string) error {
	delete(m.locks, key)
	return nil
}

func (m *memStore) Set(_ context.Context, key string, r idempotency.Response, _ time.Duration) error {
	m.resp[key] = r
	return nil
}

func TestIdempotency_Replay(t *testing.T) {
	ctx := context.Background()
	idem := idempotency.NewIdempotency(newMemStore(), time.Hour)
	fp := idempotency.Fingerprint([]byte(`{"room_id":1}`))

	resp, err := idem.Begin(ctx, "key-0000000000001", fp)
	if err != nil || resp != nil {
		t.Fatalf("expected fresh key, got %v, %v", resp, err)
	}

	if _, err := idem.Begin(ctx, "key-0000000000001", fp); !errors.Is(err, idempotency.ErrInFlight) {
		t.Errorf("expected in-flight, got %v", err)
	}

	stored := idempotency.Response{Status: 201, Body: []byte(`{"id":"x"}`), Fingerprint: fp}
	if err := idem.Finish(ctx, "key-0000000000001", stored); err != nil {
		t.Fatal(err)
	}

	resp, err = idem.Begin(ctx, "key-0000000000001", fp)
	if err != nil {
		t.Fatal(err)
	}
	if resp == nil || resp.Status != 201 || string(resp.Body) != `{"id":"x"}` {
		t.Errorf("expected stored response, got %+v", resp)
	}

	other := idempotency.Fingerprint([]byte(`{"room_id":2}`))
	if _, err := idem.Begin(ctx, "key-0000000000001", other); !errors.Is(err, idempotency.ErrMismatch) {
		t.Errorf("expected mismatch, got %v", err)
	}
}

func TestIdempotency_Abort(t *testing.T) {
	ctx := context.Background()
	idem := idempotency.NewIdempotency(newMemStore(), time.Hour)

	if _, err := idem.Begin(ctx, "k", "fp"); err != nil {
		t.Fatal(err)
	}
	if err := idem.Abort(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if resp, err := idem.Begin(ctx, "k", "fp"); err != nil || resp != nil {
		t.Errorf("expected key free after abort, got %v, %v", resp, err)
	}
}
