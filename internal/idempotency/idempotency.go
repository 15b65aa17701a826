// Package idempotency replays stored responses for repeated requests that
// carry the same Idempotency-Key.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	ErrInFlight = errors.New("request with this idempotency key is in progress")
	ErrMismatch = errors.New("idempotency key reused with a different request")
)

type Response struct {
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

type Store interface {
	Get(ctx context.Context, key string) (*Response, error)
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Set(ctx context.Context, key string, resp Response, ttl time.Duration) error
}

type Idempotency struct {
	store   Store
	ttl     time.Duration
	lockTTL time.Duration
}

func NewIdempotency(store Store, ttl time.Duration) *Idempotency {
	return &Idempotency{store: store, ttl: ttl, lockTTL: 30 * time.Second}
}

func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Begin returns the stored response for key if there is one. Otherwise it
// takes the key's lock and returns nil; the caller must then call Finish or
// Abort.
func (i *Idempotency) Begin(ctx context.Context, key, fingerprint string) (*Response, error) {
	resp, err := i.store.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "idempotency lookup")
	}
	if resp != nil {
		if resp.Fingerprint != fingerprint {
			return nil, ErrMismatch
		}
		return resp, nil
	}
	ok, err := i.store.Lock(ctx, key, i.lockTTL)
	if err != nil {
		return nil, errors.Wrap(err, "idempotency lock")
	}
	if !ok {
		return nil, ErrInFlight
	}
	return nil, nil
}

func (i *Idempotency) Finish(ctx context.Context, key string, resp Response) error {
	if err := i.store.Set(ctx, key, resp, i.ttl); err != nil {
		return errors.Wrap(err, "idempotency store")
	}
	return i.store.Unlock(ctx, key)
}

func (i *Idempotency) Abort(ctx context.Context, key string) error {
	return i.store.Unlock(ctx, key)
}
