package booking

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies every failure the booking engine reports to callers.
type Kind string

const (
	KindInvalidRange       Kind = "invalid_range"
	KindInvalidCapacity    Kind = "invalid_capacity"
	KindInvalidGuest       Kind = "invalid_guest"
	KindCapacityExceeded   Kind = "capacity_exceeded"
	KindRoomUnavailable    Kind = "room_unavailable"
	KindNotFound           Kind = "not_found"
	KindInvalidState       Kind = "invalid_state"
	KindStorageUnavailable Kind = "storage_unavailable"
)

// Error is a structured engine failure. Sentinels below carry no message and
// match any Error of the same kind through errors.Is.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

var (
	ErrInvalidRange       = &Error{Kind: KindInvalidRange}
	ErrInvalidCapacity    = &Error{Kind: KindInvalidCapacity}
	ErrInvalidGuest       = &Error{Kind: KindInvalidGuest}
	ErrCapacityExceeded   = &Error{Kind: KindCapacityExceeded}
	ErrRoomUnavailable    = &Error{Kind: KindRoomUnavailable}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidState       = &Error{Kind: KindInvalidState}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
)

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// KindOf returns the kind of the first Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether a caller may reasonably retry the call.
func Retryable(err error) bool {
	return KindOf(err) == KindStorageUnavailable
}

// StorageError reports a failed storage call as StorageUnavailable.
func StorageError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapError(KindStorageUnavailable, err, "%s timed out", op)
	}
	return wrapError(KindStorageUnavailable, err, "%s failed", op)
}
