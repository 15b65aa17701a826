package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/booking"
	"github.com/robertarktes/hotel-paradise/internal/observability"
)

type scriptedCompleter struct {
	errs  []error
	calls int
}

func (s *scriptedCompleter) CompleteStays(context.Context) ([]uuid.UUID, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return []uuid.UUID{uuid.New()}, nil
}

func TestStayWorker_RetriesStorageFailures(t *testing.T) {
	c := &scriptedCompleter{errs: []error{booking.ErrStorageUnavailable}}
	w := NewStayWorker(c, observability.NewNopLogger())

	if err := w.completeWithRetry(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if c.calls != 2 {
		t.Errorf("expected 2 calls, got %d", c.calls)
	}
}

func TestStayWorker_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad row")
	c := &scriptedCompleter{errs: []error{permanent}}
	w := NewStayWorker(c, observability.NewNopLogger())

	if err := w.completeWithRetry(context.Background()); !errors.Is(err, permanent) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if c.calls != 1 {
		t.Errorf("expected no retry, got %d calls", c.calls)
	}
}
