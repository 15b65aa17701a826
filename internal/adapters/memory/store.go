// Package memory is an in-process room catalog and booking ledger. A single
// mutex makes InsertBooking's overlap check and insert atomic, which is the
// contract the booking engine expects from any ledger.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	rooms    map[int64]domain.Room
	bookings map[uuid.UUID]domain.Booking
	// FailWith, when set, is returned by every call. Tests use it to
	// simulate an unreachable store.
	FailWith error
}

func New() *Store {
	return &Store{
		rooms:    make(map[int64]domain.Room),
		bookings: make(map[uuid.UUID]domain.Booking),
	}
}

// PutRoom creates or replaces a room.
func (s *Store) PutRoom(room domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
}

func (s *Store) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	if err := s.check(ctx); err != nil {
		return domain.Room{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return room, nil
}

func (s *Store) ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		if filter.Match(room) {
			rooms = append(rooms, room)
		}
	}
	slices.SortFunc(rooms, func(a, b domain.Room) int {
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rooms, nil
}

func (s *Store) ListActiveBookingsForRoom(ctx context.Context, roomID int64) ([]domain.Stay, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stays []domain.Stay
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.Status.Active() {
			stays = append(stays, b.Stay)
		}
	}
	return stays, nil
}

func (s *Store) InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if err := s.check(ctx); err != nil {
		return domain.Booking{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[b.RoomID]; !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	if _, ok := s.bookings[b.ID]; ok {
		return domain.Booking{}, domain.ErrConflict
	}
	for _, existing := range s.bookings {
		if existing.RoomID == b.RoomID && existing.Status.Active() && existing.Stay.Overlaps(b.Stay) {
			return domain.Booking{}, domain.ErrConflict
		}
	}
	s.bookings[b.ID] = b
	return b, nil
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	if err := s.check(ctx); err != nil {
		return domain.Booking{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from []domain.BookingStatus, status domain.BookingStatus) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !slices.Contains(from, b.Status) {
		return domain.ErrConflict
	}
	b.Status = status
	s.bookings[id] = b
	return nil
}

func (s *Store) CompleteStays(ctx context.Context, day domain.Date) ([]uuid.UUID, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var done []uuid.UUID
	for id, b := range s.bookings {
		if (b.Status == domain.BookingConfirmed || b.Status == domain.BookingCheckedIn) && !day.Before(b.Stay.CheckOut) {
			b.Status = domain.BookingCompleted
			s.bookings[id] = b
			done = append(done, id)
		}
	}
	return done, nil
}

// Bookings returns every booking for a room, in no particular order.
func (s *Store) Bookings(roomID int64) []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Booking
	for _, b := range s.bookings {
		if b.RoomID == roomID {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) check(ctx context.Context) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	return ctx.Err()
}
