package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/domain"
)

// Catalog is the read-only room store. GetRoom returns domain.ErrNotFound for
// unknown ids; ListRooms orders rooms by price, then id.
type Catalog interface {
	GetRoom(ctx context.Context, id int64) (domain.Room, error)
	ListRooms(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error)
}

// Ledger is the booking store. InsertBooking must enforce the no-overlap
// invariant atomically and report a violation as domain.ErrConflict or
// domain.ErrSerializationFailure.
type Ledger interface {
	ListActiveBookingsForRoom(ctx context.Context, roomID int64) ([]domain.Stay, error)
	InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	// UpdateBookingStatus moves a booking whose current status is one of from
	// to status. A booking in any other status is left untouched and
	// domain.ErrConflict is returned.
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, from []domain.BookingStatus, status domain.BookingStatus) error
	// CompleteStays marks confirmed and checked-in bookings whose check-out is
	// on or before day as completed and returns their ids.
	CompleteStays(ctx context.Context, day domain.Date) ([]uuid.UUID, error)
}
