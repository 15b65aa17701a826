package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/adapters/memory"
	"github.com/robertarktes/hotel-paradise/internal/booking"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/robertarktes/hotel-paradise/internal/observability"
	"github.com/shopspring/decimal"
)

// july20 is "today" for every service test.
var july20 = time.Date(2025, time.July, 20, 15, 0, 0, 0, time.UTC)

func room(id int64, price string, capacity int, status domain.RoomStatus) domain.Room {
	return domain.Room{
		ID:       id,
		Name:     "Room " + price,
		Type:     "standard",
		Price:    decimal.RequireFromString(price),
		Capacity: capacity,
		Status:   status,
	}
}

func newService(t *testing.T, store *memory.Store, opts ...booking.Option) *booking.Service {
	t.Helper()
	opts = append([]booking.Option{
		booking.WithClock(func() time.Time { return july20 }),
		booking.WithLocation(time.UTC),
		booking.WithStorageTimeout(time.Second),
	}, opts...)
	return booking.NewService(store, store, booking.NewCalculator(decimal.RequireFromString("0.10")), observability.NewNopLogger(), opts...)
}

func seedBooking(t *testing.T, store *memory.Store, roomID int64, checkIn, checkOut domain.Date, status domain.BookingStatus) domain.Booking {
	t.Helper()
	b, err := store.InsertBooking(context.Background(), domain.Booking{
		ID:     uuid.New(),
		RoomID: roomID,
		Stay:   domain.NewStay(checkIn, checkOut),
		Adults: 1,
		Status: domain.BookingConfirmed,
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	if status != domain.BookingConfirmed {
		if err := store.UpdateBookingStatus(context.Background(), b.ID, []domain.BookingStatus{domain.BookingConfirmed}, status); err != nil {
			t.Fatal(err)
		}
		b.Status = status
	}
	return b
}

func guest() domain.Guest {
	return domain.Guest{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+44 20 7946 0000"}
}

func roomIDs(rooms []domain.Room) []int64 {
	ids := make([]int64, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	return ids
}
