package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventBookingCreated = "booking.created"
	AggregateBooking    = "booking"
)

// BookingEventType names the event emitted when a booking enters status.
func BookingEventType(status BookingStatus) string {
	return "booking." + string(status)
}

// BookingEvent is the payload published for every booking state change.
type BookingEvent struct {
	Type       string          `json:"type"`
	BookingID  uuid.UUID       `json:"booking_id"`
	RoomID     int64           `json:"room_id"`
	Status     BookingStatus   `json:"status"`
	GuestName  string          `json:"guest_name"`
	GuestEmail string          `json:"guest_email"`
	CheckIn    Date            `json:"check_in"`
	CheckOut   Date            `json:"check_out"`
	TotalPrice decimal.Decimal `json:"total_price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		Status:     b.Status,
		GuestName:  b.Guest.Name,
		GuestEmail: b.Guest.Email,
		CheckIn:    b.Stay.CheckIn,
		CheckOut:   b.Stay.CheckOut,
		TotalPrice: b.TotalPrice,
		OccurredAt: at,
	}
}
