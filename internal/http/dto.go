package http

import (
	"strings"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/dashboard"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/shopspring/decimal"
)

// Money is always rendered with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type roomResponse struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"room_type"`
	Price    string            `json:"price"`
	Capacity int               `json:"capacity"`
	Status   domain.RoomStatus `json:"status"`
}

func toRoom(r domain.Room) roomResponse {
	return roomResponse{ID: r.ID, Name: r.Name, Type: r.Type, Price: money(r.Price), Capacity: r.Capacity, Status: r.Status}
}

func toRooms(rooms []domain.Room) []roomResponse {
	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoom(r))
	}
	return out
}

type roomDetailResponse struct {
	roomResponse
	Details *domain.RoomDetails `json:"details,omitempty"`
}

type quoteResponse struct {
	RoomID       int64       `json:"room_id"`
	RoomName     string      `json:"room_name"`
	Price        string      `json:"price"`
	CheckIn      domain.Date `json:"check_in"`
	CheckOut     domain.Date `json:"check_out"`
	Nights       int         `json:"nights"`
	Subtotal     string      `json:"subtotal"`
	TaxesAndFees string      `json:"taxes_and_fees"`
	Total        string      `json:"total"`
}

type createBookingRequest struct {
	RoomID          int64       `json:"room_id" validate:"required,gt=0"`
	CheckIn         domain.Date `json:"check_in"`
	CheckOut        domain.Date `json:"check_out"`
	FirstName       string      `json:"first_name" validate:"required,max=100"`
	LastName        string      `json:"last_name" validate:"required,max=100"`
	Email           string      `json:"email" validate:"required"`
	Phone           string      `json:"phone" validate:"required"`
	Adults          *int        `json:"adults"`
	Children        *int        `json:"children"`
	SpecialRequests string      `json:"special_requests"`
}

func (r createBookingRequest) guestName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

type bookingResponse struct {
	ID              uuid.UUID            `json:"id"`
	RoomID          int64                `json:"room_id"`
	GuestName       string               `json:"guest_name"`
	GuestEmail      string               `json:"guest_email"`
	GuestPhone      string               `json:"guest_phone"`
	CheckIn         domain.Date          `json:"check_in"`
	CheckOut        domain.Date          `json:"check_out"`
	Nights          int                  `json:"nights"`
	Adults          int                  `json:"adults"`
	Children        int                  `json:"children"`
	SpecialRequests string               `json:"special_requests,omitempty"`
	TotalPrice      string               `json:"total_price"`
	Status          domain.BookingStatus `json:"status"`
	CreatedAt       string               `json:"created_at"`
}

func toBooking(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		RoomID:          b.RoomID,
		GuestName:       b.Guest.Name,
		GuestEmail:      b.Guest.Email,
		GuestPhone:      b.Guest.Phone,
		CheckIn:         b.Stay.CheckIn,
		CheckOut:        b.Stay.CheckOut,
		Nights:          b.Stay.Nights(),
		Adults:          b.Adults,
		Children:        b.Children,
		SpecialRequests: b.SpecialRequests,
		TotalPrice:      money(b.TotalPrice),
		Status:          b.Status,
		CreatedAt:       b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type statsResponse struct {
	Date          domain.Date `json:"date"`
	TotalBookings int         `json:"total_bookings"`
	TotalRevenue  string      `json:"total_revenue"`
	OccupancyRate string      `json:"occupancy_rate"`
	TotalGuests   int         `json:"total_guests"`
}

func toStats(s dashboard.Stats) statsResponse {
	return statsResponse{
		Date:          s.Date,
		TotalBookings: s.TotalBookings,
		TotalRevenue:  money(s.TotalRevenue),
		OccupancyRate: s.OccupancyRate.StringFixed(1),
		TotalGuests:   s.TotalGuests,
	}
}

type bookingRowResponse struct {
	dashboard.BookingRow
	TotalPrice string `json:"total_price"`
}

func toBookingRows(rows []dashboard.BookingRow) []bookingRowResponse {
	out := make([]bookingRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, bookingRowResponse{BookingRow: r, TotalPrice: money(r.TotalPrice)})
	}
	return out
}
