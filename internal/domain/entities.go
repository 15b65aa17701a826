package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomMaintenance RoomStatus = "maintenance"
	RoomUnavailable RoomStatus = "unavailable"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Active reports whether the booking still holds its room.
func (s BookingStatus) Active() bool {
	return s != BookingCancelled
}

type Room struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"room_type"`
	Price    decimal.Decimal `json:"price"`
	Capacity int             `json:"capacity"`
	Status   RoomStatus      `json:"status"`
}

// RoomFilter narrows ListRooms. Zero fields do not filter.
type RoomFilter struct {
	Status      RoomStatus
	Type        string
	MinCapacity int
	MaxPrice    decimal.Decimal
}

func (f RoomFilter) Match(r Room) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if !f.MaxPrice.IsZero() && r.Price.GreaterThan(f.MaxPrice) {
		return false
	}
	return r.Capacity >= f.MinCapacity
}

type Guest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Booking struct {
	ID              uuid.UUID       `json:"id"`
	RoomID          int64           `json:"room_id"`
	Guest           Guest           `json:"guest"`
	Stay            Stay            `json:"stay"`
	Adults          int             `json:"adults"`
	Children        int             `json:"children"`
	SpecialRequests string          `json:"special_requests,omitempty"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          BookingStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (b Booking) Guests() int {
	return b.Adults + b.Children
}

// Quote holds the price of a stay, rounded to cents.
type Quote struct {
	Nights       int             `json:"nights"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxesAndFees decimal.Decimal `json:"taxes_and_fees"`
	Total        decimal.Decimal `json:"total"`
}
