package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoomDetails is the descriptive part of a room kept beside the catalog row.
type RoomDetails struct {
	RoomID      int64    `json:"room_id" bson:"_id"`
	Description string   `json:"description" bson:"description"`
	Beds        string   `json:"beds" bson:"beds"`
	SizeSqm     int      `json:"size_sqm" bson:"size_sqm"`
	Amenities   []string `json:"amenities" bson:"amenities"`
	Images      []string `json:"images" bson:"images"`
}

// Activity is one entry of the admin activity feed.
type Activity struct {
	ID        uuid.UUID     `json:"id" bson:"_id"`
	Type      string        `json:"type" bson:"type"`
	BookingID uuid.UUID     `json:"booking_id" bson:"booking_id"`
	RoomID    int64         `json:"room_id" bson:"room_id"`
	Status    BookingStatus `json:"status" bson:"status"`
	Message   string        `json:"message" bson:"message"`
	At        time.Time     `json:"at" bson:"at"`
}
