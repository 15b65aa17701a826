package mail

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/config"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/shopspring/decimal"
)

func event(eventType string) domain.BookingEvent {
	return domain.BookingEvent{
		Type:       eventType,
		BookingID:  uuid.New(),
		RoomID:     101,
		Status:     domain.BookingConfirmed,
		GuestName:  "Ada Lovelace",
		GuestEmail: "ada@example.com",
		CheckIn:    domain.NewDate(2024, 8, 1),
		CheckOut:   domain.NewDate(2024, 8, 4),
		TotalPrice: decimal.RequireFromString("330"),
		OccurredAt: time.Now(),
	}
}

func TestMailer_Message(t *testing.T) {
	m := NewMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "front@example.com"})

	ev := event(domain.EventBookingCreated)
	msg, err := m.Message(ev)
	if err != nil {
		t.Fatal(err)
	}
	rcpts, err := msg.GetRecipients()
	if err != nil {
		t.Fatal(err)
	}
	if len(rcpts) != 1 || rcpts[0] != "ada@example.com" {
		t.Errorf("unexpected recipients %v", rcpts)
	}

	subject, body, err := render(ev)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(subject, "Booking confirmation") {
		t.Errorf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Ada Lovelace", "2024-08-01", "2024-08-04", "$330.00", ev.BookingID.String()} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestMailer_UnknownEvent(t *testing.T) {
	m := NewMailer(config.SMTPConfig{From: "front@example.com"})
	if Notifies(domain.BookingEventType(domain.BookingCheckedIn)) {
		t.Error("check-in should not email the guest")
	}
	if _, err := m.Message(event(domain.BookingEventType(domain.BookingCheckedIn))); err == nil {
		t.Error("expected error for event without a template")
	}
}
