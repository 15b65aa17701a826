// Package mail sends guest notifications for booking events over SMTP.
package mail

import (
	"bytes"
	"context"
	"html/template"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/hotel-paradise/internal/config"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	gomail "github.com/wneessen/go-mail"
)

const hotelName = "Hotel Paradise"

var bodies = template.Must(template.New("mail").Parse(`
{{define "booking.created"}}<html><body>
<h1>Your booking is confirmed</h1>
<p>Dear {{.GuestName}},</p>
<p>Thank you for booking with ` + hotelName + `. Your stay in room {{.RoomID}} runs from {{.CheckIn}} to {{.CheckOut}}.</p>
<p>Total: ${{.TotalPrice.StringFixed 2}}</p>
<p>Booking reference: {{.BookingID}}</p>
</body></html>{{end}}
{{define "booking.cancelled"}}<html><body>
<h1>Your booking was cancelled</h1>
<p>Dear {{.GuestName}},</p>
<p>Your stay in room {{.RoomID}} from {{.CheckIn}} to {{.CheckOut}} has been cancelled.</p>
<p>Booking reference: {{.BookingID}}</p>
</body></html>{{end}}
`))

var subjects = map[string]string{
	domain.EventBookingCreated:                       "Booking confirmation - " + hotelName,
	domain.BookingEventType(domain.BookingCancelled): "Booking cancelled - " + hotelName,
}

type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Notifies reports whether guests get an email for this event type.
func Notifies(eventType string) bool {
	_, ok := subjects[eventType]
	return ok
}

func render(ev domain.BookingEvent) (string, string, error) {
	subject, ok := subjects[ev.Type]
	if !ok {
		return "", "", errors.Newf("no email for event %q", ev.Type)
	}
	var body bytes.Buffer
	if err := bodies.ExecuteTemplate(&body, ev.Type, ev); err != nil {
		return "", "", errors.Wrapf(err, "render %s email", ev.Type)
	}
	return subject, body.String(), nil
}

// Message builds the email for ev.
func (m *Mailer) Message(ev domain.BookingEvent) (*gomail.Msg, error) {
	subject, body, err := render(ev)
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(hotelName, m.cfg.From); err != nil {
		return nil, errors.Wrap(err, "set sender")
	}
	if err := msg.AddToFormat(ev.GuestName, ev.GuestEmail); err != nil {
		return nil, errors.Wrap(err, "set recipient")
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body)
	return msg, nil
}

func (m *Mailer) Send(ctx context.Context, ev domain.BookingEvent) error {
	msg, err := m.Message(ev)
	if err != nil {
		return err
	}
	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.User),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return errors.Wrapf(err, "smtp client for %s:%d", m.cfg.Host, m.cfg.Port)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrapf(err, "send %s email", ev.Type)
	}
	return nil
}
