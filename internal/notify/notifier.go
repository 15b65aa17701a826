// Package notify turns booking events from the broker into activity feed
// entries and guest emails.
package notify

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/robertarktes/hotel-paradise/internal/observability"
)

type ActivityRecorder interface {
	Record(ctx context.Context, ev domain.BookingEvent) error
}

type Sender interface {
	Send(ctx context.Context, ev domain.BookingEvent) error
}

type Notifier struct {
	activities ActivityRecorder
	mailer     Sender
	notifies   func(eventType string) bool
	logger     observability.Logger
}

// NewNotifier builds a Notifier. A nil mailer disables email.
func NewNotifier(activities ActivityRecorder, mailer Sender, notifies func(string) bool, logger observability.Logger) *Notifier {
	return &Notifier{activities: activities, mailer: mailer, notifies: notifies, logger: logger}
}

// Run handles deliveries until ctx is done or the channel closes.
func (n *Notifier) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			n.handleDelivery(ctx, d)
		}
	}
}

func (n *Notifier) handleDelivery(ctx context.Context, d amqp.Delivery) {
	log := n.logger.WithFields(map[string]interface{}{
		"message_id":  d.MessageId,
		"routing_key": d.RoutingKey,
	})
	err := n.Handle(ctx, d.Body)
	switch {
	case err == nil:
		d.Ack(false)
	case errors.Is(err, errMalformed):
		log.WithError(err).Error("dropping malformed event")
		d.Nack(false, false)
	default:
		log.WithError(err).Warn("event handling failed, requeueing")
		d.Nack(false, !d.Redelivered)
	}
}

var errMalformed = errors.New("malformed event")

// Handle processes one encoded booking event.
func (n *Notifier) Handle(ctx context.Context, body []byte) error {
	var ev domain.BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Mark(errors.Wrap(err, "decode event"), errMalformed)
	}
	if ev.Type == "" {
		return errors.Mark(errors.New("event without type"), errMalformed)
	}

	if err := n.activities.Record(ctx, ev); err != nil {
		return errors.Wrap(err, "record activity")
	}
	if n.mailer != nil && n.notifies(ev.Type) {
		if err := n.mailer.Send(ctx, ev); err != nil {
			return errors.Wrapf(err, "email %s", ev.BookingID)
		}
	}
	return nil
}
