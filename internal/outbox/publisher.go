package outbox

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/hotel-paradise/internal/adapters/crdb"
	"github.com/robertarktes/hotel-paradise/internal/observability"
)

type Source interface {
	ClaimOutbox(ctx context.Context, limit int, publish func(context.Context, crdb.OutboxRecord) error) (int, time.Duration, error)
}

type Sink interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

type Publisher struct {
	repo     Source
	sink     Sink
	logger   observability.Logger
	interval time.Duration
	batch    int
}

func NewPublisher(repo Source, sink Sink, logger observability.Logger, interval time.Duration, batch int) *Publisher {
	return &Publisher{repo: repo, sink: sink, logger: logger, interval: interval, batch: batch}
}

func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("outbox publisher started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Drain full batches before waiting for the next tick.
			for {
				n, err := p.Flush(ctx)
				if err != nil {
					p.logger.WithError(err).Error("outbox flush failed")
					break
				}
				if n < p.batch {
					break
				}
			}
		}
	}
}

// Flush publishes one batch and returns how many records went out.
func (p *Publisher) Flush(ctx context.Context) (int, error) {
	n, lag, err := p.repo.ClaimOutbox(ctx, p.batch, func(ctx context.Context, rec crdb.OutboxRecord) error {
		return p.sink.Publish(ctx, rec.EventType, amqp.Publishing{
			MessageId:    rec.DedupeKey,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         rec.EventType,
			Timestamp:    rec.CreatedAt,
			Body:         rec.Payload,
		})
	})
	observability.OutboxLag.Set(lag.Seconds())
	if n > 0 {
		p.logger.WithField("published", n).Debug("outbox batch published")
	}
	return n, err
}
