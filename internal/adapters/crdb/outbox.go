package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OutboxRecord struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Status        string // NEW, PUBLISHED, FAILED
	DedupeKey     string
}

func (r *Repository) InsertOutbox(ctx context.Context, tx pgx.Tx, record OutboxRecord) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload_json, status, dedupe_key)
		VALUES ($1, $2, $3, $4, $5, 'NEW', $6)
	`, record.ID, record.AggregateType, record.AggregateID, record.EventType, record.Payload, record.DedupeKey)
	return err
}

// ClaimOutbox locks up to limit unpublished records, hands each to publish and
// marks the ones that went out as published, all in one transaction. Rows
// locked by another publisher are skipped. It returns how many were published
// and the age of the oldest claimed record.
func (r *Repository) ClaimOutbox(ctx context.Context, limit int, publish func(context.Context, OutboxRecord) error) (int, time.Duration, error) {
	var (
		published  int
		lag        time.Duration
		publishErr error
	)
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		published, lag, publishErr = 0, 0, nil
		rows, err := tx.Query(ctx, `
			SELECT id, aggregate_type, aggregate_id, event_type, payload_json, created_at, published_at, status, dedupe_key
			FROM outbox WHERE status = 'NEW' ORDER BY created_at ASC LIMIT $1 FOR UPDATE SKIP LOCKED
		`, limit)
		if err != nil {
			return err
		}
		records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (OutboxRecord, error) {
			var rec OutboxRecord
			err := row.Scan(&rec.ID, &rec.AggregateType, &rec.AggregateID, &rec.EventType, &rec.Payload,
				&rec.CreatedAt, &rec.PublishedAt, &rec.Status, &rec.DedupeKey)
			return rec, err
		})
		if err != nil {
			return err
		}
		if len(records) > 0 {
			lag = r.now().Sub(records[0].CreatedAt)
		}

		for _, rec := range records {
			// The rest stay NEW for the next round.
			if publishErr = publish(ctx, rec); publishErr != nil {
				break
			}
			published++
		}
		return r.markPublished(ctx, tx, published, records)
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "claim outbox")
	}
	if publishErr != nil {
		return published, lag, errors.Wrap(publishErr, "publish outbox record")
	}
	return published, lag, nil
}

func (r *Repository) markPublished(ctx context.Context, tx pgx.Tx, n int, records []OutboxRecord) error {
	now := r.now().UTC()
	for _, rec := range records[:n] {
		_, err := tx.Exec(ctx, `
			UPDATE outbox SET status = 'PUBLISHED', published_at = $2 WHERE id = $1
		`, rec.ID, now)
		if err != nil {
			return err
		}
	}
	return nil
}
