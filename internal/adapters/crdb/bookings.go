package crdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/shopspring/decimal"
)

const bookingColumns = `id, room_id, guest_name, guest_email, guest_phone, check_in, check_out,
	adults, children, special_requests, total_price::STRING, status, created_at`

func (r *Repository) ListActiveBookingsForRoom(ctx context.Context, roomID int64) ([]domain.Stay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT check_in, check_out FROM bookings
		WHERE room_id = $1 AND status != 'cancelled'
		ORDER BY check_in
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stays []domain.Stay
	for rows.Next() {
		var in, out time.Time
		if err := rows.Scan(&in, &out); err != nil {
			return nil, err
		}
		stays = append(stays, domain.Stay{CheckIn: domain.DateOf(in), CheckOut: domain.DateOf(out)})
	}
	return stays, rows.Err()
}

// InsertBooking stores b and its booking.created event in one serializable
// transaction. The room row is locked first so that concurrent inserts for the
// same room queue up and the overlap count below sees every committed booking.
func (r *Repository) InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, b.RoomID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.Wrapf(domain.ErrNotFound, "room %d", b.RoomID)
		}
		if err != nil {
			return err
		}

		var overlapping int
		err = tx.QueryRow(ctx, `
			SELECT count(*) FROM bookings
			WHERE room_id = $1 AND status != 'cancelled'
			  AND check_in < $3 AND $2 < check_out
		`, b.RoomID, b.Stay.CheckIn.Time(), b.Stay.CheckOut.Time()).Scan(&overlapping)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return errors.Wrapf(domain.ErrConflict, "room %d overlaps %d bookings", b.RoomID, overlapping)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO bookings (id, room_id, guest_name, guest_email, guest_phone, check_in, check_out,
				adults, children, special_requests, total_price, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::STRING::DECIMAL, $12, $13)
			RETURNING created_at
		`, b.ID, b.RoomID, b.Guest.Name, b.Guest.Email, b.Guest.Phone,
			b.Stay.CheckIn.Time(), b.Stay.CheckOut.Time(), b.Adults, b.Children,
			b.SpecialRequests, b.TotalPrice.StringFixed(2), string(b.Status), b.CreatedAt).Scan(&b.CreatedAt)
		if err != nil {
			return err
		}

		return r.insertBookingEvent(ctx, tx, domain.EventBookingCreated, b)
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *Repository) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Booking{}, errors.Wrapf(domain.ErrNotFound, "booking %s", id)
	}
	return b, err
}

// UpdateBookingStatus moves the booking from one of the given statuses to
// status and records a booking.<status> event. A booking found in any other
// status is left as is and reported as domain.ErrConflict.
func (r *Repository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from []domain.BookingStatus, status domain.BookingStatus) error {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE bookings SET status = $2
			WHERE id = $1 AND status = ANY($3::STRING[])
			RETURNING `+bookingColumns, id, string(status), allowed)
		b, err := scanBooking(row)
		if errors.Is(err, pgx.ErrNoRows) {
			var current string
			err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, id).Scan(&current)
			if errors.Is(err, pgx.ErrNoRows) {
				return errors.Wrapf(domain.ErrNotFound, "booking %s", id)
			}
			if err != nil {
				return err
			}
			return errors.Wrapf(domain.ErrConflict, "booking %s is %s", id, current)
		}
		if err != nil {
			return err
		}
		return r.insertBookingEvent(ctx, tx, domain.BookingEventType(status), b)
	})
}

func (r *Repository) CompleteStays(ctx context.Context, day domain.Date) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		ids = ids[:0]
		rows, err := tx.Query(ctx, `
			UPDATE bookings SET status = 'completed'
			WHERE status IN ('confirmed', 'checked_in') AND check_out <= $1
			RETURNING `+bookingColumns, day.Time())
		if err != nil {
			return err
		}
		var done []domain.Booking
		for rows.Next() {
			b, err := scanBooking(rows)
			if err != nil {
				rows.Close()
				return err
			}
			done = append(done, b)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, b := range done {
			if err := r.insertBookingEvent(ctx, tx, domain.BookingEventType(domain.BookingCompleted), b); err != nil {
				return err
			}
			ids = append(ids, b.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) insertBookingEvent(ctx context.Context, tx pgx.Tx, eventType string, b domain.Booking) error {
	payload, err := json.Marshal(domain.NewBookingEvent(eventType, b, r.now().UTC()))
	if err != nil {
		return errors.Wrap(err, "marshal booking event")
	}
	return r.InsertOutbox(ctx, tx, OutboxRecord{
		ID:            uuid.New(),
		AggregateType: domain.AggregateBooking,
		AggregateID:   b.ID,
		EventType:     eventType,
		Payload:       payload,
		DedupeKey:     eventType + ":" + b.ID.String(),
	})
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var (
		b       domain.Booking
		in, out time.Time
		total   string
		status  string
	)
	err := row.Scan(&b.ID, &b.RoomID, &b.Guest.Name, &b.Guest.Email, &b.Guest.Phone, &in, &out,
		&b.Adults, &b.Children, &b.SpecialRequests, &total, &status, &b.CreatedAt)
	if err != nil {
		return domain.Booking{}, err
	}
	price, err := decimal.NewFromString(total)
	if err != nil {
		return domain.Booking{}, errors.Wrapf(err, "booking %s total", b.ID)
	}
	b.Stay = domain.Stay{CheckIn: domain.DateOf(in), CheckOut: domain.DateOf(out)}
	b.TotalPrice = price
	b.Status = domain.BookingStatus(status)
	return b, nil
}
