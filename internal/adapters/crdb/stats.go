package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/hotel-paradise/internal/dashboard"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DailyCounts runs the dashboard aggregates concurrently.
func (r *Repository) DailyCounts(ctx context.Context, day domain.Date, from, to time.Time) (dashboard.DailyCounts, error) {
	var (
		counts  dashboard.DailyCounts
		revenue string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT count(*), COALESCE(sum(total_price), 0)::STRING, COALESCE(sum(adults + children), 0)::INT8
			FROM bookings
			WHERE created_at >= $1 AND created_at < $2 AND status != 'cancelled'
		`, from, to).Scan(&counts.Bookings, &revenue, &counts.Guests)
	})
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT count(DISTINCT room_id) FROM bookings
			WHERE status IN ('confirmed', 'checked_in') AND check_in <= $1 AND $1 < check_out
		`, day.Time()).Scan(&counts.OccupiedRooms)
	})
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `SELECT count(*) FROM rooms`).Scan(&counts.TotalRooms)
	})
	if err := g.Wait(); err != nil {
		return dashboard.DailyCounts{}, err
	}

	rev, err := decimal.NewFromString(revenue)
	if err != nil {
		return dashboard.DailyCounts{}, errors.Wrap(err, "parse revenue")
	}
	counts.Revenue = rev
	return counts, nil
}

func (r *Repository) Bookings(ctx context.Context, from, to time.Time, limit int) ([]dashboard.BookingRow, error) {
	windowed := !from.IsZero() && !to.IsZero()
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.guest_name, r.name, b.check_in, b.check_out, b.status, b.total_price::STRING, b.created_at
		FROM bookings b JOIN rooms r ON r.id = b.room_id
		WHERE NOT $1 OR (b.created_at >= $2 AND b.created_at < $3)
		ORDER BY b.created_at DESC
		LIMIT $4
	`, windowed, from, to, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (dashboard.BookingRow, error) {
		var (
			b       dashboard.BookingRow
			in, out time.Time
			status  string
			total   string
		)
		if err := row.Scan(&b.ID, &b.GuestName, &b.RoomName, &in, &out, &status, &total, &b.CreatedAt); err != nil {
			return b, err
		}
		price, err := decimal.NewFromString(total)
		if err != nil {
			return b, errors.Wrapf(err, "booking %s total", b.ID)
		}
		b.CheckIn, b.CheckOut = domain.DateOf(in), domain.DateOf(out)
		b.Status = domain.BookingStatus(status)
		b.TotalPrice = price
		return b, nil
	})
}

func (r *Repository) RoomBoard(ctx context.Context, day domain.Date) ([]dashboard.RoomOccupancy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name, r.room_type, r.status,
			COALESCE(b.guest_name, ''), b.check_in, b.check_out
		FROM rooms r
		LEFT JOIN bookings b ON b.room_id = r.id
			AND b.status IN ('confirmed', 'checked_in')
			AND b.check_in <= $1 AND $1 < b.check_out
		ORDER BY r.id
	`, day.Time())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (dashboard.RoomOccupancy, error) {
		var (
			o       dashboard.RoomOccupancy
			status  string
			in, out *time.Time
		)
		if err := row.Scan(&o.RoomID, &o.RoomName, &o.RoomType, &status, &o.GuestName, &in, &out); err != nil {
			return o, err
		}
		o.Status = domain.RoomStatus(status)
		if in != nil && out != nil {
			o.CheckIn, o.CheckOut = domain.DateOf(*in), domain.DateOf(*out)
		}
		return o, nil
	})
}
