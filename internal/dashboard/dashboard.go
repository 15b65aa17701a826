// Package dashboard serves the admin overview: daily figures, recent
// bookings and which rooms are occupied today.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-paradise/internal/booking"
	"github.com/robertarktes/hotel-paradise/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	recentLimit = 5
	allLimit    = 100
)

type DailyCounts struct {
	Bookings      int
	Revenue       decimal.Decimal
	Guests        int
	OccupiedRooms int
	TotalRooms    int
}

type Stats struct {
	Date          domain.Date     `json:"date"`
	TotalBookings int             `json:"total_bookings"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	OccupancyRate decimal.Decimal `json:"occupancy_rate"`
	TotalGuests   int             `json:"total_guests"`
}

type BookingRow struct {
	ID         uuid.UUID            `json:"id"`
	GuestName  string               `json:"guest_name"`
	RoomName   string               `json:"room_name"`
	CheckIn    domain.Date          `json:"check_in"`
	CheckOut   domain.Date          `json:"check_out"`
	Status     domain.BookingStatus `json:"status"`
	TotalPrice decimal.Decimal      `json:"total_price"`
	CreatedAt  time.Time            `json:"created_at"`
}

// RoomOccupancy is one line of the room board. Guest fields are empty when
// nobody stays in the room on the board's day.
type RoomOccupancy struct {
	RoomID    int64             `json:"room_id"`
	RoomName  string            `json:"room_name"`
	RoomType  string            `json:"room_type"`
	Status    domain.RoomStatus `json:"status"`
	GuestName string            `json:"guest_name,omitempty"`
	CheckIn   domain.Date       `json:"check_in"`
	CheckOut  domain.Date       `json:"check_out"`
}

type Repository interface {
	// DailyCounts aggregates bookings created in [from, to) and occupancy on day.
	DailyCounts(ctx context.Context, day domain.Date, from, to time.Time) (DailyCounts, error)
	// Bookings lists bookings newest first; zero from/to means no window.
	Bookings(ctx context.Context, from, to time.Time, limit int) ([]BookingRow, error)
	RoomBoard(ctx context.Context, day domain.Date) ([]RoomOccupancy, error)
}

type Service struct {
	repo    Repository
	loc     *time.Location
	now     func() time.Time
	timeout time.Duration
}

func NewService(repo Repository, loc *time.Location, timeout time.Duration) *Service {
	return &Service{repo: repo, loc: loc, now: time.Now, timeout: timeout}
}

func (s *Service) Today() domain.Date {
	return domain.DateOf(s.now().In(s.loc))
}

func (s *Service) Stats(ctx context.Context, day domain.Date) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	from, to := s.window(day)
	counts, err := s.repo.DailyCounts(ctx, day, from, to)
	if err != nil {
		return Stats{}, booking.StorageError("daily counts for "+day.String(), err)
	}

	occupancy := decimal.Zero
	if counts.TotalRooms > 0 {
		occupancy = decimal.NewFromInt(int64(counts.OccupiedRooms)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(counts.TotalRooms))).
			Round(1)
	}
	return Stats{
		Date:          day,
		TotalBookings: counts.Bookings,
		TotalRevenue:  counts.Revenue.Round(2),
		OccupancyRate: occupancy,
		TotalGuests:   counts.Guests,
	}, nil
}

// RecentBookings returns the latest bookings made on day, or the latest
// bookings overall when day is zero.
func (s *Service) RecentBookings(ctx context.Context, day domain.Date) ([]BookingRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		from, to time.Time
		limit    = allLimit
	)
	if !day.IsZero() {
		from, to = s.window(day)
		limit = recentLimit
	}
	rows, err := s.repo.Bookings(ctx, from, to, limit)
	if err != nil {
		return nil, booking.StorageError("list bookings", err)
	}
	return rows, nil
}

func (s *Service) RoomBoard(ctx context.Context) ([]RoomOccupancy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.RoomBoard(ctx, s.Today())
	if err != nil {
		return nil, booking.StorageError("room board", err)
	}
	return rows, nil
}

func (s *Service) window(day domain.Date) (time.Time, time.Time) {
	t := day.Time()
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 0, 1)
}
